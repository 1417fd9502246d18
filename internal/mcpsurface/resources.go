package mcpsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerResources exposes the read-only MCP resources named in
// SPEC_FULL.md: registry://names plus per-registry status/info/mode.
// Per-subject schema:// resources are intentionally not registered here:
// subjects are discovered at call time, not known at startup, and the
// pinned mcp-go server in this stack only exposes a fixed AddResources
// registration rather than URI templates; get_schema covers the same
// read through the tool surface instead.
func (s *Server) registerResources() {
	resources := []mcpserver.ServerResource{
		{
			Resource: mcp.Resource{
				URI:         "registry://names",
				Name:        "Configured registry names",
				Description: "Every registry name configured for this process, in slot order.",
			},
			Handler: s.resourceNames,
		},
	}

	for _, info := range s.deps.Registries.List() {
		resources = append(resources,
			mcpserver.ServerResource{
				Resource: mcp.Resource{
					URI:         fmt.Sprintf("registry://status/%s", info.Name),
					Name:        fmt.Sprintf("%s connection status", info.Name),
					Description: "Result of a fresh health probe against this registry, run on each read.",
				},
				Handler: s.resourceStatus(info.Name),
			},
			mcpserver.ServerResource{
				Resource: mcp.Resource{
					URI:         fmt.Sprintf("registry://info/%s", info.Name),
					Name:        fmt.Sprintf("%s configuration", info.Name),
					Description: "Public, read-only configuration of this registry.",
				},
				Handler: s.resourceInfo(info.Name),
			},
			mcpserver.ServerResource{
				Resource: mcp.Resource{
					URI:         fmt.Sprintf("registry://mode/%s", info.Name),
					Name:        fmt.Sprintf("%s mode", info.Name),
					Description: "Registry-level mode (READWRITE/READONLY/IMPORT).",
				},
				Handler: s.resourceMode(info.Name),
			},
		)
	}

	s.mcp.AddResources(resources...)
}

func textResource(uri string, value interface{}) ([]mcp.ResourceContents, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(raw)},
	}, nil
}

func (s *Server) resourceNames(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return textResource(req.Params.URI, map[string]interface{}{"registries": s.deps.Registries.Names()})
}

func (s *Server) resourceStatus(name string) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		result, err := s.deps.Registries.TestConnection(ctx, name)
		if err != nil {
			return nil, err
		}
		return textResource(req.Params.URI, result)
	}
}

func (s *Server) resourceInfo(name string) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		for _, info := range s.deps.Registries.List() {
			if info.Name == name {
				return textResource(req.Params.URI, info)
			}
		}
		return nil, fmt.Errorf("registry %q not found", name)
	}
}

func (s *Server) resourceMode(name string) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		client, err := s.deps.Registries.Get(name)
		if err != nil {
			return nil, err
		}
		mode, err := client.GetMode(ctx, "", "")
		if err != nil {
			return nil, err
		}
		return textResource(req.Params.URI, map[string]interface{}{"mode": mode})
	}
}
