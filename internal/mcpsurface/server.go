// Package mcpsurface implements the Tool Registry / MCP Surface (C8): a
// static table of tools, each with a declared scope and JSON Schema
// input/output, wired onto github.com/mark3labs/mcp-go's server. The
// surface validates inputs, dispatches to the handler, validates outputs,
// and applies SLIM_MODE filtering at startup.
package mcpsurface

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/internal/authz"
	"github.com/control-plane/schema-registry-mcp/pkg/logging"
)

// Transport selects how the MCP server is exposed.
type Transport string

const (
	TransportStdio          Transport = "stdio"
	TransportSSE            Transport = "sse"
	TransportStreamableHTTP Transport = "streamable-http"
)

// ServerConfig is the subset of internal/config.ServerConfig the surface
// needs to stand up a transport.
type ServerConfig struct {
	Transport Transport
	Host      string
	Port      int
	SlimMode  bool
}

// Server wraps mark3labs/mcp-go's MCPServer with this control plane's
// static tool table, scope guard, and output validation.
type Server struct {
	deps   *Deps
	guard  *authz.Guard
	table  []ToolSpec
	mcp    *mcpserver.MCPServer
	config ServerConfig

	sseServer   *mcpserver.SSEServer
	httpServer  *mcpserver.StreamableHTTPServer
	stdioServer *mcpserver.StdioServer
}

// New builds the MCP server from deps, registering every tool whose
// SlimModeVisible flag clears the SLIM_MODE filter and every read-only
// resource.
func New(deps *Deps, config ServerConfig) *Server {
	table := BuildTable(deps)

	srv := mcpserver.NewMCPServer(
		"schema-registry-mcp",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(true, false),
	)

	s := &Server{deps: deps, guard: deps.Guard, table: table, mcp: srv, config: config}

	tools := make([]mcpserver.ServerTool, 0, len(table))
	for _, spec := range table {
		if config.SlimMode && !spec.SlimModeVisible {
			continue
		}
		tools = append(tools, s.buildServerTool(spec))
	}
	srv.AddTools(tools...)
	s.registerResources()

	return s
}

// buildServerTool compiles spec's JSON Schemas once and returns the
// mcp-go ServerTool that validates input, checks scope, dispatches to the
// handler, and validates (without discarding) output.
func (s *Server) buildServerTool(spec ToolSpec) mcpserver.ServerTool {
	inputSchema, err := compileSchema(spec.Name+".input", spec.InputSchema)
	if err != nil {
		logging.Error("mcpsurface", err, "failed to compile input schema for %s", spec.Name)
	}
	outputSchema, err := compileSchema(spec.Name+".output", spec.OutputSchema)
	if err != nil {
		logging.Error("mcpsurface", err, "failed to compile output schema for %s", spec.Name)
	}

	return mcpserver.ServerTool{
		Tool: mcp.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: toMCPInputSchema(spec.InputSchema),
		},
		Handler: s.handlerFor(spec, inputSchema, outputSchema),
	}
}

func (s *Server) handlerFor(spec ToolSpec, inputSchema, outputSchema *compiledSchema) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]interface{}{}
		if req.Params.Arguments != nil {
			if m, ok := req.Params.Arguments.(map[string]interface{}); ok {
				args = m
			}
		}

		if err := inputSchema.validate(args); err != nil {
			return s.errorResult(apierrors.New(apierrors.CodeInvalidArgument, "%v", err)), nil
		}

		if err := s.guard.Check(ctx, spec.Scope); err != nil {
			s.recordOutcome(spec.Name, err)
			return s.errorResult(err), nil
		}

		result, err := spec.Handler(ctx, args)
		s.recordOutcome(spec.Name, err)
		if err != nil {
			return s.errorResult(err), nil
		}

		return s.successResult(result, outputSchema), nil
	}
}

func (s *Server) recordOutcome(tool string, err error) {
	if s.deps.Metrics == nil {
		return
	}
	code := ""
	if err != nil {
		code = string(apierrors.AsCoded(err).Code)
	}
	s.deps.Metrics.RecordToolCall(tool, code)
}

// successResult marshals result to JSON, validates it against
// outputSchema, and annotates (never replaces) the payload on a
// validation failure so the caller still sees the handler's real output.
func (s *Server) successResult(result interface{}, outputSchema *compiledSchema) *mcp.CallToolResult {
	envelope := s.toEnvelope(result)

	if err := outputSchema.validate(envelope); err != nil {
		envelope["structured_output_validation_failed"] = true
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshaling result: %v", err))
	}
	return mcp.NewToolResultText(string(raw))
}

// toEnvelope flattens result's JSON fields into a map and stamps every
// response's two mandatory fields (spec.md §4.8, §8 invariant 7):
// mcp_protocol_version and registry_mode (single|multi).
func (s *Server) toEnvelope(result interface{}) map[string]interface{} {
	envelope := map[string]interface{}{
		"mcp_protocol_version": ProtocolVersion,
		"registry_mode":        s.deps.Registries.RegistryMode(),
	}
	raw, err := json.Marshal(result)
	if err != nil {
		envelope["result"] = fmt.Sprintf("%v", result)
		return envelope
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		for k, v := range decoded {
			envelope[k] = v
		}
		return envelope
	}
	var anyValue interface{}
	_ = json.Unmarshal(raw, &anyValue)
	envelope["result"] = anyValue
	return envelope
}

func (s *Server) errorResult(err error) *mcp.CallToolResult {
	coded := apierrors.AsCoded(err)
	payload := map[string]interface{}{
		"mcp_protocol_version": ProtocolVersion,
		"registry_mode":        s.deps.Registries.RegistryMode(),
		"error_code":           string(coded.Code),
		"error":                coded.Message,
	}
	if coded.Details != nil {
		payload["details"] = coded.Details
	}
	raw, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return mcp.NewToolResultError(coded.Message)
	}
	result := mcp.NewToolResultText(string(raw))
	result.IsError = true
	return result
}

func toMCPInputSchema(def map[string]interface{}) mcp.ToolInputSchema {
	properties, _ := def["properties"].(map[string]interface{})
	var required []string
	if raw, ok := def["required"].([]string); ok {
		required = raw
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// systemdListeners returns the listeners handed to this process by
// systemd socket activation, if any. A unit with no Sockets= directive
// yields none, and Serve falls back to binding its own listener.
func systemdListeners() []net.Listener {
	byName, err := activation.ListenersWithNames()
	if err != nil {
		logging.Error("mcpsurface", err, "failed to read systemd listeners")
		return nil
	}
	var listeners []net.Listener
	for name, ls := range byName {
		for i, l := range ls {
			logging.Info("mcpsurface", "systemd listener %d for %s", i, name)
			listeners = append(listeners, l)
		}
	}
	return listeners
}

// Serve starts the configured transport and blocks until ctx is cancelled
// or the transport fails. SSE and streamable-HTTP transports run over a
// systemd-provided listener when one is available, rather than binding
// Host:Port themselves.
func (s *Server) Serve(ctx context.Context) error {
	listeners := systemdListeners()
	if len(listeners) > 0 && s.config.Transport == TransportStdio {
		return fmt.Errorf("stdio transport cannot be used with systemd socket activation")
	}

	switch s.config.Transport {
	case TransportStdio:
		s.stdioServer = mcpserver.NewStdioServer(s.mcp)
		return s.stdioServer.Listen(ctx, os.Stdin, os.Stdout)
	case TransportSSE:
		addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
		s.sseServer = mcpserver.NewSSEServer(
			s.mcp,
			mcpserver.WithBaseURL(fmt.Sprintf("http://%s", addr)),
			mcpserver.WithKeepAlive(true),
			mcpserver.WithKeepAliveInterval(30*time.Second),
		)
		if len(listeners) > 0 {
			return serveOverListeners(ctx, listeners, s.sseServer)
		}
		return s.sseServer.Start(addr)
	default:
		addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
		s.httpServer = mcpserver.NewStreamableHTTPServer(s.mcp)
		if len(listeners) > 0 {
			return serveOverListeners(ctx, listeners, s.httpServer)
		}
		return s.httpServer.Start(addr)
	}
}

// serveOverListeners runs handler over every systemd-provided listener
// concurrently, returning once ctx is cancelled or any listener fails.
func serveOverListeners(ctx context.Context, listeners []net.Listener, handler http.Handler) error {
	httpServer := &http.Server{Handler: handler}
	errCh := make(chan error, len(listeners))
	for i, l := range listeners {
		go func(i int, l net.Listener) {
			if err := httpServer.Serve(l); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("listener %d: %w", i, err)
				return
			}
			errCh <- nil
		}(i, l)
	}

	select {
	case <-ctx.Done():
		_ = httpServer.Close()
		return ctx.Err()
	case err := <-errCh:
		_ = httpServer.Close()
		return err
	}
}
