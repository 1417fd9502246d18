package mcpsurface

import (
	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
)

// requireString extracts a required, non-empty string argument.
func requireString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", apierrors.New(apierrors.CodeInvalidArgument, "missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", apierrors.New(apierrors.CodeInvalidArgument, "argument %q must be a non-empty string", key)
	}
	return s, nil
}

// optString extracts an optional string argument, returning def if absent.
func optString(args map[string]interface{}, key, def string) string {
	v, ok := args[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// optBool extracts an optional bool argument, returning def if absent.
func optBool(args map[string]interface{}, key string, def bool) bool {
	v, ok := args[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// optInt extracts an optional numeric argument (JSON numbers decode as
// float64), returning def if absent.
func optInt(args map[string]interface{}, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

// optIntPtr extracts an optional numeric argument as a *int, or nil if
// absent — used for the register_schema explicit-id parameter.
func optIntPtr(args map[string]interface{}, key string) *int {
	v, ok := args[key]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		return &n
	default:
		return nil
	}
}

// optIntSlice extracts an optional []int argument from a JSON array of
// numbers. The second return reports whether key was present as an array
// at all, distinguishing "absent" from "present but empty".
func optIntSlice(args map[string]interface{}, key string) ([]int, bool) {
	v, ok := args[key]
	if !ok {
		return nil, false
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		switch n := item.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		}
	}
	return out, true
}

// optStringSlice extracts an optional []string argument from a JSON array.
func optStringSlice(args map[string]interface{}, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// requireRegistry resolves the "registry" argument to a *registry.Client
// through the Deps manager.
func (d *Deps) requireRegistry(args map[string]interface{}) (*registry.Client, error) {
	name, err := requireString(args, "registry")
	if err != nil {
		return nil, err
	}
	return d.Registries.Get(name)
}
