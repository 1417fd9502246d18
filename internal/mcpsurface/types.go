// Package mcpsurface implements the Tool Registry / MCP Surface (C8): a
// static table of tools, each with a declared scope and JSON Schema
// input/output, wired onto github.com/mark3labs/mcp-go's server. The
// surface validates inputs, dispatches to the handler, validates outputs,
// and applies SLIM_MODE filtering at startup.
package mcpsurface

import (
	"context"

	"github.com/control-plane/schema-registry-mcp/internal/authz"
)

// ProtocolVersion is the MCP protocol revision every response declares.
const ProtocolVersion = "2025-06-18"

// Handler is a tool's business logic: given the already-validated input
// arguments, it returns a result payload or an *apierrors.CodedError.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// ToolSpec is one row of the static tool table.
type ToolSpec struct {
	Name             string
	Description      string
	Scope            authz.Scope
	InputSchema      map[string]interface{}
	OutputSchema     map[string]interface{}
	Handler          Handler
	SlimModeVisible  bool
}
