package mcpsurface

import (
	"github.com/control-plane/schema-registry-mcp/internal/authz"
	"github.com/control-plane/schema-registry-mcp/internal/compare"
	"github.com/control-plane/schema-registry-mcp/internal/elicit"
	"github.com/control-plane/schema-registry-mcp/internal/migration"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
	"github.com/control-plane/schema-registry-mcp/internal/task"
	"github.com/control-plane/schema-registry-mcp/internal/telemetry"
)

// Deps is every component a tool handler may need. BuildTable closes over
// one Deps value for the lifetime of the process.
type Deps struct {
	Registries *registry.Manager
	Tasks      *task.Engine
	Guard      *authz.Guard
	Migration  *migration.Engine
	Compare    *compare.Engine
	Elicit     *elicit.Store
	Patterns   *elicit.PatternStore
	Metrics    *telemetry.Metrics
	SlimMode   bool

	// EnableMigration gates migrate_schemas's direct-execution mode A; when
	// false, migrate_schemas always emits a bundle (mode B) instead of
	// running the migration itself (spec.md §4.5).
	EnableMigration bool
}
