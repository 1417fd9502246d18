package compare

import (
	"context"

	"github.com/control-plane/schema-registry-mcp/internal/registry"
)

// RegistryClient is the subset of *registry.Client comparison operations
// need, kept as an interface so the engine can be unit tested against a
// fake without spinning up an HTTP server.
type RegistryClient interface {
	Name() string
	ListContexts(ctx context.Context) ([]string, error)
	ListSubjects(ctx context.Context, context_ string) ([]string, error)
	GetSubjectVersions(ctx context.Context, subject, context_ string) ([]int, error)
	GetSchema(ctx context.Context, subject, version, context_ string) (*registry.SchemaVersion, error)
}
