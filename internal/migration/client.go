package migration

import (
	"context"

	"github.com/control-plane/schema-registry-mcp/internal/registry"
)

// RegistryClient is the subset of *registry.Client the migration engine
// needs, kept as an interface so planning/execution can be unit tested
// against a fake.
type RegistryClient interface {
	Name() string
	ViewOnly() bool
	ListSubjects(ctx context.Context, context_ string) ([]string, error)
	GetSubjectVersions(ctx context.Context, subject, context_ string) ([]int, error)
	GetSchema(ctx context.Context, subject, version, context_ string) (*registry.SchemaVersion, error)
	RegisterSchema(ctx context.Context, subject, payload, schemaType, context_ string, id *int, mode registry.Mode) (*registry.RegisterResponse, error)
	GetMode(ctx context.Context, subject, context_ string) (registry.Mode, error)
	SetMode(ctx context.Context, subject, context_ string, mode registry.Mode) error
}
