package mcpsurface

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/control-plane/schema-registry-mcp/internal/authz"
	"github.com/control-plane/schema-registry-mcp/internal/elicit"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
	"github.com/control-plane/schema-registry-mcp/internal/task"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	manager, err := registry.NewManager([]registry.Config{
		{Name: "prod", BaseURL: "http://127.0.0.1:1", AllowLocalhost: true},
	})
	require.NoError(t, err)

	return &Deps{
		Registries: manager,
		Tasks:      task.NewEngine(),
		Guard:      authz.NewGuard(false),
		Elicit:     elicit.NewStore(0),
		Patterns:   elicit.NewPatternStore(false),
	}
}

func TestBuildTable_EveryToolHasAHandlerAndScope(t *testing.T) {
	deps := newTestDeps(t)
	table := BuildTable(deps)
	require.NotEmpty(t, table)

	seen := map[string]bool{}
	for _, spec := range table {
		assert.NotEmpty(t, spec.Name)
		assert.False(t, seen[spec.Name], "duplicate tool name %s", spec.Name)
		seen[spec.Name] = true
		assert.NotNil(t, spec.Handler)
		assert.Contains(t, []authz.Scope{authz.ScopeRead, authz.ScopeWrite, authz.ScopeAdmin}, spec.Scope)
	}
}

func TestBuildTable_SlimModeVisibleIsASubset(t *testing.T) {
	deps := newTestDeps(t)
	table := BuildTable(deps)

	var slimCount, totalCount int
	for _, spec := range table {
		totalCount++
		if spec.SlimModeVisible {
			slimCount++
		}
	}
	assert.Greater(t, slimCount, 0)
	assert.Less(t, slimCount, totalCount)
}

func TestBuildTable_ListRegistriesHandlerReturnsConfiguredRegistry(t *testing.T) {
	deps := newTestDeps(t)
	table := BuildTable(deps)

	var listRegistries ToolSpec
	for _, spec := range table {
		if spec.Name == "list_registries" {
			listRegistries = spec
		}
	}
	require.NotEmpty(t, listRegistries.Name)

	result, err := listRegistries.Handler(t.Context(), map[string]interface{}{})
	require.NoError(t, err)

	payload, ok := result.(map[string]interface{})
	require.True(t, ok)
	infos, ok := payload["registries"].([]registry.Info)
	require.True(t, ok)
	require.Len(t, infos, 1)
	assert.Equal(t, "prod", infos[0].Name)
}

func TestBuildTable_RegisterSchemaRejectsMissingSubject(t *testing.T) {
	deps := newTestDeps(t)
	table := BuildTable(deps)

	var registerSchema ToolSpec
	for _, spec := range table {
		if spec.Name == "register_schema" {
			registerSchema = spec
		}
	}
	require.NotEmpty(t, registerSchema.Name)

	_, err := registerSchema.Handler(context.Background(), map[string]interface{}{"registry": "prod"})
	require.Error(t, err)
}
