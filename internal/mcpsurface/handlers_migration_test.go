package mcpsurface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/control-plane/schema-registry-mcp/internal/elicit"
	"github.com/control-plane/schema-registry-mcp/internal/migration"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
	"github.com/control-plane/schema-registry-mcp/internal/task"
)

func newMigrationTestDeps(t *testing.T, enableMigration bool) *Deps {
	t.Helper()
	manager, err := registry.NewManager([]registry.Config{
		{Name: "src", BaseURL: "http://127.0.0.1:1", AllowLocalhost: true},
		{Name: "dst", BaseURL: "http://127.0.0.1:2", AllowLocalhost: true},
	})
	require.NoError(t, err)

	return &Deps{
		Registries:      manager,
		Tasks:           task.NewEngine(),
		Migration:       migration.NewEngine(task.NewEngine()),
		Elicit:          elicit.NewStore(0),
		Patterns:        elicit.NewPatternStore(false),
		EnableMigration: enableMigration,
	}
}

func TestParseVersionSelector_DefaultsToLatest(t *testing.T) {
	selector, err := parseVersionSelector(map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, migration.VersionModeLatest, selector.Mode)
}

func TestParseVersionSelector_All(t *testing.T) {
	selector, err := parseVersionSelector(map[string]interface{}{"versions": "all"})
	require.NoError(t, err)
	assert.Equal(t, migration.VersionModeAll, selector.Mode)
}

func TestParseVersionSelector_ExplicitArray(t *testing.T) {
	selector, err := parseVersionSelector(map[string]interface{}{"versions": []interface{}{float64(1), float64(3)}})
	require.NoError(t, err)
	assert.Equal(t, migration.VersionModeExplicit, selector.Mode)
	assert.Equal(t, []int{1, 3}, selector.Explicit)
}

func TestParseVersionSelector_EmptyExplicitArrayRejected(t *testing.T) {
	_, err := parseVersionSelector(map[string]interface{}{"versions": []interface{}{}})
	assert.Error(t, err)
}

func TestParseVersionSelector_UnknownStringRejected(t *testing.T) {
	_, err := parseVersionSelector(map[string]interface{}{"versions": "oldest"})
	assert.Error(t, err)
}

func TestMigrateSchemas_GenerateBundleArgumentEmitsBundleWithoutSubmittingTask(t *testing.T) {
	d := newMigrationTestDeps(t, true)
	args := map[string]interface{}{
		"source_registry": "src",
		"target_registry": "dst",
		"generate_bundle": true,
	}

	result, err := d.migrateSchemas(t.Context(), args)
	require.NoError(t, err)

	out, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "bundle", out["mode"])
	require.NotNil(t, out["bundle"])
}

func TestMigrateSchemas_EnableMigrationFalseForcesBundleMode(t *testing.T) {
	d := newMigrationTestDeps(t, false)
	args := map[string]interface{}{
		"source_registry": "src",
		"target_registry": "dst",
	}

	result, err := d.migrateSchemas(t.Context(), args)
	require.NoError(t, err)

	out, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "bundle", out["mode"])
}

func TestMigrateSchemas_DefaultSubmitsAsyncTask(t *testing.T) {
	d := newMigrationTestDeps(t, true)
	args := map[string]interface{}{
		"source_registry": "src",
		"target_registry": "dst",
	}

	result, err := d.migrateSchemas(t.Context(), args)
	require.NoError(t, err)

	out, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, out["task_id"])
	assert.Nil(t, out["bundle"])
}
