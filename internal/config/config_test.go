package config

import (
	"testing"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoad_LegacySingleRegistry(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"SCHEMA_REGISTRY_URL":      "http://localhost:8081",
		"SCHEMA_REGISTRY_USER":     "alice",
		"SCHEMA_REGISTRY_PASSWORD": "secret",
	}))
	require.NoError(t, err)
	require.Len(t, cfg.Registries, 1)
	assert.Equal(t, "default", cfg.Registries[0].Name)
	assert.Equal(t, "http://localhost:8081", cfg.Registries[0].URL)
	assert.False(t, cfg.Registries[0].ViewOnly)
}

func TestLoad_NumberedSlots(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"SCHEMA_REGISTRY_URL_1":      "http://reg-a:8081",
		"SCHEMA_REGISTRY_NAME_1":     "a",
		"SCHEMA_REGISTRY_URL_2":      "http://reg-b:8081",
		"SCHEMA_REGISTRY_NAME_2":     "b",
		"VIEWONLY_2":                 "true",
	}))
	require.NoError(t, err)
	require.Len(t, cfg.Registries, 2)
	assert.Equal(t, "a", cfg.Registries[0].Name)
	assert.False(t, cfg.Registries[0].ViewOnly)
	assert.Equal(t, "b", cfg.Registries[1].Name)
	assert.True(t, cfg.Registries[1].ViewOnly)
}

func TestLoad_MissingNameForUsedSlot(t *testing.T) {
	_, err := load(envMap(map[string]string{
		"SCHEMA_REGISTRY_URL_1": "http://reg-a:8081",
	}))
	require.Error(t, err)
	ce := apierrors.AsCoded(err)
	assert.Equal(t, apierrors.CodeConfigInvalid, ce.Code)
}

func TestLoad_DuplicateName(t *testing.T) {
	_, err := load(envMap(map[string]string{
		"SCHEMA_REGISTRY_URL_1":  "http://reg-a:8081",
		"SCHEMA_REGISTRY_NAME_1": "shared",
		"SCHEMA_REGISTRY_URL_2":  "http://reg-b:8081",
		"SCHEMA_REGISTRY_NAME_2": "shared",
	}))
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeRegistryDuplicateName, apierrors.AsCoded(err).Code)
}

func TestLoad_DuplicateURL(t *testing.T) {
	_, err := load(envMap(map[string]string{
		"SCHEMA_REGISTRY_URL_1":  "http://reg-a:8081/",
		"SCHEMA_REGISTRY_NAME_1": "a",
		"SCHEMA_REGISTRY_URL_2":  "http://reg-a:8081",
		"SCHEMA_REGISTRY_NAME_2": "b",
	}))
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeRegistryDuplicateURL, apierrors.AsCoded(err).Code)
}

func TestLoad_ConflictingViewonlyReadonly(t *testing.T) {
	_, err := load(envMap(map[string]string{
		"SCHEMA_REGISTRY_URL":  "http://localhost:8081",
		"VIEWONLY":             "true",
		"READONLY":             "false",
	}))
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeConfigInvalid, apierrors.AsCoded(err).Code)
}

func TestLoad_ServerDefaults(t *testing.T) {
	cfg, err := load(envMap(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.EnableMigration)
	assert.False(t, cfg.Server.SlimMode)
}
