package app

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv sets the given environment variables for the duration of the test
// and restores whatever was there before on cleanup.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		prev, had := os.LookupEnv(k)
		require.NoError(t, os.Setenv(k, v))
		t.Cleanup(func() {
			if had {
				os.Setenv(k, prev)
			} else {
				os.Unsetenv(k)
			}
		})
	}
}

// TestNewApplication_WiresEveryComponent boots the full application against
// a minimal environment and asserts every component referenced by the MCP
// surface actually got constructed. It never calls Run, so it never starts
// a listener. Prometheus registration is process-global, so this is the
// only test in the package whose NewApplication call gets past config
// loading and registers metrics.
func TestNewApplication_WiresEveryComponent(t *testing.T) {
	setEnv(t, map[string]string{
		"SCHEMA_REGISTRY_URL_1":  "http://reg-a.internal:8081",
		"SCHEMA_REGISTRY_NAME_1": "a",
		"MCP_TRANSPORT":          "stdio",
		"LOG_LEVEL":              "error",
	})

	var logBuf bytes.Buffer
	application, err := NewApplication(&logBuf)
	require.NoError(t, err)
	require.NotNil(t, application)

	assert.NotNil(t, application.Config)
	assert.NotNil(t, application.Registries)
	assert.NotNil(t, application.Tasks)
	assert.NotNil(t, application.Guard)
	assert.NotNil(t, application.Migration)
	assert.NotNil(t, application.Compare)
	assert.NotNil(t, application.Elicit)
	assert.NotNil(t, application.Patterns)
	assert.NotNil(t, application.Metrics)
	assert.NotNil(t, application.Sync)
	assert.NotNil(t, application.server)

	names := application.Registries.Names()
	assert.Equal(t, []string{"a"}, names)
	assert.Contains(t, logBuf.String(), "loaded configuration")

	application.Tasks.Stop()
}

func TestNewApplication_PropagatesConfigError(t *testing.T) {
	setEnv(t, map[string]string{
		"SCHEMA_REGISTRY_URL_1":  "http://dup.internal:8081",
		"SCHEMA_REGISTRY_NAME_1": "dup",
		"SCHEMA_REGISTRY_URL_2":  "http://dup.internal:8081",
		"SCHEMA_REGISTRY_NAME_2": "dup",
	})

	_, err := NewApplication(nil)
	require.Error(t, err)
}

func TestOutputOrDefault(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, &buf, outputOrDefault(&buf))
	assert.Equal(t, os.Stderr, outputOrDefault(nil))
}
