package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvForTest(t *testing.T, vars map[string]string) {
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

func TestRunRegistriesList_RendersConfiguredRegistries(t *testing.T) {
	setEnvForTest(t, map[string]string{
		"SCHEMA_REGISTRY_URL_1":  "http://reg-a.internal:8081",
		"SCHEMA_REGISTRY_NAME_1": "a",
		"SCHEMA_REGISTRY_URL_2":  "http://reg-b.internal:8081",
		"SCHEMA_REGISTRY_NAME_2": "b",
		"VIEWONLY_2":             "true",
	})

	c := newRegistriesListCmd()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs(nil)

	err := runRegistriesList(c, nil)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Total: 2 registries")
}

func TestRunRegistriesList_PropagatesConfigError(t *testing.T) {
	setEnvForTest(t, map[string]string{
		"SCHEMA_REGISTRY_URL_1":  "http://dup.internal:8081",
		"SCHEMA_REGISTRY_NAME_1": "dup",
		"SCHEMA_REGISTRY_URL_2":  "http://dup.internal:8081",
		"SCHEMA_REGISTRY_NAME_2": "dup",
	})

	c := newRegistriesListCmd()
	err := runRegistriesList(c, nil)
	assert.Error(t, err)
}
