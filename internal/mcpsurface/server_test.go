package mcpsurface

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/control-plane/schema-registry-mcp/internal/registry"
)

// Outside of a systemd-activated unit there is no LISTEN_FDS/LISTEN_PID in
// the environment, so systemdListeners must come back empty rather than
// erroring, and Serve must fall back to binding its own listener.
func TestSystemdListeners_EmptyOutsideSystemdActivation(t *testing.T) {
	assert.Empty(t, systemdListeners())
}

func TestNew_BuildsServerInFullAndSlimMode(t *testing.T) {
	deps := newTestDeps(t)

	full := New(deps, ServerConfig{Transport: TransportStdio, SlimMode: false})
	slim := New(deps, ServerConfig{Transport: TransportStdio, SlimMode: true})

	assert.NotNil(t, full)
	assert.NotNil(t, slim)
}

func TestToEnvelope_StampsRegistryModeSingle(t *testing.T) {
	deps := newTestDeps(t)
	s := New(deps, ServerConfig{Transport: TransportStdio})

	envelope := s.toEnvelope(map[string]interface{}{"subjects": []string{}})
	assert.Equal(t, ProtocolVersion, envelope["mcp_protocol_version"])
	assert.Equal(t, "single", envelope["registry_mode"])
}

func TestToEnvelope_StampsRegistryModeMulti(t *testing.T) {
	manager, err := registry.NewManager([]registry.Config{
		{Name: "a", BaseURL: "http://127.0.0.1:1", AllowLocalhost: true},
		{Name: "b", BaseURL: "http://127.0.0.1:2", AllowLocalhost: true},
	})
	require.NoError(t, err)
	deps := newTestDeps(t)
	deps.Registries = manager
	s := New(deps, ServerConfig{Transport: TransportStdio})

	envelope := s.toEnvelope(map[string]interface{}{})
	assert.Equal(t, "multi", envelope["registry_mode"])
}

func TestErrorResult_CarriesErrorCodeAndRegistryMode(t *testing.T) {
	deps := newTestDeps(t)
	s := New(deps, ServerConfig{Transport: TransportStdio})

	result := s.errorResult(apierrors.New(apierrors.CodeRegistryViewonly, "registry %q is view-only", "prod"))
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Contains(t, text.Text, `"error_code":"REGISTRY_VIEWONLY"`)
	assert.Contains(t, text.Text, `"registry_mode":"single"`)
	assert.Contains(t, text.Text, `"error":"registry \"prod\" is view-only"`)
}
