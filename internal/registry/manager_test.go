package registry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_DefaultIsFirstSlot(t *testing.T) {
	srvA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("[]")) }))
	defer srvA.Close()
	srvB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("[]")) }))
	defer srvB.Close()

	m, err := NewManager([]Config{
		{Name: "a", BaseURL: srvA.URL, AllowLocalhost: true},
		{Name: "b", BaseURL: srvB.URL, AllowLocalhost: true},
	})
	require.NoError(t, err)

	def, err := m.Default()
	require.NoError(t, err)
	assert.Equal(t, "a", def.Name())
}

func TestManager_GetUnknownReturnsNotFound(t *testing.T) {
	m, err := NewManager(nil)
	require.NoError(t, err)

	_, err = m.Get("missing")
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeRegistryNotFound, apierrors.AsCoded(err).Code)
}

func TestManager_TestAll_PartialFailureDoesNotAbortOthers(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("[]")) }))
	defer healthy.Close()
	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer unhealthy.Close()

	m, err := NewManager([]Config{
		{Name: "good", BaseURL: healthy.URL, AllowLocalhost: true},
		{Name: "bad", BaseURL: unhealthy.URL, AllowLocalhost: true},
	})
	require.NoError(t, err)

	results := m.TestAll(t.Context())
	require.Len(t, results, 2)
	assert.True(t, results["good"].Healthy)
	assert.False(t, results["bad"].Healthy)
}

func TestManager_List_PreservesSlotOrderAndViewonly(t *testing.T) {
	m, err := NewManager([]Config{
		{Name: "a", BaseURL: "http://localhost:1", AllowLocalhost: true, ViewOnly: true},
		{Name: "b", BaseURL: "http://localhost:2", AllowLocalhost: true},
	})
	require.NoError(t, err)

	infos := m.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.True(t, infos[0].ViewOnly)
	assert.Equal(t, "b", infos[1].Name)
}
