package registry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c, err := NewClient(Config{Name: "test", BaseURL: srv.URL, AllowLocalhost: true})
	require.NoError(t, err)
	return c, srv.Close
}

func TestClient_ListSubjects(t *testing.T) {
	c, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subjects", r.URL.Path)
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(`["sub-a","sub-b"]`))
	})
	defer closeFn()

	subjects, err := c.ListSubjects(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-a", "sub-b"}, subjects)
}

func TestClient_ListSubjects_NamedContext(t *testing.T) {
	c, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contexts/prod/subjects", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	})
	defer closeFn()

	_, err := c.ListSubjects(t.Context(), "prod")
	require.NoError(t, err)
}

func TestClient_ViewOnlyBlocksBeforeNetworkIO(t *testing.T) {
	called := false
	c, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	defer closeFn()
	c.viewOnly = true

	_, err := c.DeleteSubject(t.Context(), "sub-a", "", false)
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeRegistryViewonly, apierrors.AsCoded(err).Code)
	assert.False(t, called, "expected zero network I/O for a view-only registry")
}

func TestClient_RegisterSchema_IDWithoutImportModeIsModeConflict(t *testing.T) {
	c, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach the network for a mode conflict")
	})
	defer closeFn()

	id := 42
	_, err := c.RegisterSchema(t.Context(), "sub-a", "{}", "AVRO", "", &id, ModeReadWrite)
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeModeConflict, apierrors.AsCoded(err).Code)
}

func TestClient_NotFoundMapsToSubjectNotFound(t *testing.T) {
	c, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error_code":40401,"message":"Subject not found"}`))
	})
	defer closeFn()

	_, err := c.GetSubjectVersions(t.Context(), "missing", "")
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeSubjectNotFound, apierrors.AsCoded(err).Code)
}

func TestClient_RetriesGETOn503(t *testing.T) {
	attempts := 0
	c, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`["sub-a"]`))
	})
	defer closeFn()

	subjects, err := c.ListSubjects(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-a"}, subjects)
	assert.Equal(t, 2, attempts)
}
