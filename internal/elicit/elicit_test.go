package elicit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
)

func TestStore_BeginThenContinueMergesContext(t *testing.T) {
	s := NewStore(time.Minute)
	token := s.Begin("migrate", "which context?", map[string]interface{}{"subject": "orders"})

	pending, err := s.Continue(token, map[string]interface{}{"context": "prod"})
	require.NoError(t, err)
	assert.Equal(t, "orders", pending.Context["subject"])
	assert.Equal(t, "prod", pending.Context["context"])
}

func TestStore_UnknownTokenIsInvalidArgument(t *testing.T) {
	s := NewStore(time.Minute)
	_, err := s.Continue("nope", nil)
	require.Error(t, err)
	assert.Equal(t, apierrors.CodeInvalidArgument, apierrors.AsCoded(err).Code)
}

func TestStore_ExpiredTokenIsRejected(t *testing.T) {
	s := NewStore(time.Nanosecond)
	token := s.Begin("migrate", "q", map[string]interface{}{})
	time.Sleep(time.Millisecond)

	_, err := s.Continue(token, nil)
	require.Error(t, err)
}

func TestPatternStore_SuggestsMostFrequentValue(t *testing.T) {
	p := NewPatternStore(false)
	p.Record("migrate", "context", "prod")
	p.Record("migrate", "context", "prod")
	p.Record("migrate", "context", "staging")

	value, ok := p.Suggest("migrate", "context")
	require.True(t, ok)
	assert.Equal(t, "prod", value)
}

func TestPatternStore_DisabledNeverSuggests(t *testing.T) {
	p := NewPatternStore(true)
	p.Record("migrate", "context", "prod")

	_, ok := p.Suggest("migrate", "context")
	assert.False(t, ok)
}
