// Package elicit implements multi-step elicitation and smart-defaults
// (C9). Eliciting tools return an "elicitation_required" response carrying
// a continuation token; the server holds the accumulated context in
// memory, keyed by that token, for a bounded TTL.
package elicit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
)

const defaultTTL = 10 * time.Minute

// Pending is the accumulated state of one in-progress elicitation.
type Pending struct {
	Tool      string
	Context   map[string]interface{}
	Question  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store holds in-progress elicitations keyed by continuation token.
type Store struct {
	mu    sync.Mutex
	items map[string]*Pending
	ttl   time.Duration
}

// NewStore builds an elicitation Store with the given TTL (0 uses the
// 10-minute default from spec.md §4.9).
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{items: make(map[string]*Pending), ttl: ttl}
}

// Begin starts a new elicitation for tool, returning its continuation
// token.
func (s *Store) Begin(tool, question string, context map[string]interface{}) string {
	token := uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[token] = &Pending{
		Tool:      tool,
		Context:   context,
		Question:  question,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	return token
}

// Continue merges answer into the continuation state for token and
// returns it. A missing or expired token is an INVALID_ARGUMENT error
// (the token the client supplied is stale or never existed).
func (s *Store) Continue(token string, answer map[string]interface{}) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.items[token]
	if !ok || time.Now().After(pending.ExpiresAt) {
		delete(s.items, token)
		return nil, apierrors.New(apierrors.CodeInvalidArgument, "elicitation token %q is unknown or expired", token)
	}
	if pending.Context == nil {
		pending.Context = make(map[string]interface{})
	}
	for k, v := range answer {
		pending.Context[k] = v
	}
	return pending, nil
}

// Complete removes token's state once the elicitation has resolved.
func (s *Store) Complete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

// Sweep removes every expired entry; intended to run periodically.
func (s *Store) Sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, p := range s.items {
		if now.After(p.ExpiresAt) {
			delete(s.items, token)
		}
	}
}
