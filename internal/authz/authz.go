// Package authz implements the scope guard (C4): every tool declares a
// required Scope, and the guard rejects a call whose caller lacks it.
// OAuth/JWT verification is explicitly out of scope (spec.md §1) — this
// package never parses or verifies a token, only an already-extracted
// scope set.
package authz

import (
	"context"
	"strings"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
)

// Scope is one of the three authorization levels a tool may require.
type Scope string

const (
	// ScopeRead covers list/get/compare/statistics operations.
	ScopeRead Scope = "read"
	// ScopeWrite covers register/update/mode changes/migration execution.
	ScopeWrite Scope = "write"
	// ScopeAdmin covers delete, cross-registry mutations, IMPORT mode
	// changes, and cancelling another caller's task.
	ScopeAdmin Scope = "admin"
)

// rank orders scopes so Set.Has can treat admin as implying write and read.
var rank = map[Scope]int{ScopeRead: 1, ScopeWrite: 2, ScopeAdmin: 3}

// Set is the caller's granted scopes.
type Set map[Scope]bool

// Has reports whether s grants at least the given scope, treating the
// scopes as a strict hierarchy (admin implies write implies read) only
// when the caller was granted the higher scope directly; callers are not
// assumed to hold lower scopes unless explicitly granted one that ranks
// at or above what's required.
func (s Set) Has(required Scope) bool {
	best := 0
	for granted := range s {
		if r := rank[granted]; r > best {
			best = r
		}
	}
	return best >= rank[required]
}

// AllScopes is the full grant, used in dev mode (ENABLE_AUTH=false).
func AllScopes() Set {
	return Set{ScopeRead: true, ScopeWrite: true, ScopeAdmin: true}
}

type contextKey struct{}

// WithScopes returns a context carrying the caller's granted scope set.
func WithScopes(ctx context.Context, scopes Set) context.Context {
	return context.WithValue(ctx, contextKey{}, scopes)
}

// ScopesFrom extracts the scope set stored by WithScopes, defaulting to
// an empty set.
func ScopesFrom(ctx context.Context) Set {
	if s, ok := ctx.Value(contextKey{}).(Set); ok {
		return s
	}
	return Set{}
}

// Guard enforces per-tool scope requirements.
type Guard struct {
	// AuthEnabled mirrors ENABLE_AUTH; when false every call is granted
	// AllScopes() regardless of the caller's actual token (development
	// mode, spec.md §4.4).
	AuthEnabled bool
}

// NewGuard builds a Guard for the given ENABLE_AUTH setting.
func NewGuard(authEnabled bool) *Guard {
	return &Guard{AuthEnabled: authEnabled}
}

// Check verifies that ctx's caller holds required, returning
// INSUFFICIENT_SCOPE if not.
func (g *Guard) Check(ctx context.Context, required Scope) error {
	if !g.AuthEnabled {
		return nil
	}
	if ScopesFrom(ctx).Has(required) {
		return nil
	}
	return apierrors.New(apierrors.CodeInsufficientScope,
		"operation requires %q scope", required).WithDetail("required_scope", string(required))
}

// ScopesFromBearerHeader derives a Set from a test/dev "Bearer
// scope1,scope2" convention. This exists purely so the guard is
// exercisable end-to-end without a real IdP wired in; it is never used to
// verify a token's authenticity.
func ScopesFromBearerHeader(header string) Set {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return Set{}
	}
	raw := strings.TrimPrefix(header, prefix)
	set := Set{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		set[Scope(part)] = true
	}
	return set
}

// StatusResponse is the per-call scope status surfaced at the MCP
// resource boundary, adapted from the teacher's per-remote-server auth
// status shape to a per-tool-call scope status.
type StatusResponse struct {
	AuthEnabled   bool     `json:"auth_enabled"`
	GrantedScopes []string `json:"granted_scopes"`
	RequiredScope string   `json:"required_scope,omitempty"`
	Authorized    bool     `json:"authorized"`
}

// Status reports whether ctx's caller is authorized for required, in the
// shape exposed by the authz_status resource.
func (g *Guard) Status(ctx context.Context, required Scope) StatusResponse {
	scopes := ScopesFrom(ctx)
	granted := make([]string, 0, len(scopes))
	for s := range scopes {
		granted = append(granted, string(s))
	}
	return StatusResponse{
		AuthEnabled:   g.AuthEnabled,
		GrantedScopes: granted,
		RequiredScope: string(required),
		Authorized:    g.Check(ctx, required) == nil,
	}
}
