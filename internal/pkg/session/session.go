// Package session carries the authenticated principal of a validated
// server-side session through request contexts, and lets the HTTP layer
// verify opaque bearer tokens without depending on the module that owns
// the session store.
package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNoValidator is returned when token verification is attempted before a
// Validator has been bound.
var ErrNoValidator = errors.New("session: no validator bound")

// Principal describes the owner of a validated session.
type Principal struct {
	// SessionID is the session row identifier.
	SessionID int64
	// UserID is the authenticated user identifier.
	UserID int64
	// Identifier is the mobile number or email the user logged in with.
	Identifier string
	// ProfileCompleted reports whether the user finished profile setup.
	ProfileCompleted bool
	// Token is the raw bearer token as presented by the client.
	Token string
}

// Validator checks an opaque session token and resolves its principal.
type Validator interface {
	ValidateSession(ctx context.Context, token string) (*Principal, error)
}

// Registry is a late-binding Validator. The router is built before the
// module that implements validation, so the module binds itself after
// registration.
type Registry struct {
	mu sync.RWMutex
	v  Validator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Bind installs the validator. The last bound validator wins.
func (r *Registry) Bind(v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.v = v
}

// ValidateSession implements Validator by delegating to the bound one.
func (r *Registry) ValidateSession(ctx context.Context, token string) (*Principal, error) {
	r.mu.RLock()
	v := r.v
	r.mu.RUnlock()

	if v == nil {
		return nil, ErrNoValidator
	}
	return v.ValidateSession(ctx, token)
}

type sessionContextKey struct{}

// GetAuth returns the principal stored in the context, if any.
func GetAuth(ctx context.Context) *Principal {
	p, ok := ctx.Value(sessionContextKey{}).(Principal)
	if !ok {
		return nil
	}
	return &p
}

// SetAuth stores the principal in the context.
func SetAuth(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, p)
}
