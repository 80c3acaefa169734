// Package session supplies the current user identity to the watch-state
// store. Identity is always passed in through a Provider; nothing here is
// global.
package session

import (
	"context"

	"marquee/internal/apperr"
)

// Identity is an authenticated user.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Provider resolves the identity of the caller. Implementations return an
// error matching apperr.ErrNotAuthenticated when nobody is signed in.
type Provider interface {
	Current(ctx context.Context) (*Identity, error)
}

// IsAuthenticated reports whether p currently resolves an identity.
func IsAuthenticated(ctx context.Context, p Provider) bool {
	if p == nil {
		return false
	}
	id, err := p.Current(ctx)
	return err == nil && id != nil
}

// Static always returns the same identity, or none when Identity is nil.
type Static struct {
	Identity *Identity
}

func (s Static) Current(context.Context) (*Identity, error) {
	if s.Identity == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	return s.Identity, nil
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}

// ContextProvider resolves identity from the request context. It is used by
// the HTTP API where each request carries its own bearer token.
type ContextProvider struct{}

func (ContextProvider) Current(ctx context.Context) (*Identity, error) {
	if id, ok := FromContext(ctx); ok {
		return id, nil
	}
	return nil, apperr.ErrNotAuthenticated
}
