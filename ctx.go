package credentials

import (
	"context"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

var identityCtxKey = &contextKey{"identity"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// AuthenticatedIdentity is the minimal view of the caller that travels on the
// request context after the bearer middleware accepts a token.
type AuthenticatedIdentity struct {
	UserID uuid.UUID
	Email  string
}

// WithIdentity sets the AuthenticatedIdentity in the given context
func WithIdentity(ctx context.Context, identity *AuthenticatedIdentity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the identity from the context.
func IdentityFromContext(ctx context.Context) (*AuthenticatedIdentity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*AuthenticatedIdentity)
	return raw, ok
}

// WithClaimsContext sets the SessionClaims in the given context
func WithClaimsContext(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the SessionClaims from the standard context
func GetClaims(ctx context.Context) (*SessionClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*SessionClaims)
	return raw, ok
}

// GetRouterClaims extracts the SessionClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (*SessionClaims, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(*SessionClaims)
	return claims, ok
}
