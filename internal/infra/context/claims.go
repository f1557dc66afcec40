package context

import (
	"context"

	"github.com/mkrupp/userapi/internal/domain"
)

type contextKey string

const contextKeyClaims = contextKey("claims")

// ClaimsFromContext extracts the decoded auth token claims from the context.
// Returns the claims and true if the request passed the auth gate.
func ClaimsFromContext(ctx context.Context) (domain.Claims, bool) {
	claims, ok := ctx.Value(contextKeyClaims).(domain.Claims)

	return claims, ok
}

// WithClaims creates a new context carrying the decoded claims of the current request.
func WithClaims(ctx context.Context, claims domain.Claims) context.Context {
	return context.WithValue(ctx, contextKeyClaims, claims)
}

// UsernameFromContext returns the username of the authenticated user, if any.
func UsernameFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.Username == "" {
		return "", false
	}

	return claims.Username, true
}
