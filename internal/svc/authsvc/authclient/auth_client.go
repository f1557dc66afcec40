package authclient

import (
	"context"

	"github.com/mkrupp/userapi/internal/domain"
)

// AuthClient defines the interface for validating authentication tokens.
type AuthClient interface {
	// Validate checks the given token and returns its decoded claims.
	// Any rejection (malformed, tampered or expired token) is reported as
	// domain.ErrInvalidAuthToken.
	Validate(ctx context.Context, token string) (domain.Claims, error)
}

// AuthClientFunc adapts a function to the AuthClient interface.
type AuthClientFunc func(ctx context.Context, token string) (domain.Claims, error)

// Validate implements AuthClient.
func (f AuthClientFunc) Validate(ctx context.Context, token string) (domain.Claims, error) {
	return f(ctx, token)
}
