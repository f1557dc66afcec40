package authsvc

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/userapi/internal/domain"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = 24 * time.Hour

// TokenConfig contains configuration parameters for issued tokens.
type TokenConfig struct {
	// TTL is how long an issued token stays valid
	TTL time.Duration `env:"TOKEN_TTL" default:"24h"`
}

type tokenClaims struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 signed tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	// Now is the clock used for iat, exp and the expiry check.
	Now func() time.Time

	ttl    time.Duration
	secret []byte
}

// NewTokenCodec creates a TokenCodec signing with secret.
// Returns domain.ErrNoSigningSecret if secret is empty.
func NewTokenCodec(cfg TokenConfig, secret []byte) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, domain.ErrNoSigningSecret
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenCodec{
		Now:    time.Now,
		ttl:    ttl,
		secret: bytes.Clone(secret),
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token carrying the name and username of claims.
// IssuedAt and ExpiresAt are set from the codec clock; values in claims are ignored.
func (c *TokenCodec) Issue(claims domain.Claims) (string, error) {
	now := c.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Name:     claims.Name,
		Username: claims.Username,
		//nolint:exhaustruct
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature, algorithm and expiry of token and returns its claims.
// A token is expired once the clock reaches its exp.
// Every rejection is reported as domain.ErrInvalidAuthToken.
func (c *TokenCodec) Verify(token string) (domain.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.Now),
	)

	var claims tokenClaims

	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return domain.Claims{}, errors.Join(domain.ErrInvalidAuthToken, err)
	}

	result := domain.Claims{
		Name:      claims.Name,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}

	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Unix()
	}

	return result, nil
}
