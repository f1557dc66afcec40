package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/userapi/internal/domain"
	"github.com/mkrupp/userapi/internal/infra/logging"
	"github.com/mkrupp/userapi/internal/repo/user"
	"github.com/mkrupp/userapi/internal/svc/authsvc/authclient"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// Secret is the token signing secret; SecretFile is used when it is empty
	Secret string `env:"SECRET" default:""`

	// SecretFile holds the signing secret and is generated on first start
	SecretFile string `env:"SECRET_FILE" default:"var/storage/usersvc.secret"`

	// BCryptCost is the bcrypt work factor for new password hashes
	BCryptCost int `env:"BCRYPT_COST" default:"10"`

	Token TokenConfig
}

// AuthService checks credentials and issues and validates auth tokens.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Codec    *TokenCodec
	Log      logging.Logger
}

var _ authclient.AuthClient = (*AuthService)(nil)

// NewAuthService creates a new AuthService reading credentials from userRepo.
// Returns an error if no signing secret can be loaded.
func NewAuthService(userRepo user.Repository, cfg AuthConfig) (*AuthService, error) {
	secret, err := LoadSigningSecret(cfg)
	if err != nil {
		return nil, fmt.Errorf("load signing secret: %w", err)
	}

	codec, err := NewTokenCodec(cfg.Token, secret)
	if err != nil {
		return nil, fmt.Errorf("new token codec: %w", err)
	}

	return &AuthService{
		Config:   cfg,
		UserRepo: userRepo,
		Codec:    codec,
		Log:      logging.GetLogger("svc.authsvc.auth_service"),
	}, nil
}

// HashPassword hashes password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	return HashPassword(password, s.Config.BCryptCost)
}

// Login authenticates a user and returns a signed token for them.
// Returns domain.ErrUserNotFound for an unknown username and
// domain.ErrWrongPassword if the password does not match.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ string, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		switch {
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrWrongPassword):
			log.InfoContext(ctx, "login rejected", logging.Err(err))
		case err != nil:
			log.ErrorContext(ctx, "login failed", logging.Err(err))
		default:
			log.DebugContext(ctx, "login successful")
		}
	}()

	// Authenticate user
	u, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := ComparePassword(u.PasswordHash, password); err != nil {
		return "", err
	}

	// Generate token
	token, err := s.Codec.Issue(domain.Claims{Name: u.Name, Username: u.Username})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Validate verifies token and returns its claims.
// Returns domain.ErrNoAuthToken for an empty token and domain.ErrInvalidAuthToken
// for any token that fails verification.
func (s *AuthService) Validate(ctx context.Context, token string) (claims domain.Claims, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "validate token failed", logging.Err(err))
		} else {
			log.DebugContext(ctx, "token validated")
		}
	}()

	if token == "" {
		return domain.Claims{}, domain.ErrNoAuthToken
	}

	claims, err = s.Codec.Verify(token)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("verify token: %w", err)
	}

	log = log.With(logging.Group("token",
		"username", claims.Username,
		"exp", time.Unix(claims.ExpiresAt, 0).UTC().Format(time.RFC3339),
		"iat", time.Unix(claims.IssuedAt, 0).UTC().Format(time.RFC3339),
	))

	return claims, nil
}
