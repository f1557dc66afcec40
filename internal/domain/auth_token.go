package domain

import (
	"errors"
	"net/url"
)

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token is malformed, tampered with or expired.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrNoSigningSecret is returned when no token signing secret is configured.
	ErrNoSigningSecret = errors.New("no signing secret")
)

// Claims is the payload carried by an auth token.
type Claims struct {
	Name      string `json:"name"`          // Display name of the authenticated user
	Username  string `json:"username"`      // Login name of the authenticated user
	IssuedAt  int64  `json:"iat,omitempty"` // Unix timestamp when the token was created
	ExpiresAt int64  `json:"exp,omitempty"` // Unix timestamp when the token expires
}

// LoginRequest carries the credentials posted to the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BindForm reads the credentials from urlencoded form values.
func (r *LoginRequest) BindForm(values url.Values) {
	r.Username = values.Get("username")
	r.Password = values.Get("password")
}

// AuthTokenResponse is the reply of a successful login.
type AuthTokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}
