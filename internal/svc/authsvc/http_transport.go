package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/userapi/internal/domain"
	"github.com/mkrupp/userapi/internal/infra/logging"
	http_ "github.com/mkrupp/userapi/internal/infra/transport/http"
)

const (
	MessageLoginSucceeded = "Enjoy your token!"
	MessageUserNotFound   = "Authentication failed. User not found."
	MessageWrongPassword  = "Authentication failed. Wrong password."
	MessageInvalidRequest = "Invalid request body."
)

// HTTPTransport handles HTTP requests for the authentication service.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport backed by authSvc.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
	}
}

// ServeHTTP implements http.Handler and sets up routes for the auth service endpoints:
// - POST /auth: Login and get an auth token.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth", ht.HandleLogin)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleLogin processes user login requests.
// Expects a JSON or urlencoded body with username and password.
// Returns an auth token on successful login.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "user login failed", logging.Err(err))
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var req domain.LoginRequest
	if err := http_.DecodeRequest(r, &req); err != nil {
		_ = http_.WriteJSON(w, http.StatusBadRequest, domain.Failed(MessageInvalidRequest))

		return fmt.Errorf("decode request: %w", err)
	}

	log = log.With(logging.Group("user", "username", req.Username))

	// Login user
	token, err := ht.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			_ = http_.WriteJSON(w, http.StatusBadRequest, domain.Failed(MessageUserNotFound))
		case errors.Is(err, domain.ErrWrongPassword):
			_ = http_.WriteJSON(w, http.StatusUnauthorized, domain.Failed(MessageWrongPassword))
		default:
			_ = http_.WriteJSON(w, http.StatusInternalServerError,
				domain.Failed(http.StatusText(http.StatusInternalServerError)))
		}

		return fmt.Errorf("login user: %w", err)
	}

	// Return token
	return http_.WriteJSON(w, http.StatusOK, domain.AuthTokenResponse{
		Success: true,
		Message: MessageLoginSucceeded,
		Token:   token,
	})
}
