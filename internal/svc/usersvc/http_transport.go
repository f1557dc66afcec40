package usersvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/mkrupp/userapi/internal/domain"
	context_ "github.com/mkrupp/userapi/internal/infra/context"
	"github.com/mkrupp/userapi/internal/infra/logging"
	http_ "github.com/mkrupp/userapi/internal/infra/transport/http"
)

const (
	MessageUserCreated    = "User created!"
	MessageUserUpdated    = "User updated!"
	MessageUserDeleted    = "Successfully deleted"
	MessageUserExists     = "A user with that username already exists."
	MessageUserNotFound   = "User not found."
	MessageInvalidRequest = "Invalid request body."
)

// HTTPTransport handles HTTP requests for the user service.
type HTTPTransport struct {
	userSvc *UserService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport backed by userSvc.
func NewHTTPTransport(userSvc *UserService) *HTTPTransport {
	return &HTTPTransport{
		userSvc: userSvc,
		log:     logging.GetLogger("svc.usersvc.http_transport"),
	}
}

// Routes registers the user service endpoints on r:
// - POST /users: Create a user
// - GET /users: List users
// - GET /users/{id}: Get a user
// - PUT /users/{id}: Update a user
// - DELETE /users/{id}: Delete a user
// - GET /me: Echo the claims of the caller's token.
func (ht *HTTPTransport) Routes(r chi.Router) {
	r.Post("/users", ht.HandleCreate)
	r.Get("/users", ht.HandleList)
	r.Get("/users/{id}", ht.HandleGet)
	r.Put("/users/{id}", ht.HandleUpdate)
	r.Delete("/users/{id}", ht.HandleDelete)
	r.Get("/me", ht.HandleMe)
}

// ServeHTTP implements http.Handler with the routes of Routes and no auth gate.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router := chi.NewRouter()
	ht.Routes(router)
	router.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleCreate processes user creation requests.
// Expects a JSON or urlencoded body with name, username and password.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logRequest(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "create user failed", logging.Err(err))
		}
	}(r.Context())

	var req domain.NewUserRequest
	if err := http_.DecodeRequest(r, &req); err != nil {
		_ = http_.WriteJSON(w, http.StatusBadRequest, domain.Failed(MessageInvalidRequest))

		return fmt.Errorf("decode request: %w", err)
	}

	if _, err := ht.userSvc.Create(r.Context(), req); err != nil {
		var verrs validation.Errors

		switch {
		case errors.As(err, &verrs):
			_ = http_.WriteJSON(w, http.StatusBadRequest, domain.Failed(verrs.Error()))
		case errors.Is(err, domain.ErrUserAlreadyExists):
			_ = http_.WriteJSON(w, http.StatusBadRequest, domain.Failed(MessageUserExists))
		default:
			writeInternalError(w)
		}

		return fmt.Errorf("create user: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.Succeeded(MessageUserCreated))
}

// HandleList returns all users.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logRequest(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "list users failed", logging.Err(err))
		}
	}(r.Context())

	users, err := ht.userSvc.List(r.Context())
	if err != nil {
		writeInternalError(w)

		return fmt.Errorf("list users: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, users)
}

// HandleGet returns the user named by the {id} path parameter.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleGet(w, r)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logRequest(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "get user failed", logging.Err(err))
		}
	}(r.Context())

	u, err := ht.userSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = http_.WriteJSON(w, http.StatusNotFound, domain.Failed(MessageUserNotFound))
		} else {
			writeInternalError(w)
		}

		return fmt.Errorf("get user: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, u)
}

// HandleUpdate applies the non-blank fields of the body to the user named by {id}.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUpdate(w, r)
}

func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logRequest(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "update user failed", logging.Err(err))
		}
	}(r.Context())

	var req domain.UpdateUserRequest
	if err := http_.DecodeRequest(r, &req); err != nil {
		_ = http_.WriteJSON(w, http.StatusBadRequest, domain.Failed(MessageInvalidRequest))

		return fmt.Errorf("decode request: %w", err)
	}

	if err := ht.userSvc.Update(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		var verrs validation.Errors

		switch {
		case errors.As(err, &verrs):
			_ = http_.WriteJSON(w, http.StatusBadRequest, domain.Failed(verrs.Error()))
		case errors.Is(err, domain.ErrUserNotFound):
			_ = http_.WriteJSON(w, http.StatusNotFound, domain.Failed(MessageUserNotFound))
		case errors.Is(err, domain.ErrUserAlreadyExists):
			_ = http_.WriteJSON(w, http.StatusBadRequest, domain.Failed(MessageUserExists))
		case errors.Is(err, ErrUpdateFailed):
			_ = http_.WriteJSON(w, http.StatusBadRequest, domain.Failed(ErrUpdateFailed.Error()))
		default:
			writeInternalError(w)
		}

		return fmt.Errorf("update user: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.Succeeded(MessageUserUpdated))
}

// HandleDelete removes the user named by {id}.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDelete(w, r)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logRequest(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "delete user failed", logging.Err(err))
		}
	}(r.Context())

	if err := ht.userSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeInternalError(w)

		return fmt.Errorf("delete user: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.Succeeded(MessageUserDeleted))
}

// HandleMe returns the decoded claims attached by the auth gate.
func (ht *HTTPTransport) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := context_.ClaimsFromContext(r.Context())
	if !ok {
		ht.log.WarnContext(r.Context(), "no claims in request context")
		_ = http_.WriteJSON(w, http.StatusForbidden, domain.Failed(http_.MessageNoToken))

		return
	}

	_ = http_.WriteJSON(w, http.StatusOK, claims)
}

func (ht *HTTPTransport) logRequest(r *http.Request) logging.Logger {
	return ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))
}

func writeInternalError(w http.ResponseWriter) {
	_ = http_.WriteJSON(w, http.StatusInternalServerError,
		domain.Failed(http.StatusText(http.StatusInternalServerError)))
}
