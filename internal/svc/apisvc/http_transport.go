package apisvc

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkrupp/userapi/internal/domain"
	"github.com/mkrupp/userapi/internal/infra/logging"
	http_ "github.com/mkrupp/userapi/internal/infra/transport/http"
	"github.com/mkrupp/userapi/internal/svc/authsvc"
	"github.com/mkrupp/userapi/internal/svc/authsvc/authclient"
	"github.com/mkrupp/userapi/internal/svc/usersvc"
)

const (
	MessageWelcome          = "Welcome to the home page!"
	MessageAPIWelcome       = "hooray! Welcome to our api!"
	MessageRouteNotFound    = "Route not found."
	MessageMethodNotAllowed = "Method not allowed."
)

// HTTPTransport is the route table of the API.
// GET / and POST /auth are public; every other route is behind the auth gate,
// including requests that match no route.
type HTTPTransport struct {
	router chi.Router
	log    logging.Logger
}

// NewHTTPTransport wires the auth and user transports into one router.
// Tokens on gated routes are checked with authClient.
func NewHTTPTransport(
	authTransport *authsvc.HTTPTransport,
	userTransport *usersvc.HTTPTransport,
	authClient authclient.AuthClient,
) *HTTPTransport {
	ht := &HTTPTransport{
		router: chi.NewRouter(),
		log:    logging.GetLogger("svc.apisvc.http_transport"),
	}

	gate := http_.Authorizing(authClient, logging.GetLogger("infra.transport.http.authorizing"))

	ht.router.NotFound(gate(http.HandlerFunc(ht.HandleNotFound)).ServeHTTP)
	ht.router.MethodNotAllowed(gate(http.HandlerFunc(ht.HandleMethodNotAllowed)).ServeHTTP)

	ht.router.Get("/", ht.HandleWelcome)
	ht.router.Post("/auth", authTransport.HandleLogin)

	ht.router.Group(func(r chi.Router) {
		r.Use(gate)

		r.Get("/api", ht.HandleAPIWelcome)
		userTransport.Routes(r)
	})

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.router.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleWelcome answers the public root route.
func (ht *HTTPTransport) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	if err := http_.WriteJSON(w, http.StatusOK, domain.Succeeded(MessageWelcome)); err != nil {
		ht.log.WarnContext(r.Context(), "write response failed", logging.Err(err))
	}
}

// HandleAPIWelcome answers GET /api for authenticated callers.
func (ht *HTTPTransport) HandleAPIWelcome(w http.ResponseWriter, r *http.Request) {
	if err := http_.WriteJSON(w, http.StatusOK, domain.Succeeded(MessageAPIWelcome)); err != nil {
		ht.log.WarnContext(r.Context(), "write response failed", logging.Err(err))
	}
}

// HandleNotFound answers authenticated requests that match no route.
func (ht *HTTPTransport) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	ht.log.DebugContext(r.Context(), "route not found", "method", r.Method, "path", r.URL.Path)
	_ = http_.WriteJSON(w, http.StatusNotFound, domain.Failed(MessageRouteNotFound))
}

// HandleMethodNotAllowed answers authenticated requests whose path exists
// under a different method.
func (ht *HTTPTransport) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ht.log.DebugContext(r.Context(), "method not allowed", "method", r.Method, "path", r.URL.Path)
	_ = http_.WriteJSON(w, http.StatusMethodNotAllowed, domain.Failed(MessageMethodNotAllowed))
}
