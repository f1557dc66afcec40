package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/mkrupp/userapi/internal/domain"
	context_ "github.com/mkrupp/userapi/internal/infra/context"
	"github.com/mkrupp/userapi/internal/infra/logging"
	"github.com/mkrupp/userapi/internal/svc/authsvc/authclient"
)

const (
	// TokenField is the body field and query parameter carrying the token.
	TokenField = "token"
	// TokenHeader is the request header carrying the token.
	TokenHeader = "X-Access-Token"

	// MessageNoToken is sent when no token is found in the request.
	MessageNoToken = "No token provided."
	// MessageInvalidToken is sent when the token fails verification.
	MessageInvalidToken = "Failed to authenticate token."

	maxTokenBodySize = 1 << 20
)

// AuthorizingMiddleware creates middleware that gates requests on a valid auth token.
// The token is looked up in the request body field "token", then the "token" query
// parameter, then the X-Access-Token header; the first non-empty value wins.
// Requests without a token or with a token the AuthClient rejects receive 403 and
// never reach next. On success the decoded claims are added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	authClient authclient.AuthClient,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			log.WarnContext(r.Context(), "no token provided", "path", r.URL.Path)
			_ = WriteJSON(w, http.StatusForbidden, domain.Failed(MessageNoToken))

			return
		}

		claims, err := authClient.Validate(r.Context(), token)
		if err != nil {
			log.WarnContext(r.Context(), "validate token failed", logging.Err(err))
			_ = WriteJSON(w, http.StatusForbidden, domain.Failed(MessageInvalidToken))

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithClaims(r.Context(), claims)))
	})
}

// Authorizing adapts AuthorizingMiddleware to the func(http.Handler) http.Handler
// shape used by routers.
func Authorizing(authClient authclient.AuthClient, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return AuthorizingMiddleware(next, authClient, log)
	}
}

// ExtractToken returns the first non-empty token candidate of the request.
// The body is restored so that handlers can still read it.
func ExtractToken(r *http.Request) string {
	if token := tokenFromBody(r); token != "" {
		return token
	}

	if token := r.URL.Query().Get(TokenField); token != "" {
		return token
	}

	return r.Header.Get(TokenHeader)
}

type replayBody struct {
	io.Reader
	io.Closer
}

func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodySize+1))

	r.Body = replayBody{
		Reader: io.MultiReader(bytes.NewReader(buf), r.Body),
		Closer: r.Body,
	}

	if err != nil || len(buf) > maxTokenBodySize {
		return ""
	}

	if isForm(r) {
		values, err := url.ParseQuery(string(buf))
		if err != nil {
			return ""
		}

		return values.Get(TokenField)
	}

	var payload struct {
		Token string `json:"token"`
	}

	if err := json.Unmarshal(buf, &payload); err != nil {
		return ""
	}

	return payload.Token
}
