package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/userapi/internal/domain"
	context_ "github.com/mkrupp/userapi/internal/infra/context"
	"github.com/mkrupp/userapi/internal/infra/logging"
)

const (
	TraceIDHeader     = "X-Request-ID"
	AccessTokenHeader = "X-Access-Token"
)

// HTTPClientConfig holds configuration for the HTTP auth client.
type HTTPClientConfig struct {
	// AuthURL is the endpoint echoing the claims of a valid token, e.g.
	// "http://usersvc:8080/me". Empty means tokens are verified in-process.
	AuthURL string `env:"AUTH_URL" default:""`
}

// HTTPClient implements AuthClient by asking a running service to verify the
// token. The token is presented in the X-Access-Token header and the claims
// echoed by the service are returned.
type HTTPClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ AuthClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, http.DefaultClient will be used.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.authsvc.http_client"),
		cfg:        cfg,
	}
}

// Validate implements AuthClient.Validate. A 403 from the service means the
// token was rejected; other failures are returned as transport errors.
func (ht *HTTPClient) Validate(ctx context.Context, token string) (domain.Claims, error) {
	if token == "" {
		return domain.Claims{}, domain.ErrNoAuthToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ht.cfg.AuthURL, nil)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set(AccessTokenHeader, token)
	req.Header.Set("Accept", "application/json")

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(TraceIDHeader, traceID)
	}

	resp, err := ht.httpClient.Do(req)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusUnauthorized:
		ht.log.DebugContext(ctx, "token rejected by remote", "status", resp.StatusCode)

		return domain.Claims{}, domain.ErrInvalidAuthToken
	default:
		return domain.Claims{}, fmt.Errorf("%w: unexpected status %d", errUnexpectedResponse, resp.StatusCode)
	}

	var claims domain.Claims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return domain.Claims{}, fmt.Errorf("decode claims: %w", err)
	}

	if claims.Username == "" {
		return domain.Claims{}, domain.ErrInvalidAuthToken
	}

	return claims, nil
}

var errUnexpectedResponse = errors.New("unexpected auth response")
