package usersvc_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/userapi/internal/domain"
	context_ "github.com/mkrupp/userapi/internal/infra/context"
	"github.com/mkrupp/userapi/internal/svc/usersvc"
)

type response struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func serve(t *testing.T, ht *usersvc.HTTPTransport, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	ht.ServeHTTP(rec, req)

	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()

	var resp response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return resp
}

func TestHTTPTransport_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		repoErr     error
		wantStatus  int
		wantMessage string
		wantFailed  bool
	}{
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"name":"Bob","username":"bob","password":"pw"}`,
			wantStatus:  http.StatusOK,
			wantMessage: usersvc.MessageUserCreated,
		},
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"name": {"Bob"}, "username": {"bob"}, "password": {"pw"}}.Encode(),
			wantStatus:  http.StatusOK,
			wantMessage: usersvc.MessageUserCreated,
		},
		{
			name:        "blank password",
			contentType: "application/json",
			body:        `{"name":"Bob","username":"bob"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "password: cannot be blank.",
			wantFailed:  true,
		},
		{
			name:        "password too long",
			contentType: "application/json",
			body:        `{"name":"Bob","username":"bob","password":"` + strings.Repeat("x", 80) + `"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "password: the length must be no more than 72.",
			wantFailed:  true,
		},
		{
			name:        "duplicate username",
			contentType: "application/json",
			body:        `{"name":"Alice","username":"alice","password":"pw"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: usersvc.MessageUserExists,
			wantFailed:  true,
		},
		{
			name:        "store error",
			contentType: "application/json",
			body:        `{"name":"Bob","username":"bob","password":"pw"}`,
			repoErr:     ErrRepoError,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: http.StatusText(http.StatusInternalServerError),
			wantFailed:  true,
		},
		{
			name:        "malformed json",
			contentType: "application/json",
			body:        `{"name":`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: usersvc.MessageInvalidRequest,
			wantFailed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, repo := setupTestService(t)
			repo.users["a"] = &domain.User{ID: "a", Name: "Alice", Username: "alice"}
			repo.err = tt.repoErr

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			rec := serve(t, usersvc.NewHTTPTransport(svc), req)
			require.Equal(t, tt.wantStatus, rec.Code)

			resp := decodeMessage(t, rec)
			assert.Equal(t, tt.wantMessage, resp.Message)

			if tt.wantFailed {
				require.NotNil(t, resp.Success)
				assert.False(t, *resp.Success)
			} else {
				_, err := repo.GetUserByUsername(req.Context(), "bob")
				require.NoError(t, err)
			}
		})
	}
}

func TestHTTPTransport_Get(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	repo.users["a"] = &domain.User{ID: "a", Name: "Alice", Username: "alice", PasswordHash: "hashed:secret"}
	ht := usersvc.NewHTTPTransport(svc)

	rec := serve(t, ht, httptest.NewRequest(http.MethodGet, "/users/a", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hashed")

	var got domain.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "alice", got.Username)

	rec = serve(t, ht, httptest.NewRequest(http.MethodGet, "/users/zz", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, usersvc.MessageUserNotFound, decodeMessage(t, rec).Message)

	repo.err = ErrRepoError

	rec = serve(t, ht, httptest.NewRequest(http.MethodGet, "/users/a", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHTTPTransport_List(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	ht := usersvc.NewHTTPTransport(svc)

	rec := serve(t, ht, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	repo.users["a"] = &domain.User{ID: "a", Name: "Alice", Username: "alice", PasswordHash: "hashed:secret", CreatedAt: 1}
	repo.users["b"] = &domain.User{ID: "b", Name: "Bob", Username: "bob", PasswordHash: "hashed:pw", CreatedAt: 2}

	rec = serve(t, ht, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hashed")

	var users []domain.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&users))
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)

	repo.err = ErrRepoError

	rec = serve(t, ht, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHTTPTransport_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		path        string
		body        string
		repoErr     error
		updateErr   error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "updated",
			path:        "/users/a",
			body:        `{"name":"Alice B."}`,
			wantStatus:  http.StatusOK,
			wantMessage: usersvc.MessageUserUpdated,
		},
		{
			name:        "not found",
			path:        "/users/zz",
			body:        `{"name":"Ghost"}`,
			wantStatus:  http.StatusNotFound,
			wantMessage: usersvc.MessageUserNotFound,
		},
		{
			name:        "duplicate username",
			path:        "/users/a",
			body:        `{"username":"bob"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: usersvc.MessageUserExists,
		},
		{
			name:        "password too long",
			path:        "/users/a",
			body:        `{"password":"` + strings.Repeat("x", 80) + `"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "password: the length must be no more than 72.",
		},
		{
			name:        "write rejected",
			path:        "/users/a",
			body:        `{"name":"Alice B."}`,
			updateErr:   ErrRepoError,
			wantStatus:  http.StatusBadRequest,
			wantMessage: usersvc.ErrUpdateFailed.Error(),
		},
		{
			name:        "lookup error",
			path:        "/users/a",
			body:        `{"name":"Alice B."}`,
			repoErr:     ErrRepoError,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: http.StatusText(http.StatusInternalServerError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, repo := setupTestService(t)
			repo.users["a"] = &domain.User{ID: "a", Name: "Alice", Username: "alice"}
			repo.users["b"] = &domain.User{ID: "b", Name: "Bob", Username: "bob"}
			repo.err = tt.repoErr
			repo.updateErr = tt.updateErr

			req := httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := serve(t, usersvc.NewHTTPTransport(svc), req)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, decodeMessage(t, rec).Message)
		})
	}
}

func TestHTTPTransport_Delete(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	repo.users["a"] = &domain.User{ID: "a", Name: "Alice", Username: "alice"}
	ht := usersvc.NewHTTPTransport(svc)

	for _, path := range []string{"/users/a", "/users/a"} {
		rec := serve(t, ht, httptest.NewRequest(http.MethodDelete, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, usersvc.MessageUserDeleted, decodeMessage(t, rec).Message)
	}

	assert.Empty(t, repo.users)

	repo.err = ErrRepoError

	rec := serve(t, ht, httptest.NewRequest(http.MethodDelete, "/users/b", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHTTPTransport_Me(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)
	ht := usersvc.NewHTTPTransport(svc)

	claims := domain.Claims{Name: "Alice", Username: "alice", IssuedAt: 10, ExpiresAt: 20}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(context_.WithClaims(req.Context(), claims))

	rec := serve(t, ht, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Alice","username":"alice","iat":10,"exp":20}`, rec.Body.String())

	rec = serve(t, ht, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
