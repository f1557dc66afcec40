package http_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/userapi/internal/domain"
	http_ "github.com/mkrupp/userapi/internal/infra/transport/http"
)

func TestDecodeRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		want        domain.NewUserRequest
		wantErr     bool
	}{
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"name":"Alice","username":"alice","password":"secret","token":"ignored"}`,
			want:        domain.NewUserRequest{Name: "Alice", Username: "alice", Password: "secret"},
		},
		{
			name:        "json without content type",
			body:        `{"username":"alice"}`,
			want:        domain.NewUserRequest{Username: "alice"},
		},
		{
			name:        "form with charset",
			contentType: "application/x-www-form-urlencoded; charset=utf-8",
			body:        url.Values{"name": {"Alice"}, "username": {"alice"}, "password": {"s e"}}.Encode(),
			want:        domain.NewUserRequest{Name: "Alice", Username: "alice", Password: "s e"},
		},
		{
			name: "empty body",
		},
		{
			name:        "malformed json",
			contentType: "application/json",
			body:        `{"name":`,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			var got domain.NewUserRequest

			err := http_.DecodeRequest(req, &got)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRequest_FormIntoNonBinder(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var dst map[string]string

	err := http_.DecodeRequest(req, &dst)
	require.ErrorIs(t, err, http_.ErrUnsupportedBody)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, http_.WriteJSON(rec, http.StatusCreated, domain.Failed("nope")))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"message":"nope"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, http_.WriteJSON(rec, http.StatusOK, domain.Succeeded("ok")))
	assert.JSONEq(t, `{"message":"ok"}`, rec.Body.String())
}
