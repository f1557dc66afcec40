package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// ErrUnsupportedBody is returned when a request body cannot be decoded into the target.
var ErrUnsupportedBody = errors.New("unsupported request body")

// FormBinder is implemented by request payloads that accept urlencoded forms.
type FormBinder interface {
	BindForm(values url.Values)
}

// WriteJSON encodes v as the JSON response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", contentTypeJSON+"; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// DecodeRequest reads a JSON or urlencoded request body into dst.
// An empty body leaves dst untouched.
func DecodeRequest(r *http.Request, dst any) error {
	if isForm(r) {
		binder, ok := dst.(FormBinder)
		if !ok {
			return fmt.Errorf("%w: form into %T", ErrUnsupportedBody, dst)
		}

		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}

		binder.BindForm(r.PostForm)

		return nil
	}

	if r.Body == nil {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))

	return err == nil && mediaType == contentTypeForm
}
