package domain

import (
	"errors"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	// ErrUserAlreadyExists is returned when a username is already taken by another user.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongPassword is returned when the password does not match the stored hash.
	ErrWrongPassword = errors.New("wrong password")
	// ErrInvalidUser is returned when a user payload fails validation.
	ErrInvalidUser = errors.New("invalid user")
)

// MaxPasswordLength is the longest password in bytes that bcrypt accepts.
const MaxPasswordLength = 72

// User represents a stored user record.
type User struct {
	ID           string `json:"id"`        // Store-assigned identifier, immutable
	Name         string `json:"name"`      // Display name
	Username     string `json:"username"`  // Login name, unique
	PasswordHash string `json:"-"`         // bcrypt hash, only loaded for credential checks
	CreatedAt    int64  `json:"createdAt"` // Unix timestamp of creation
	UpdatedAt    int64  `json:"updatedAt"` // Unix timestamp of the last update
}

// UserPatch holds a partial update. Nil fields are left unchanged.
type UserPatch struct {
	Name         *string
	Username     *string
	PasswordHash *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Username == nil && p.PasswordHash == nil
}

// NewUserRequest is the payload for creating a user.
type NewUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate requires every field to be non-blank and the password to fit
// in MaxPasswordLength bytes.
func (r NewUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(0, MaxPasswordLength)),
	)
}

// BindForm reads the payload from urlencoded form values.
func (r *NewUserRequest) BindForm(values url.Values) {
	r.Name = values.Get("name")
	r.Username = values.Get("username")
	r.Password = values.Get("password")
}

// UpdateUserRequest is the payload for updating a user. Empty fields are ignored.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that a new password fits in MaxPasswordLength bytes.
// Blank fields are valid since they are ignored.
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Length(0, MaxPasswordLength)),
	)
}

// BindForm reads the payload from urlencoded form values.
func (r *UpdateUserRequest) BindForm(values url.Values) {
	r.Name = values.Get("name")
	r.Username = values.Get("username")
	r.Password = values.Get("password")
}

// MessageResponse is the generic JSON reply of the API.
type MessageResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// Succeeded builds a MessageResponse carrying only a message.
func Succeeded(message string) MessageResponse {
	return MessageResponse{Message: message}
}

// Failed builds a MessageResponse flagged as unsuccessful.
func Failed(message string) MessageResponse {
	success := false

	return MessageResponse{Success: &success, Message: message}
}
