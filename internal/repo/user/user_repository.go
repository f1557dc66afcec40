package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/userapi/internal/domain"
)

// ErrUnknownDriver is returned when the configured storage driver is not supported.
var ErrUnknownDriver = errors.New("unknown user repository driver")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Repository defines the interface for user data persistence.
// Every write is a single statement and therefore atomic.
type Repository interface {
	// CreateUser stores a new user, assigning its ID and timestamps.
	// Returns domain.ErrUserAlreadyExists if the username is already taken.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByID retrieves a user without its password hash.
	// Returns domain.ErrUserNotFound if no user has this ID.
	GetUserByID(ctx context.Context, id string) (*domain.User, error)

	// GetUserByUsername retrieves a user including its password hash, for credential checks.
	// Returns domain.ErrUserNotFound if no user has this username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListUsers returns all users without password hashes, oldest first.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdateUser applies the non-nil fields of patch.
	// Returns domain.ErrUserNotFound or domain.ErrUserAlreadyExists.
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) error

	// DeleteUser removes a user. Deleting a missing user is not an error.
	DeleteUser(ctx context.Context, id string) error

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func(ctx context.Context) (Repository, error)

// RepositoryConfig selects and configures the storage backend.
type RepositoryConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver string `env:"DRIVER" default:"sqlite"`

	SQLite   SQLiteUserRepositoryConfig
	Postgres PostgresUserRepositoryConfig
}

// NewRepositoryFactory returns the factory for the configured driver.
func NewRepositoryFactory(cfg RepositoryConfig) (RepositoryFactory, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return SQLiteUserRepositoryFactory(cfg.SQLite), nil
	case DriverPostgres:
		return PostgresUserRepositoryFactory(cfg.Postgres), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
