package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkrupp/userapi/internal/domain"
	"github.com/mkrupp/userapi/internal/infra/logging"
)

const (
	insertUserSQL = `INSERT INTO users (id, name, username, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	selectUserByIDSQL = `SELECT id, name, username, created_at, updated_at FROM users
		WHERE id = ?`

	selectCredentialsByUsernameSQL = `SELECT id, name, username, password_hash, created_at, updated_at FROM users
		WHERE username = ?`

	selectUsersSQL = `SELECT id, name, username, created_at, updated_at FROM users
		ORDER BY created_at, id`

	updateUserSQL = `UPDATE users SET
		name = COALESCE(?, name),
		username = COALESCE(?, username),
		password_hash = COALESCE(?, password_hash),
		updated_at = ?
		WHERE id = ?`

	deleteUserSQL = `DELETE FROM users WHERE id = ?`
)

// sqlUserRepository holds the database/sql logic shared by the SQLite and
// PostgreSQL backends. Backends differ in placeholders, write concurrency and
// how a unique violation is reported.
type sqlUserRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock sync.Locker

	rebind            func(query string) string
	isUniqueViolation func(err error) bool
	now               func() time.Time
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// rebindDollar rewrites "?" placeholders as "$1", "$2", ...
func rebindDollar(query string) string {
	var (
		b strings.Builder
		n int
	)

	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)

			continue
		}

		n++
		b.WriteString("$" + strconv.Itoa(n))
	}

	return b.String()
}

func rebindNone(query string) string {
	return query
}

func (r *sqlUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("new id: %w", err)
	}

	now := r.now().Unix()

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err = r.db.ExecContext(ctx, r.rebind(insertUserSQL),
		id.String(),
		user.Name,
		user.Username,
		user.PasswordHash,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", r.classify(err))
	}

	user.ID = id.String()
	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

func (r *sqlUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User

	err := r.db.QueryRowContext(ctx, r.rebind(selectUserByIDSQL), id).
		Scan(&user.ID, &user.Name, &user.Username, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", notFound(err))
	}

	return &user, nil
}

func (r *sqlUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User

	err := r.db.QueryRowContext(ctx, r.rebind(selectCredentialsByUsernameSQL), username).
		Scan(&user.ID, &user.Name, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", notFound(err))
	}

	return &user, nil
}

func (r *sqlUserRepository) ListUsers(ctx context.Context) (_ []domain.User, err error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(selectUsersSQL))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	users := []domain.User{}

	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Username, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r *sqlUserRepository) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	result, err := r.db.ExecContext(ctx, r.rebind(updateUserSQL),
		nullable(patch.Name),
		nullable(patch.Username),
		nullable(patch.PasswordHash),
		r.now().Unix(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", r.classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func (r *sqlUserRepository) DeleteUser(ctx context.Context, id string) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	result, err := r.db.ExecContext(ctx, r.rebind(deleteUserSQL), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		r.log.DebugContext(ctx, "delete matched no user", "id", id)
	}

	return nil
}

func (r *sqlUserRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

func (r *sqlUserRepository) classify(err error) error {
	if r.isUniqueViolation(err) {
		return errors.Join(domain.ErrUserAlreadyExists, err)
	}

	return err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Join(domain.ErrUserNotFound, err)
	}

	return err
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}
