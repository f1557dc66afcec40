package usersvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/userapi/internal/domain"
	"github.com/mkrupp/userapi/internal/infra/logging"
	"github.com/mkrupp/userapi/internal/repo/user"
)

// ErrUpdateFailed marks an update that was rejected by the store for a reason
// other than a missing user or a taken username.
var ErrUpdateFailed = errors.New("update failed")

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// UserService implements user management on top of a user repository.
type UserService struct {
	UserRepo user.Repository
	Hasher   PasswordHasher
	Log      logging.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo user.Repository, hasher PasswordHasher) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Hasher:   hasher,
		Log:      logging.GetLogger("svc.usersvc.user_service"),
	}
}

// Create validates req, hashes the password and stores a new user.
// Returns domain.ErrInvalidUser joined with the validation errors if a field is
// blank, or domain.ErrUserAlreadyExists if the username is taken.
func (s *UserService) Create(ctx context.Context, req domain.NewUserRequest) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", req.Username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "create user failed", logging.Err(err))
		} else {
			log.InfoContext(ctx, "user created")
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, errors.Join(domain.ErrInvalidUser, err)
	}

	hash, err := s.Hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: hash,
	}

	if err := s.UserRepo.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	log = log.With(logging.Group("user", "id", u.ID))

	return u, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.UserRepo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// Get returns the user with the given id.
// Returns domain.ErrUserNotFound if there is none.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

// Update overwrites the non-blank fields of req on the user with the given id.
// A new password is hashed before storage.
// Returns domain.ErrInvalidUser joined with the validation errors if the payload
// is rejected, and domain.ErrUserNotFound, domain.ErrUserAlreadyExists or
// ErrUpdateFailed for store rejections of the write; lookup failures are
// returned as they are.
func (s *UserService) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (err error) {
	log := s.Log.With(logging.Group("user", "id", id))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "update user failed", logging.Err(err))
		} else {
			log.InfoContext(ctx, "user updated")
		}
	}()

	if err := req.Validate(); err != nil {
		return errors.Join(domain.ErrInvalidUser, err)
	}

	if _, err := s.UserRepo.GetUserByID(ctx, id); err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	var patch domain.UserPatch

	if req.Name != "" {
		patch.Name = &req.Name
	}

	if req.Username != "" {
		patch.Username = &req.Username
	}

	if req.Password != "" {
		hash, err := s.Hasher.HashPassword(req.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		patch.PasswordHash = &hash
	}

	if patch.IsEmpty() {
		return nil
	}

	if err := s.UserRepo.UpdateUser(ctx, id, patch); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUserAlreadyExists) {
			return fmt.Errorf("update user: %w", err)
		}

		return errors.Join(ErrUpdateFailed, err)
	}

	return nil
}

// Delete removes the user with the given id. Deleting a missing user succeeds.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.UserRepo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.Log.InfoContext(ctx, "user deleted", logging.Group("user", "id", id))

	return nil
}
