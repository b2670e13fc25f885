package service

import (
	"context"
	"errors"
	"net/http"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/logging"
	"userauth/internal/model"
	"userauth/internal/repository"
)

const (
	msgUserRetrieved  = "User data retrieved successfully"
	msgUsersRetrieved = "Users retrieved successfully"
	msgUserUpdated    = "User updated successfully"
	msgUserDeleted    = "User deleted successfully"
)

// UserService exposes user record operations.
type UserService interface {
	GetUserByID(ctx context.Context, id string) (*Result, error)
	GetAllUsers(ctx context.Context) (*Result, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*Result, error)
	DeleteUser(ctx context.Context, id string) (*Result, error)
}

type userService struct {
	repo   repository.UserRepository
	hasher auth.PasswordHasher
	cache  Cache
	logger logging.Logger
	opts   Options
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, cache Cache, logger logging.Logger, opts Options) UserService {
	return &userService{repo: repo, hasher: hasher, cache: cache, logger: logger, opts: opts}
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, validationError("id is required")
	}
	if cached := cachedUser(ctx, s.cache, id); cached != nil {
		return &Result{HTTPStatus: http.StatusOK, Message: msgUserRetrieved, Data: cached}, nil
	}

	repoCtx, cancel := withTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()
	user, err := s.repo.FindByID(repoCtx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, "get user", err)
	}

	cacheUser(ctx, s.cache, user)
	return &Result{HTTPStatus: http.StatusOK, Message: msgUserRetrieved, Data: user}, nil
}

// GetAllUsers lists every account; an empty store yields an empty list.
func (s *userService) GetAllUsers(ctx context.Context) (*Result, error) {
	repoCtx, cancel := withTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()
	users, err := s.repo.List(repoCtx)
	if err != nil {
		return nil, s.mapRepoError(ctx, "list users", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return &Result{HTTPStatus: http.StatusOK, Message: msgUsersRetrieved, Data: users}, nil
}

// UpdateUser applies a partial update. A new password is always hashed
// before it reaches the store.
func (s *userService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*Result, error) {
	if id == "" {
		return nil, validationError("id is required")
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.isEmpty() {
		return nil, validationError("no fields to update")
	}

	update := model.UserUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Status:    in.Status,
		Role:      in.Role,
	}

	if in.Email != nil {
		if err := s.ensureEmailFree(ctx, id, *in.Email); err != nil {
			return nil, err
		}
		update.Email = in.Email
	}

	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordTooLong) || errors.Is(err, auth.ErrEmptyPassword) {
				return nil, validationError(err.Error())
			}
			return nil, s.mapRepoError(ctx, "hash password", err)
		}
		update.PasswordHash = &hash
	}

	repoCtx, cancel := withTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()
	user, err := s.repo.Update(repoCtx, id, update)
	if err != nil {
		return nil, s.mapRepoError(ctx, "update user", err)
	}
	evictUser(ctx, s.cache, id)

	return &Result{HTTPStatus: http.StatusOK, Message: msgUserUpdated, Data: user}, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, validationError("id is required")
	}

	repoCtx, cancel := withTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()
	user, err := s.repo.Delete(repoCtx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, "delete user", err)
	}
	evictUser(ctx, s.cache, id)

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return &Result{HTTPStatus: http.StatusOK, Message: msgUserDeleted, Data: user}, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, id, email string) error {
	repoCtx, cancel := withTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()
	existing, err := s.repo.FindByEmail(repoCtx, email)
	switch {
	case err == nil:
		if existing.ID != id {
			return apperrors.ErrEmailInUse
		}
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return s.mapRepoError(ctx, "lookup user by email", err)
	}
}

func (s *userService) mapRepoError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.ErrEmailInUse
	default:
		s.logger.Error(ctx, op+" failed", "error", err)
		return apperrors.ErrInternal
	}
}
