package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/logging"
	"userauth/internal/model"
	"userauth/internal/notify"
	"userauth/internal/repository"
)

const (
	msgUserCreated   = "User created successfully"
	msgLoggedIn      = "Login successful."
	msgResetLinkSent = "A password reset link has been sent to your email."
	msgPasswordReset = "Password reset successfully"
	msgLoggedOut     = "Logged out successfully"
)

// AuthService handles registration, login and password reset.
type AuthService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*Result, error)
	LoginUser(ctx context.Context, in LoginInput) (*Result, error)
	SendResetLink(ctx context.Context, in ForgotPasswordInput) (*Result, error)
	VerifyTokenAndResetPassword(ctx context.Context, in ResetPasswordInput) (*Result, error)
	Logout(ctx context.Context, claims *auth.Claims) (*Result, error)
}

type authService struct {
	repo       repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	sender     notify.Sender
	cache      Cache
	logger     logging.Logger
	opts       Options

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	repo repository.UserRepository,
	hasher auth.PasswordHasher,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	sender notify.Sender,
	cache Cache,
	logger logging.Logger,
	opts Options,
) AuthService {
	return &authService{
		repo:       repo,
		hasher:     hasher,
		jwtService: jwtService,
		tokenStore: tokenStore,
		sender:     sender,
		cache:      cache,
		logger:     logger,
		opts:       opts,
	}
}

// CreateUser registers an account and returns a session token for it.
func (s *authService) CreateUser(ctx context.Context, in CreateUserInput) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	email := in.Email

	// Check if the email is already registered
	_, err := s.findByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperrors.ErrEmailInUse
	case !errors.Is(err, repository.ErrNotFound):
		return nil, s.internal(ctx, "lookup user by email", err)
	}

	hash, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	status := model.StatusActive
	if in.Status != nil {
		status = *in.Status
	}
	user, err := s.create(ctx, &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: hash,
		Status:       status,
		Role:         in.Role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.ErrEmailInUse
		}
		return nil, s.internal(ctx, "create user", err)
	}

	token, err := s.jwtService.IssueSession(sessionClaims(user))
	if err != nil {
		return nil, s.internal(ctx, "issue session token", err)
	}

	// Mirror the issued token onto the record
	if _, err := s.update(ctx, user.ID, model.UserUpdate{Token: &token}); err != nil {
		return nil, s.internal(ctx, "store session token", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return &Result{HTTPStatus: http.StatusCreated, Message: msgUserCreated, Token: token}, nil
}

// LoginUser checks credentials and issues a session token. Unknown emails
// and wrong passwords fail identically.
func (s *authService) LoginUser(ctx context.Context, in LoginInput) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.findByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.verifyDummy(in.Password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "lookup user by email", err)
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.IssueSession(sessionClaims(user))
	if err != nil {
		return nil, s.internal(ctx, "issue session token", err)
	}
	return &Result{HTTPStatus: http.StatusOK, Message: msgLoggedIn, Token: token}, nil
}

// SendResetLink emails a short-lived reset link to the account owner.
func (s *authService) SendResetLink(ctx context.Context, in ForgotPasswordInput) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.findByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.opts.HideUnknownResetEmail {
				return &Result{HTTPStatus: http.StatusOK, Message: msgResetLinkSent}, nil
			}
			return nil, apperrors.ErrUserNotFound
		}
		return nil, s.internal(ctx, "lookup user by email", err)
	}

	token, err := s.jwtService.IssueReset(user.ID)
	if err != nil {
		return nil, s.internal(ctx, "issue reset token", err)
	}
	link, err := url.JoinPath(s.opts.ResetURLBase, token)
	if err != nil {
		return nil, s.internal(ctx, "build reset url", err)
	}
	body, err := notify.RenderPasswordReset(link, user.Email)
	if err != nil {
		return nil, s.internal(ctx, "render reset email", err)
	}

	sendCtx, cancel := withTimeout(ctx, s.opts.NotificationTimeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, user.Email, notify.PasswordResetSubject, body); err != nil {
		s.logger.Error(ctx, "send reset email failed", "user_id", user.ID, "error", err)
		return nil, apperrors.ErrNotification
	}

	s.logger.Info(ctx, "password reset link sent", "user_id", user.ID)
	return &Result{HTTPStatus: http.StatusOK, Message: msgResetLinkSent}, nil
}

// VerifyTokenAndResetPassword sets a new password for the owner of a valid,
// unused reset token. It does not sign the user in.
func (s *authService) VerifyTokenAndResetPassword(ctx context.Context, in ResetPasswordInput) (*Result, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	claims, err := s.jwtService.VerifyReset(in.Token)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			return nil, s.internal(ctx, "verify reset token", err)
		}
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	if _, err := s.findByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, s.internal(ctx, "lookup user by id", err)
	}

	hash, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	fresh, err := s.tokenStore.ConsumeResetToken(ctx, claims.ID, s.jwtService.Remaining(claims))
	if err != nil {
		return nil, s.internal(ctx, "consume reset token", err)
	}
	if !fresh {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	if _, err := s.update(ctx, claims.UserID, model.UserUpdate{PasswordHash: &hash}); err != nil {
		s.logger.Error(ctx, "update password failed", "user_id", claims.UserID, "error", err)
		// The password did not change, so the link stays usable.
		if rerr := s.tokenStore.ReleaseResetToken(ctx, claims.ID); rerr != nil {
			s.logger.Warn(ctx, "release reset token failed", "user_id", claims.UserID, "error", rerr)
		}
		return nil, apperrors.ErrPasswordUpdateFailed
	}
	evictUser(ctx, s.cache, claims.UserID)

	s.logger.Info(ctx, "password reset", "user_id", claims.UserID)
	return &Result{HTTPStatus: http.StatusOK, Message: msgPasswordReset}, nil
}

// Logout revokes the presented session token until it expires.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) (*Result, error) {
	if claims == nil || claims.ID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.tokenStore.RevokeAccessToken(ctx, claims.ID, s.jwtService.Remaining(claims)); err != nil {
		return nil, s.internal(ctx, "revoke session token", err)
	}
	return &Result{HTTPStatus: http.StatusOK, Message: msgLoggedOut}, nil
}

// verifyDummy runs a password comparison that always fails, so a login for
// an unknown email costs as much as one with a wrong password.
func (s *authService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("unknown-account-placeholder")
	})
	if s.dummyHash != "" {
		_ = s.hasher.Verify(password, s.dummyHash)
	}
}

func (s *authService) hashPassword(ctx context.Context, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	switch {
	case err == nil:
		return hash, nil
	case errors.Is(err, auth.ErrEmptyPassword):
		return "", validationError("password is required")
	case errors.Is(err, auth.ErrPasswordTooLong):
		return "", validationError("password must be at most 72 bytes")
	default:
		return "", s.internal(ctx, "hash password", err)
	}
}

func (s *authService) findByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()
	return s.repo.FindByEmail(ctx, email)
}

func (s *authService) findByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()
	return s.repo.FindByID(ctx, id)
}

func (s *authService) create(ctx context.Context, user *model.User) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()
	return s.repo.Create(ctx, user)
}

func (s *authService) update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()
	return s.repo.Update(ctx, id, update)
}

// internal logs a collaborator failure and hides it behind ErrInternal.
func (s *authService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", "error", err)
	return apperrors.ErrInternal
}

func sessionClaims(user *model.User) auth.Claims {
	return auth.Claims{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Status:    user.Status,
		Role:      user.Role,
	}
}
