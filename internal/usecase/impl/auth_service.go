// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"pacta/internal/domain/entity"
	domainerrors "pacta/internal/domain/errors"
	"pacta/internal/domain/repository"
	"pacta/internal/domain/service"
	"pacta/internal/security/lockout"
	"pacta/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	lockouts     *lockout.Tracker
	validate     *validator.Validate
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Lockouts     *lockout.Tracker
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		lockouts:     params.Lockouts,
		validate:     validator.New(),
		logger:       params.Logger,
	}
}

// Login orchestrates the user login process.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthResult, error) {
	// Empty credentials are rejected locally, before any store round-trip.
	if input.Username == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.
			WithMessage("Username and password are required")
	}

	status, err := srv.lockouts.Check(ctx, input.ClientID)
	if err != nil {
		srv.logger.Error("Lockout check failed", slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("lockout check failed")
	}
	if status.Locked {
		srv.logger.Warn("Login rejected: client locked out",
			slog.String("clientID", input.ClientID),
			slog.Duration("retryAfter", status.RetryAfter))

		return nil, lockedError(status.RetryAfter)
	}

	user, err := srv.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Same path as a wrong password so account existence is not revealed.
			return nil, srv.failCredentials(ctx, input.ClientID, input.Username)
		}
		srv.logger.Error("Login lookup failed", slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to look up user")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		return nil, srv.failCredentials(ctx, input.ClientID, input.Username)
	}

	if !user.IsActive {
		srv.logger.Warn("Login rejected: account disabled", slog.String("username", input.Username))

		return nil, domainerrors.ErrAccountDisabled
	}

	if err := srv.lockouts.Reset(ctx, input.ClientID); err != nil {
		// The login itself succeeded; a stale counter only shortens the
		// client's remaining budget.
		srv.logger.Warn("Failed to clear lockout record", slog.Any("error", err))
	}

	tokens, err := srv.issueTokens(user)
	if err != nil {
		srv.logger.Error("Token issuance failed", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to issue tokens")
	}

	srv.logger.Debug("User logged in", slog.Any("userID", user.ID))

	return &usecase.AuthResult{
		User:    user.Snapshot(),
		Tokens:  tokens,
		Message: "Login successful",
	}, nil
}

// Register orchestrates the complete user registration process.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthResult, error) {
	// All input validation happens before any store access.
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.
			WithMessage("Username, email and password are required")
	}
	if err := srv.validate.Var(input.Email, "required,email"); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithMessage("Invalid email address")
	}
	if err := srv.hasher.ValidateStrength(input.Password); err != nil {
		srv.logger.Warn("Password validation failed during registration",
			slog.String("username", input.Username))

		return nil, err
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.logger.Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password")
	}

	newUser := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			// One combined message; which field conflicted is not disclosed.
			return nil, domainerrors.ErrDuplicateIdentity
		}
		srv.logger.Error("Failed to create user during registration", slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to create user")
	}

	tokens, err := srv.issueTokens(newUser)
	if err != nil {
		srv.logger.Error("Token issuance failed", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to issue tokens")
	}

	srv.logger.Info("User registered", slog.Any("userID", newUser.ID))

	return &usecase.AuthResult{
		User:    newUser.Snapshot(),
		Tokens:  tokens,
		Message: "Registration successful",
	}, nil
}

// Refresh handles the process of issuing a new access token using a refresh
// token. The refresh token remains unchanged, which avoids rotation races
// between concurrent tabs.
func (srv *authService) Refresh(ctx context.Context, refreshToken string) (*usecase.AuthResult, error) {
	claims, err := srv.tokenService.Verify(refreshToken, service.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// Re-check the account: a user disabled after login must not be able to
	// keep minting access tokens.
	user, err := srv.userRepo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrTokenInvalid.WrapMessage("subject no longer exists")
		}
		srv.logger.Error("Refresh lookup failed", slog.Any("error", err))

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to look up user")
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountDisabled
	}

	accessToken, err := srv.tokenService.IssueAccess(user.ID, user.Username)
	if err != nil {
		srv.logger.Error("Token issuance failed", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to issue access token")
	}

	srv.logger.Debug("Access token refreshed", slog.Any("userID", user.ID))

	return &usecase.AuthResult{
		User:    user.Snapshot(),
		Tokens:  &usecase.TokenPair{AccessToken: accessToken},
		Message: "Token refreshed",
	}, nil
}

// LoadSession hydrates authentication state from an access-token cookie
// value. It deliberately never returns an error: any verification failure
// degrades to the anonymous state without surfacing to the user.
func (srv *authService) LoadSession(ctx context.Context, accessToken string) *usecase.SessionResult {
	if accessToken == "" {
		return &usecase.SessionResult{}
	}

	claims, err := srv.tokenService.Verify(accessToken, service.TokenTypeAccess)
	if err != nil {
		srv.logger.Debug("Session cookie rejected", slog.Any("error", err))

		return &usecase.SessionResult{}
	}

	return &usecase.SessionResult{
		Authenticated: true,
		Username:      claims.Subject,
		UserID:        claims.UserID,
	}
}

// failCredentials records one failed verification for the client and builds
// the uniform rejection. Unknown usernames and wrong passwords share this
// path so the two cases are indistinguishable to the caller.
func (srv *authService) failCredentials(ctx context.Context, clientID, username string) error {
	srv.logger.Warn("Login failed: invalid credentials", slog.String("username", username))

	status, err := srv.lockouts.RecordFailure(ctx, clientID)
	if err != nil {
		srv.logger.Error("Failed to record login failure", slog.Any("error", err))

		return domainerrors.ErrInvalidCredentials
	}

	if status.Locked {
		return lockedError(status.RetryAfter)
	}

	return domainerrors.ErrInvalidCredentials.WithMessage(fmt.Sprintf(
		"Invalid username or password. %d attempts remaining", status.RemainingAttempts))
}

func (srv *authService) issueTokens(user *entity.User) (*usecase.TokenPair, error) {
	accessToken, err := srv.tokenService.IssueAccess(user.ID, user.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, err := srv.tokenService.IssueRefresh(user.ID, user.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	return &usecase.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func lockedError(retryAfter time.Duration) error {
	minutes := int(math.Ceil(retryAfter.Minutes()))
	if minutes < 1 {
		minutes = 1
	}

	return domainerrors.ErrAccountLocked.WithMessage(fmt.Sprintf(
		"Too many failed attempts. Try again in %d minutes", minutes))
}
