// Package usecase defines the application's business logic interfaces and
// their command/result DTOs. Every operation takes a request struct and
// returns a result struct; the delivery layer maps results onto HTTP
// responses and cookies.
package usecase

import (
	"context"

	"pacta/internal/domain/entity"

	"github.com/google/uuid"
)

// LoginInput carries one login command. ClientID identifies the caller for
// lockout accounting (typically the remote IP).
type LoginInput struct {
	Username   string `json:"username" form:"username" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
	ClientID   string `json:"-" form:"-"`
}

// RegisterInput carries one registration command.
type RegisterInput struct {
	Username   string `json:"username" form:"username" validate:"required,min=3,max=50"`
	Email      string `json:"email" form:"email" validate:"required,email"`
	Password   string `json:"password" form:"password" validate:"required"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
	ClientID   string `json:"-" form:"-"`
}

// TokenPair bundles the freshly minted access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResult is the outcome of a successful login, registration or refresh.
type AuthResult struct {
	User    *entity.Snapshot `json:"user"`
	Tokens  *TokenPair       `json:"-"`
	Message string           `json:"-"`
}

// SessionResult is the outcome of passive cookie hydration. It is always
// produced, never an error: verification failures yield the anonymous state.
type SessionResult struct {
	Authenticated bool      `json:"is_authenticated"`
	Username      string    `json:"username,omitempty"`
	UserID        uuid.UUID `json:"user_id,omitempty"`
}

// AuthUsecase is the auth session controller: it orchestrates credential
// verification, lockout accounting and token issuance.
type AuthUsecase interface {
	// Login verifies credentials and mints a token pair. Failed verifications
	// feed the lockout tracker for the client.
	Login(ctx context.Context, input *LoginInput) (*AuthResult, error)

	// Register validates, stores and immediately authenticates a new account.
	Register(ctx context.Context, input *RegisterInput) (*AuthResult, error)

	// Refresh exchanges a valid refresh token for a fresh access token.
	// The refresh token itself remains unchanged.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)

	// LoadSession hydrates the session from an access-token cookie value.
	// Any verification failure silently degrades to the anonymous state.
	LoadSession(ctx context.Context, accessToken string) *SessionResult
}
