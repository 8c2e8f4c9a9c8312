package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type discriminators embedded in the "type" claim. A refresh token is
// never accepted where an access token is required and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom claims carried by PACTA tokens.
type Claims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and verifying signed,
// time-bound tokens. It is independent of storage.
type TokenService interface {
	// IssueAccess mints a short-lived access token for the user.
	IssueAccess(userID uuid.UUID, username string) (string, error)

	// IssueRefresh mints a long-lived refresh token for the user.
	IssueRefresh(userID uuid.UUID, username string) (string, error)

	// Verify validates signature, expiry and the type claim. Fails with the
	// token sentinels from the domain errors package.
	Verify(tokenString, expectedType string) (*Claims, error)

	// AccessTokenDuration returns the configured access token lifetime.
	AccessTokenDuration() time.Duration

	// RefreshTokenDuration returns the configured refresh token lifetime.
	RefreshTokenDuration() time.Duration
}
