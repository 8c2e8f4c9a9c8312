// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"pacta/config"
	domainerrors "pacta/internal/domain/errors"
	"pacta/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	accessSecret  string        // Secret key for signing access tokens.
	refreshSecret string        // Secret key for signing refresh tokens.
	accessTTL     time.Duration // Time-to-live for access tokens.
	refreshTTL    time.Duration // Time-to-live for refresh tokens.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	accessTTL := time.Hour
	refreshTTL := 7 * 24 * time.Hour
	if cfg.Auth != nil {
		if cfg.Auth.AccessTokenTTL > 0 {
			accessTTL = cfg.Auth.AccessTokenTTL
		}
		if cfg.Auth.RefreshTokenTTL > 0 {
			refreshTTL = cfg.Auth.RefreshTokenTTL
		}
	}

	return &jwtService{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssueAccess creates a new short-lived access token for the user.
func (s *jwtService) IssueAccess(userID uuid.UUID, username string) (string, error) {
	return s.generateToken(userID, username, s.accessTTL, s.accessSecret, service.TokenTypeAccess)
}

// IssueRefresh creates a new long-lived refresh token for the user.
func (s *jwtService) IssueRefresh(userID uuid.UUID, username string) (string, error) {
	return s.generateToken(userID, username, s.refreshTTL, s.refreshSecret, service.TokenTypeRefresh)
}

// Verify checks signature, expiry and the type discriminator of a token.
func (s *jwtService) Verify(tokenString, expectedType string) (*service.Claims, error) {
	secret := s.accessSecret
	if expectedType == service.TokenTypeRefresh {
		secret = s.refreshSecret
	}

	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	})

	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, domainerrors.ErrTokenMalformed.WrapMessage("failed to parse token structure")
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domainerrors.ErrTokenExpired.WrapMessage("token is past its expiry")
	case err != nil:
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token signature verification failed")
	case !token.Valid:
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token is not valid")
	}

	// A refresh token is never accepted where an access token is required
	// and vice versa.
	if claims.TokenType != expectedType {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("unexpected token type")
	}

	return claims, nil
}

// AccessTokenDuration returns the configured duration for access tokens.
func (s *jwtService) AccessTokenDuration() time.Duration {
	return s.accessTTL
}

// RefreshTokenDuration returns the configured duration for refresh tokens.
func (s *jwtService) RefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

// generateToken is a private helper to create a JWT with specific claims.
func (s *jwtService) generateToken(userID uuid.UUID, username string, ttl time.Duration, secret, tokenType string) (string, error) {
	now := time.Now()
	claims := &service.Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}
