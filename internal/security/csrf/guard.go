// Package csrf issues and consumes one-time anti-forgery tokens.
package csrf

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"pacta/config"
	"pacta/internal/security/store"

	"github.com/pkg/errors"
)

const keyPrefix = "csrf:"

// tokenBytes yields 256 bits of entropy per token.
const tokenBytes = 32

// Guard owns the CSRF token lifecycle. Tokens live in the injected
// GuardStore with a fixed TTL and are consumed at most once.
type Guard struct {
	guardStore store.GuardStore
	tokenTTL   time.Duration
	logger     *slog.Logger
}

// NewGuard constructs the CSRF guard.
func NewGuard(guardStore store.GuardStore, cfg *config.Config, logger *slog.Logger) *Guard {
	tokenTTL := 24 * time.Hour
	if cfg.CSRF != nil && cfg.CSRF.TokenTTL > 0 {
		tokenTTL = cfg.CSRF.TokenTTL
	}

	return &Guard{
		guardStore: guardStore,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

// Issue generates a cryptographically random token and records it with its
// expiration. Expired tokens in the store fall out via their TTL.
func (g *Guard) Issue(ctx context.Context) (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "failed to generate csrf token")
	}

	token := hex.EncodeToString(raw)
	if err := g.guardStore.Set(ctx, keyPrefix+token, "1", g.tokenTTL); err != nil {
		return "", errors.Wrap(err, "failed to record csrf token")
	}

	return token, nil
}

// ValidateAndConsume reports whether the token is known and unexpired,
// removing it in the same atomic step so it can never be accepted twice.
// Absent, unknown and expired tokens all return false; this never errors
// toward the caller's client.
func (g *Guard) ValidateAndConsume(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	_, ok, err := g.guardStore.GetDel(ctx, keyPrefix+token)
	if err != nil {
		g.logger.Error("CSRF store lookup failed", slog.Any("error", err))

		return false
	}

	return ok
}
