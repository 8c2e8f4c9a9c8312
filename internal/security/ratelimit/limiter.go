// Package ratelimit caps requests per client within a moving window.
package ratelimit

import (
	"context"
	"time"

	"pacta/config"
	"pacta/internal/security/store"

	"github.com/pkg/errors"
)

const keyPrefix = "rate:"

// Limiter enforces a per-endpoint, per-client request budget backed by the
// injected GuardStore. The window opens on the first request and the counter
// expires with it.
type Limiter struct {
	guardStore  store.GuardStore
	maxRequests int64
	window      time.Duration
}

// NewLimiter constructs the request rate limiter.
func NewLimiter(guardStore store.GuardStore, cfg *config.Config) *Limiter {
	maxRequests := int64(5)
	window := time.Minute
	if cfg.RateLimit != nil {
		if cfg.RateLimit.MaxRequests > 0 {
			maxRequests = int64(cfg.RateLimit.MaxRequests)
		}
		if cfg.RateLimit.Window > 0 {
			window = cfg.RateLimit.Window
		}
	}

	return &Limiter{
		guardStore:  guardStore,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow records one request for the endpoint+client pair and reports whether
// it fits the budget. When the budget is exhausted it returns the time until
// the window resets.
func (l *Limiter) Allow(ctx context.Context, endpoint, clientID string) (bool, time.Duration, error) {
	key := keyPrefix + endpoint + ":" + clientID

	count, err := l.guardStore.Increment(ctx, key, l.window)
	if err != nil {
		return false, 0, errors.Wrap(err, "failed to record request attempt")
	}

	if count <= l.maxRequests {
		return true, 0, nil
	}

	retryAfter, err := l.guardStore.TTL(ctx, key)
	if err != nil {
		return false, 0, errors.Wrap(err, "failed to read window deadline")
	}
	if retryAfter <= 0 {
		retryAfter = l.window
	}

	return false, retryAfter, nil
}
