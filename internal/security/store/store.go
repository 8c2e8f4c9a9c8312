// Package store defines the guard-state abstraction shared by the CSRF
// guard, the rate limiter and the lockout tracker. Implementations own all
// mutual exclusion: every operation is atomic, so callers never need a
// read-then-write sequence of their own.
package store

import (
	"context"
	"time"

	"pacta/internal/errors"
)

// ErrUnavailable indicates the guard-state backend is unreachable.
var ErrUnavailable = errors.New("guard store unavailable")

// GuardStore is the injected key/value store backing security state. The
// in-memory implementation serves a single process; the redis implementation
// shares state across instances.
type GuardStore interface {
	// Get returns the value for key, reporting whether it exists and is unexpired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key with the given lifetime.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// GetDel atomically reads and removes key, reporting whether it existed.
	GetDel(ctx context.Context, key string) (string, bool, error)

	// Increment atomically bumps the counter at key and returns the new count.
	// The lifetime is applied on the first hit only, giving window semantics:
	// the counter disappears ttl after the window opened.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// TTL returns the remaining lifetime of key, or zero when absent/expired.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
