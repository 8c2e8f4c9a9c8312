// Package lockout tracks consecutive failed credential verifications per
// client and suspends further attempts after the configured threshold. This
// is the stricter second tier behind the coarse request rate limit.
package lockout

import (
	"context"
	"strconv"
	"time"

	"pacta/config"
	"pacta/internal/security/store"

	"github.com/pkg/errors"
)

const keyPrefix = "lockout:"

// Status describes a client's lockout state.
type Status struct {
	Locked            bool
	RetryAfter        time.Duration // remaining cooldown when locked
	RemainingAttempts int           // attempts left before lockout, 0 when locked
}

// Tracker counts failed password verifications in the injected GuardStore.
// The counter carries the cooldown as its TTL, so a lockout ends by natural
// expiry and the record disappears with it.
type Tracker struct {
	guardStore store.GuardStore
	threshold  int64
	cooldown   time.Duration
}

// NewTracker constructs the lockout tracker.
func NewTracker(guardStore store.GuardStore, cfg *config.Config) *Tracker {
	threshold := int64(5)
	cooldown := 30 * time.Minute
	if cfg.Lockout != nil {
		if cfg.Lockout.Threshold > 0 {
			threshold = int64(cfg.Lockout.Threshold)
		}
		if cfg.Lockout.Cooldown > 0 {
			cooldown = cfg.Lockout.Cooldown
		}
	}

	return &Tracker{
		guardStore: guardStore,
		threshold:  threshold,
		cooldown:   cooldown,
	}
}

// Check reports the client's current state without recording anything.
func (t *Tracker) Check(ctx context.Context, clientID string) (Status, error) {
	value, ok, err := t.guardStore.Get(ctx, keyPrefix+clientID)
	if err != nil {
		return Status{}, errors.Wrap(err, "failed to read lockout record")
	}
	if !ok {
		return Status{RemainingAttempts: int(t.threshold)}, nil
	}

	count := parseCount(value)
	if count < t.threshold {
		return Status{RemainingAttempts: int(t.threshold - count)}, nil
	}

	retryAfter, err := t.guardStore.TTL(ctx, keyPrefix+clientID)
	if err != nil {
		return Status{}, errors.Wrap(err, "failed to read lockout deadline")
	}
	if retryAfter <= 0 {
		retryAfter = t.cooldown
	}

	return Status{Locked: true, RetryAfter: retryAfter}, nil
}

// RecordFailure counts one failed verification and returns the resulting
// state. Reaching the threshold locks the client for the cooldown.
func (t *Tracker) RecordFailure(ctx context.Context, clientID string) (Status, error) {
	count, err := t.guardStore.Increment(ctx, keyPrefix+clientID, t.cooldown)
	if err != nil {
		return Status{}, errors.Wrap(err, "failed to record login failure")
	}

	if count >= t.threshold {
		// Re-arm the record so the cooldown runs from the moment the lock
		// triggers, not from the first failure in the window.
		value := strconv.FormatInt(count, 10)
		if err := t.guardStore.Set(ctx, keyPrefix+clientID, value, t.cooldown); err != nil {
			return Status{}, errors.Wrap(err, "failed to arm lockout record")
		}

		return Status{Locked: true, RetryAfter: t.cooldown}, nil
	}

	return Status{RemainingAttempts: int(t.threshold - count)}, nil
}

// Reset clears the failure record, e.g. after a successful authentication.
func (t *Tracker) Reset(ctx context.Context, clientID string) error {
	if err := t.guardStore.Delete(ctx, keyPrefix+clientID); err != nil {
		return errors.Wrap(err, "failed to clear lockout record")
	}

	return nil
}

func parseCount(value string) int64 {
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}

	return count
}
