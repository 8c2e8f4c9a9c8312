// Package repository defines the persistence ports consumed by the use cases.
// Concrete implementations live under internal/infra/persistence.
package repository

import (
	"context"

	"pacta/internal/domain/entity"
	"pacta/internal/errors"
)

// Sentinel errors returned by UserRepository implementations.
var (
	// ErrUserNotFound is returned when no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateIdentity is returned when an insert collides with the unique
	// username or email constraint. Detection relies on the constraint itself,
	// never on a prior existence check, so concurrent registrations cannot race.
	ErrDuplicateIdentity = errors.New("username or email already exists")
)

// UserRepository is the narrow credential-store interface the auth core consumes.
type UserRepository interface {
	// FindByUsername retrieves a user by its case-sensitive username.
	// Returns ErrUserNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Create persists a new user. The store assigns ID and timestamps back to
	// the entity. Returns ErrDuplicateIdentity on a uniqueness conflict.
	Create(ctx context.Context, user *entity.User) error
}
