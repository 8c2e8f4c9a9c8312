// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity of the system, representing one registered account.
type User struct {
	ID           uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Username     string    // The unique, case-sensitive login identifier.
	Email        string    // The user's unique contact email.
	PasswordHash string    // Stores the bcrypt-hashed password. Never leaves the credential path.
	IsActive     bool      // Whether the account is allowed to authenticate.
	CreatedAt    time.Time // Timestamp of when this user account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this user's data.
}

// Snapshot is the externally visible projection of a User. It deliberately
// carries no credential material so it can flow into responses and logs.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns the credential-free projection of the user.
func (u *User) Snapshot() *Snapshot {
	if u == nil {
		return nil
	}

	return &Snapshot{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
