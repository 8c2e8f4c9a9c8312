// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password strength validation,
// hashing and verification. This abstracts the underlying algorithm
// (e.g. bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// ValidateStrength checks a plaintext password against the configured
	// policy and returns the first violated rule as the error.
	ValidateStrength(password string) error

	// Hash generates a salted hash from a plaintext password. Hashing the same
	// plaintext twice yields different outputs.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash. A malformed hash is
	// treated as a non-match, never an error.
	Check(password, hash string) bool
}
