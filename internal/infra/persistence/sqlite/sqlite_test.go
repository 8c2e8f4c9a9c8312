package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"pacta/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type plainHasher struct{}

func (plainHasher) ValidateStrength(string) error { return nil }

func (plainHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	return string(bytes), err
}

func (plainHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func TestSeedAdmin_IsIdempotent(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		Bootstrap: &config.BootstrapConfig{
			AdminUsername: "admin",
			AdminEmail:    "admin@pacta.app",
			AdminPassword: "admin-seed-password",
		},
	}

	ctx := context.Background()
	require.NoError(t, SeedAdmin(ctx, repo, plainHasher{}, cfg, logger))

	admin, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@pacta.app", admin.Email)
	assert.True(t, admin.IsActive)
	assert.True(t, plainHasher{}.Check("admin-seed-password", admin.PasswordHash))

	// Second run must not fail or create another account.
	require.NoError(t, SeedAdmin(ctx, repo, plainHasher{}, cfg, logger))

	again, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
}

func TestSeedAdmin_SkipsWithoutCredentials(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{Bootstrap: &config.BootstrapConfig{AdminUsername: "admin"}}

	require.NoError(t, SeedAdmin(context.Background(), repo, plainHasher{}, cfg, logger))

	_, err := repo.FindByUsername(context.Background(), "admin")
	assert.Error(t, err)
}
