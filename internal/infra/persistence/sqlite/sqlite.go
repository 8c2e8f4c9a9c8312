// Package sqlite contains the concrete implementation of the persistence
// layer using GORM and SQLite.
package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"pacta/config"
	"pacta/internal/domain/entity"
	"pacta/internal/domain/repository"
	"pacta/internal/domain/service"
	"pacta/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the SQLite database and runs the schema migration.
func New(cfg *config.Config) (*gorm.DB, error) {
	dbPath := cfg.Database.Path
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// TranslateError maps driver unique-violation errors onto
		// gorm.ErrDuplicatedKey so repositories stay backend-agnostic.
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.AutoMigrate(&model.UserModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return db, nil
}

// SeedAdmin ensures the default administrative account exists. It is
// idempotent: a second run against the same database is a no-op. The duplicate
// branch also covers two processes seeding concurrently.
func SeedAdmin(ctx context.Context, repo repository.UserRepository, hasher service.PasswordHasher, cfg *config.Config, log *slog.Logger) error {
	bootstrap := cfg.Bootstrap
	if bootstrap == nil || bootstrap.AdminUsername == "" || bootstrap.AdminPassword == "" {
		log.Info("Admin bootstrap skipped: no seed credentials configured")

		return nil
	}

	_, err := repo.FindByUsername(ctx, bootstrap.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(err, "failed to check for existing admin user")
	}

	hash, err := hasher.Hash(bootstrap.AdminPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash admin password")
	}

	admin := &entity.User{
		Username:     bootstrap.AdminUsername,
		Email:        bootstrap.AdminEmail,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := repo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdentity) {
			return nil
		}

		return errors.Wrap(err, "failed to seed admin user")
	}

	log.Info("Admin account seeded", slog.String("username", bootstrap.AdminUsername))

	return nil
}
