package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/task-manager-api/internal/config"
	"github.com/yukikurage/task-manager-api/internal/logger"
	"github.com/yukikurage/task-manager-api/internal/models"
	"gorm.io/gorm"
)

// ErrSeedUsernameTaken is returned when the default admin username or email belongs to
// an active non-admin account.
var ErrSeedUsernameTaken = errors.New("default admin username or email is taken by a non-admin user")

// PasswordHasher hashes the bootstrap admin password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// SeedAdmin creates the default administrator when no active admin exists.
// It reports whether a user was created.
func SeedAdmin(ctx context.Context, db *gorm.DB, admin config.AdminConfig, hasher PasswordHasher) (bool, error) {
	created := false

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admins int64
		if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins > 0 {
			return nil
		}

		var taken int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", admin.Username, admin.Email).
			Count(&taken).Error; err != nil {
			return fmt.Errorf("failed to check default admin: %w", err)
		}
		if taken > 0 {
			return ErrSeedUsernameTaken
		}

		hash, err := hasher.Hash(admin.Password)
		if err != nil {
			return fmt.Errorf("failed to hash default admin password: %w", err)
		}

		user := &models.User{
			Username:     admin.Username,
			Email:        admin.Email,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create default admin: %w", err)
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if created {
		log := logger.Get()
		log.Info().Str("username", admin.Username).Msg("default admin created")
	}
	return created, nil
}
