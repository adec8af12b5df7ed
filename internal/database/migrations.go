package database

import (
	"fmt"

	"github.com/yukikurage/task-manager-api/internal/logger"
	"github.com/yukikurage/task-manager-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the users and tasks tables, including the
// partial unique indexes on active usernames and emails.
func Migrate(db *gorm.DB) error {
	log := logger.Get()
	log.Info().Msg("running database migrations")

	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("database migrations completed")
	return nil
}
