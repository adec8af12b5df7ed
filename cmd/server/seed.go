package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yukikurage/task-manager-api/internal/auth"
	"github.com/yukikurage/task-manager-api/internal/config"
	"github.com/yukikurage/task-manager-api/internal/database"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the default administrator if no administrator exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return seedAdmin(cmd.Context(), cfg, log, db)
	},
}

func seedAdmin(ctx context.Context, cfg *config.Config, log zerolog.Logger, db *gorm.DB) error {
	created, err := database.SeedAdmin(ctx, db, cfg.DefaultAdmin, auth.NewPasswordHasher(bcrypt.DefaultCost))
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if !created {
		log.Debug().Msg("admin already present, skipping seed")
	}
	return nil
}
