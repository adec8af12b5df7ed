package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yukikurage/task-manager-api/internal/config"
	"github.com/yukikurage/task-manager-api/internal/database"
	"github.com/yukikurage/task-manager-api/internal/logger"
	"gorm.io/gorm"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "task-manager-api",
	Short: "Task management API with role-based access",
	Long: `A task management backend where users manage their own tasks and
administrators manage users and every task.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
}

// bootstrap loads configuration, initialises logging and opens the database.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, *gorm.DB, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, zerolog.Nop(), nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsRelease(),
	})

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, log, nil, err
	}
	return cfg, log, db, nil
}
