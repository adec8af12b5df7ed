package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port     string `env:"PORT, default=8080"`
	GinMode  string `env:"GIN_MODE, default=debug"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	DBDriver    string `env:"DB_DRIVER, default=sqlite"`
	DatabaseURL string `env:"DATABASE_URL, default=taskmanager.db"`

	JWTSecret string        `env:"SECRET_KEY, default=dev-secret"`
	TokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL, default=30m"`

	AllowedOrigins []string `env:"CORS_ORIGINS, default=http://localhost:5173"`
	LoginRateLimit int      `env:"LOGIN_RATE_PER_MINUTE, default=20"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`

	DefaultAdmin AdminConfig
}

// AdminConfig holds the credentials used to seed the bootstrap administrator.
type AdminConfig struct {
	Username string `env:"DEFAULT_ADMIN_USERNAME, default=admin"`
	Email    string `env:"DEFAULT_ADMIN_EMAIL, default=admin@taskmanager.com"`
	Password string `env:"DEFAULT_ADMIN_PASSWORD, default=admin123"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that the rest of the application relies on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must not be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("config: SECRET_KEY must not be empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: ACCESS_TOKEN_TTL must be positive")
	}
	if c.LoginRateLimit <= 0 {
		return errors.New("config: LOGIN_RATE_PER_MINUTE must be greater than 0")
	}
	return nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
