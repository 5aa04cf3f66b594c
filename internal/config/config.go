// Package config loads broker server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// devJWTSecret signs admin tokens in dev mode when no secret is configured.
const devJWTSecret = "broker-dev-secret-do-not-use-in-production"

// Config holds all server settings.
type Config struct {
	Port    int    `env:"BROKER_PORT" envDefault:"8080"`
	BaseURL string `env:"BROKER_BASE_URL" envDefault:"http://localhost:8080"`
	DevMode bool   `env:"BROKER_DEV_MODE" envDefault:"false"`

	DBDriver string `env:"BROKER_DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"BROKER_DB_DSN"`

	JWTSecret string        `env:"BROKER_JWT_SECRET"`
	TokenTTL  time.Duration `env:"BROKER_TOKEN_TTL" envDefault:"24h"`

	AdminEmail    string `env:"BROKER_ADMIN_EMAIL"`
	AdminPassword string `env:"BROKER_ADMIN_PASSWORD"`

	SMTPHost    string `env:"BROKER_SMTP_HOST"`
	SMTPPort    string `env:"BROKER_SMTP_PORT" envDefault:"587"`
	SMTPUser    string `env:"BROKER_SMTP_USER"`
	SMTPPass    string `env:"BROKER_SMTP_PASS"`
	SMTPFrom    string `env:"BROKER_SMTP_FROM"`
	NotifyEmail string `env:"BROKER_NOTIFY_EMAIL"`

	AWSRegion      string `env:"AWS_REGION"`
	AWSBucket      string `env:"AWS_BUCKET_NAME"`
	AWSAccessKey   string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	UploadMaxBytes int64  `env:"BROKER_UPLOAD_MAX_BYTES" envDefault:"5242880"`
}

// Load reads an optional .env file from the working directory and parses
// the environment into a Config.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return parse(env.Options{})
}

// FromMap parses a Config from the given variables instead of the process
// environment.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DBDSN == "" && cfg.DBDriver == "sqlite" {
		path, err := DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DBDSN = path
	}

	if cfg.JWTSecret == "" && cfg.DevMode {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("BROKER_DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("BROKER_DB_DSN is required for %s", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("BROKER_JWT_SECRET is required outside dev mode")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("BROKER_TOKEN_TTL must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("BROKER_UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// UsingDevSecret reports whether admin tokens are signed with the built-in
// development key.
func (c Config) UsingDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

// StorageConfigured reports whether an S3 bucket is set.
func (c Config) StorageConfigured() bool {
	return c.AWSRegion != "" && c.AWSBucket != ""
}

// DefaultDBPath returns the default SQLite path: ~/.broker/broker.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".broker", "broker.db"), nil
}
