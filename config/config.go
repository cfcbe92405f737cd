package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string        `env:"DATABASE_URL"`
	Port               string        `env:"PORT" envDefault:"8080"`
	GoEnv              string        `env:"GO_ENV" envDefault:"development"`
	Auth0Domain        string        `env:"AUTH0_DOMAIN"`
	Auth0Audience      string        `env:"AUTH0_AUDIENCE"`
	AWSRegion          string        `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSS3Bucket        string        `env:"AWS_S3_BUCKET"`
	AWSS3Endpoint      string        `env:"AWS_S3_ENDPOINT"` // S3-compatible storage for local development
	AWSS3PathStyle     bool          `env:"AWS_S3_PATH_STYLE" envDefault:"false"`
	AWSAccessKeyID     string        `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY"`
	PhotoURLExpiry     time.Duration `env:"PHOTO_URL_EXPIRY" envDefault:"1h"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins        []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	Timezone           string        `env:"TIMEZONE" envDefault:"UTC"`
	SeedDemoData       bool          `env:"SEED_DEMO_DATA" envDefault:"false"`

	// Notifications
	SMSWebhookURL      string        `env:"SMS_WEBHOOK_URL"`
	SMSRatePerSecond   float64       `env:"SMS_RATE_PER_SECOND" envDefault:"5"`
	SMSTimeout         time.Duration `env:"SMS_TIMEOUT" envDefault:"10s"`
	BusinessName       string        `env:"BUSINESS_NAME" envDefault:"CleanCans Pro"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"30s"`
	OutboxMaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"3"`

	// Recurrence engine
	RecurrenceInterval   time.Duration `env:"RECURRENCE_INTERVAL" envDefault:"0s"` // 0 disables the in-process trigger
	RecurrenceCatchUp    string        `env:"RECURRENCE_CATCH_UP" envDefault:"all"`
	RecurrenceMaxCatchUp int           `env:"RECURRENCE_MAX_CATCH_UP" envDefault:"52"`
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// In production, environment variables are set directly
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using system environment variables")
		}
	} else {
		slog.Debug("loaded configuration file", "file", envFile)
	}

	return Parse()
}

// Parse builds the configuration from the process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.RecurrenceCatchUp {
	case "all", "single", "skip":
	default:
		return fmt.Errorf("RECURRENCE_CATCH_UP must be one of all, single, skip (got %q)", c.RecurrenceCatchUp)
	}
	if c.OutboxMaxAttempts < 1 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.IsProduction() && (c.Auth0Domain == "" || c.Auth0Audience == "") {
		return fmt.Errorf("AUTH0_DOMAIN and AUTH0_AUDIENCE are required in production")
	}
	return nil
}

// Location returns the time zone in which calendar dates are interpreted
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}
