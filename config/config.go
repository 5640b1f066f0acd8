package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// HTTP server
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Claim retry policy for transient storage failures
	ClaimMaxAttempts    int           `envconfig:"CLAIM_MAX_ATTEMPTS" default:"3"`
	ClaimRetryBaseDelay time.Duration `envconfig:"CLAIM_RETRY_BASE_DELAY" default:"50ms"`

	// Conservation audit
	AuditEnabled  bool   `envconfig:"AUDIT_ENABLED" default:"true"`
	AuditSchedule string `envconfig:"AUDIT_SCHEDULE" default:"0 3 * * *"`

	// Logging and environment
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration invariants beyond what envconfig enforces
func (c *Config) Validate() error {
	if c.ClaimMaxAttempts < 1 {
		return fmt.Errorf("CLAIM_MAX_ATTEMPTS must be at least 1")
	}
	if c.ClaimRetryBaseDelay <= 0 {
		return fmt.Errorf("CLAIM_RETRY_BASE_DELAY must be positive")
	}
	return nil
}
