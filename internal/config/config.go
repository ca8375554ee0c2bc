package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DATABASE_URL is optional: the run command works file-only, while
	// serve/brief/sources require Postgres for the archive and source table.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"8"`

	FeedsFile    string `envconfig:"FEEDS_FILE" default:"feeds.yaml"`
	SettingsFile string `envconfig:"SETTINGS_FILE" default:"settings.json"`
	SourcesFile  string `envconfig:"SOURCES_FILE" default:""`
	MockFeedDir  string `envconfig:"MOCK_FEED_DIR" default:""`

	FetchTimeoutSeconds int    `envconfig:"FETCH_TIMEOUT_SECONDS" default:"15"`
	FetchUserAgent      string `envconfig:"FETCH_USER_AGENT" default:""`

	// Bcrypt hash guarding mutating API endpoints. Empty disables the check.
	EditorPasswordHash string `envconfig:"EDITOR_PASSWORD_HASH" default:""`

	HTTPPort int `envconfig:"HTTP_PORT" default:"8787"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.FeedsFile) == "" {
		return fmt.Errorf("FEEDS_FILE is required")
	}
	if strings.TrimSpace(c.SettingsFile) == "" {
		return fmt.Errorf("SETTINGS_FILE is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.FetchTimeoutSeconds < 1 {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must be >= 1")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) HasDatabase() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}
