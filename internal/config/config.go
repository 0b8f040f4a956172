// Package config defines service configuration and its loading order.
package config

import "github.com/apexline/gridlock/internal/rating"

// Config contains process configuration
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the sqlite database file. ":memory:" works for ephemeral runs.
	DBPath string `koanf:"db_path"`

	// AdminKey guards the admin API. Generated at startup when empty.
	AdminKey string `koanf:"admin_key"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// HTTPLogging toggles per-request access logging.
	HTTPLogging bool `koanf:"http_logging"`

	// FieldSize is the number of drivers every ordering must rank.
	FieldSize int `koanf:"field_size"`

	// ResultsFeedURL is the base URL of the external timing feed.
	// Feed-driven settlement is disabled when empty.
	ResultsFeedURL string `koanf:"results_feed_url"`

	// LeaderboardLimit caps GET /api/leaderboard?limit.
	LeaderboardLimit int `koanf:"leaderboard_limit"`
}

// New creates a Config with defaults
func New() *Config {
	return &Config{
		Addr:             ":8080",
		DBPath:           "gridlock.db",
		LogLevel:         "info",
		FieldSize:        rating.DefaultFieldSize,
		LeaderboardLimit: 100,
	}
}
