// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/repute/internal/domain/achievement"
	"github.com/okian/repute/internal/domain/scoring"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageDriver selects the persistence adapter: memory or sqlite.
	StorageDriver string `koanf:"storage_driver"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`

	// AutoInitialize creates unknown profiles on first use instead of
	// answering 404.
	AutoInitialize bool `koanf:"auto_initialize"`

	// DecayPeriodSeconds is the inactivity period that costs 1% of score.
	DecayPeriodSeconds int64 `koanf:"decay_period_seconds"`

	// MaxDecayPercent caps the decay of a single pass.
	MaxDecayPercent uint32 `koanf:"max_decay_percent"`

	// MaxLeaderboardLimit caps GET /groups/{gid}/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// NotifyQueueSize bounds the in-memory notification queue.
	NotifyQueueSize int `koanf:"notify_queue_size"`

	// NotifyWorkers sets the number of notification dispatchers.
	NotifyWorkers int `koanf:"notify_workers"`

	// DedupeSize sets the size of the event_id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Achievements replaces the built-in catalog. Empty keeps the defaults.
	Achievements []achievement.Definition `koanf:"achievements"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		StorageDriver:       DriverMemory,
		SQLitePath:          "data/repute.db",
		DecayPeriodSeconds:  scoring.DefaultDecayPeriod,
		MaxDecayPercent:     scoring.DefaultMaxDecayPercent,
		MaxLeaderboardLimit: 100,
		NotifyQueueSize:     4096,
		NotifyWorkers:       2,
		DedupeSize:          500_000,
	}
}

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StorageDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage_driver %q", ErrInvalidConfig, c.StorageDriver)
	}
	if c.DecayPeriodSeconds <= 0 {
		return fmt.Errorf("%w: decay_period_seconds must be positive", ErrInvalidConfig)
	}
	if c.MaxDecayPercent == 0 || c.MaxDecayPercent > 100 {
		return fmt.Errorf("%w: max_decay_percent must be within 1..100", ErrInvalidConfig)
	}
	if c.MaxLeaderboardLimit <= 0 {
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	if c.NotifyQueueSize < 0 || c.NotifyWorkers < 0 {
		return fmt.Errorf("%w: notify_queue_size and notify_workers must not be negative", ErrInvalidConfig)
	}
	for _, def := range c.Achievements {
		if err := def.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
