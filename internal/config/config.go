// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/trailmark/internal/analytics"
	"github.com/tomtom215/trailmark/internal/cache"
	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/validation"
)

// ErrRollupIncomplete is returned when the rollup is enabled without an
// input file or output directory.
var ErrRollupIncomplete = errors.New("rollup is enabled but not fully configured")

// ErrCacheBounds is returned when size eviction would empty the cache.
var ErrCacheBounds = errors.New("cache bounds keep no entries after eviction")

// Config holds all Trailmark configuration.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Cache      CacheConfig      `koanf:"cache"`
	Analytics  AnalyticsConfig  `koanf:"analytics"`
	Rollup     RollupConfig     `koanf:"rollup"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// CacheConfig bounds the daily and weekly result caches. Both caches share
// these settings.
type CacheConfig struct {
	// MaxEntries is the hard entry limit per cache.
	// Default: 500
	MaxEntries int `koanf:"max_entries" validate:"gte=1"`

	// EvictionTargetRatio is the fraction of MaxEntries kept after a
	// size eviction.
	// Default: 0.9
	EvictionTargetRatio float64 `koanf:"eviction_target_ratio" validate:"gt=0,lte=1"`

	// SweepInterval is how often expired entries are purged.
	// Default: 1m
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`

	// TTL is how long a computed result stays cached.
	// Default: 5m
	TTL time.Duration `koanf:"ttl" validate:"gt=0"`
}

// AnalyticsConfig holds aggregation settings.
type AnalyticsConfig struct {
	// TopPagesLimit caps the per-day top pages list.
	// Default: 10
	TopPagesLimit int `koanf:"top_pages_limit" validate:"gte=1"`

	// CohortPeriods is the number of retention periods per cohort.
	// Default: 12
	CohortPeriods int `koanf:"cohort_periods" validate:"gte=1"`

	// Timezone is an IANA zone name used for day, week and month boundaries.
	// Empty keeps each record's own offset.
	// Default: "" (record offset)
	Timezone string `koanf:"timezone" validate:"omitempty,timezone"`
}

// RollupConfig configures the scheduled rollup run by `trailmark serve`.
type RollupConfig struct {
	// Enabled turns the rollup service on.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// InputPath is the NDJSON or JSON array file re-read on each run.
	InputPath string `koanf:"input_path"`

	// OutputDir receives daily.<format> and weekly.<format>.
	OutputDir string `koanf:"output_dir"`

	// Format is the export format: json or csv.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json csv"`

	// Schedule is a cron expression (seconds optional) or descriptor
	// such as @every 5m.
	// Default: @every 5m
	Schedule string `koanf:"schedule" validate:"cron"`

	// RunOnStart runs one rollup as soon as the service starts instead of
	// waiting for the first scheduled tick.
	// Default: true
	RunOnStart bool `koanf:"run_on_start"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	// TextfilePath is where the rollup writes the metrics snapshot for the
	// node_exporter textfile collector. Empty disables the export.
	TextfilePath string `koanf:"textfile_path" validate:"omitempty,endswith=.prom"`
}

// SupervisorConfig holds suture supervisor tree settings.
type SupervisorConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64 `koanf:"failure_threshold" validate:"gt=0"`

	// FailureDecay is the rate at which failures decay, in seconds.
	// Default: 30
	FailureDecay float64 `koanf:"failure_decay" validate:"gt=0"`

	// FailureBackoff is how long to wait once the threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration `koanf:"failure_backoff" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown of each service.
	// Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}
	if cache.EvictionTarget(c.CacheSettings()) < 1 {
		return fmt.Errorf("%w: max_entries %d * eviction_target_ratio %v keeps no entries",
			ErrCacheBounds, c.Cache.MaxEntries, c.Cache.EvictionTargetRatio)
	}
	return c.validateRollup()
}

func (c *Config) validateRollup() error {
	if !c.Rollup.Enabled {
		return nil
	}

	var missing []string
	if c.Rollup.InputPath == "" {
		missing = append(missing, "input_path")
	}
	if c.Rollup.OutputDir == "" {
		missing = append(missing, "output_dir")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrRollupIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// LoggingSettings converts the logging section for logging.Init.
func (c *Config) LoggingSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	if c.Logging.Format != "" {
		cfg.Format = c.Logging.Format
	}
	cfg.Caller = c.Logging.Caller
	return cfg
}

// CacheSettings converts the cache section into cache bounds. Name is left
// empty; analytics.NewCaches fills it per cache.
func (c *Config) CacheSettings() cache.Config {
	return cache.Config{
		MaxEntries:          c.Cache.MaxEntries,
		EvictionTargetRatio: c.Cache.EvictionTargetRatio,
		SweepInterval:       c.Cache.SweepInterval,
		DefaultTTL:          c.Cache.TTL,
	}
}

// AnalyticsSettings converts the analytics section, resolving the time zone.
func (c *Config) AnalyticsSettings() (analytics.Config, error) {
	cfg := analytics.Config{
		TopPagesLimit: c.Analytics.TopPagesLimit,
		CohortPeriods: c.Analytics.CohortPeriods,
		CacheTTL:      c.Cache.TTL,
	}
	if c.Analytics.Timezone != "" {
		loc, err := time.LoadLocation(c.Analytics.Timezone)
		if err != nil {
			return analytics.Config{}, fmt.Errorf("analytics timezone %q: %w", c.Analytics.Timezone, err)
		}
		cfg.Location = loc
	}
	return cfg, nil
}
