// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"trailmark.yaml",
	"trailmark.yml",
	"/etc/trailmark/config.yaml",
	"/etc/trailmark/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvFileEnvVar overrides the dotenv file loaded before the environment layer.
const EnvFileEnvVar = "TRAILMARK_ENV_FILE"

// DefaultEnvFile is the dotenv file loaded when present.
const DefaultEnvFile = ".env"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Cache: CacheConfig{
			MaxEntries:          500,
			EvictionTargetRatio: 0.9,
			SweepInterval:       time.Minute,
			TTL:                 5 * time.Minute,
		},
		Analytics: AnalyticsConfig{
			TopPagesLimit: 10,
			CohortPeriods: 12,
			Timezone:      "",
		},
		Rollup: RollupConfig{
			Enabled:    false,
			InputPath:  "",
			OutputDir:  "",
			Format:     "json",
			Schedule:   "@every 5m",
			RunOnStart: true,
		},
		Metrics: MetricsConfig{
			TextfilePath: "",
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources.
// Priority (lowest to highest):
//  1. Struct defaults
//  2. Config file (optional, YAML)
//  3. Environment variables, including those from an optional .env file
func LoadWithKoanf() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// TRAILMARK_CACHE_TTL -> cache.ttl
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads a dotenv file into the process environment. Variables
// already set are not overwritten. A missing default file is not an error;
// a missing file named by TRAILMARK_ENV_FILE is.
func loadEnvFile() error {
	path := os.Getenv(EnvFileEnvVar)
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	"trailmark_log_level":  "logging.level",
	"trailmark_log_format": "logging.format",
	"trailmark_log_caller": "logging.caller",

	"trailmark_cache_max_entries":           "cache.max_entries",
	"trailmark_cache_eviction_target_ratio": "cache.eviction_target_ratio",
	"trailmark_cache_sweep_interval":        "cache.sweep_interval",
	"trailmark_cache_ttl":                   "cache.ttl",

	"trailmark_top_pages_limit": "analytics.top_pages_limit",
	"trailmark_cohort_periods":  "analytics.cohort_periods",
	"trailmark_timezone":        "analytics.timezone",

	"trailmark_rollup_enabled":      "rollup.enabled",
	"trailmark_rollup_input":        "rollup.input_path",
	"trailmark_rollup_output_dir":   "rollup.output_dir",
	"trailmark_rollup_format":       "rollup.format",
	"trailmark_rollup_schedule":     "rollup.schedule",
	"trailmark_rollup_run_on_start": "rollup.run_on_start",

	"trailmark_metrics_textfile": "metrics.textfile_path",

	"trailmark_supervisor_failure_threshold": "supervisor.failure_threshold",
	"trailmark_supervisor_failure_decay":     "supervisor.failure_decay",
	"trailmark_supervisor_failure_backoff":   "supervisor.failure_backoff",
	"trailmark_supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are ignored.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
