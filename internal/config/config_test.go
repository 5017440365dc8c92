// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package config

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/trailmark/internal/validation"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
		wantErr   error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty format allowed", mutate: func(c *Config) { c.Logging.Format = "" }},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantField: "level"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantField: "format"},
		{name: "zero max entries", mutate: func(c *Config) { c.Cache.MaxEntries = 0 }, wantField: "max_entries"},
		{name: "ratio zero", mutate: func(c *Config) { c.Cache.EvictionTargetRatio = 0 }, wantField: "eviction_target_ratio"},
		{name: "ratio above one", mutate: func(c *Config) { c.Cache.EvictionTargetRatio = 1.1 }, wantField: "eviction_target_ratio"},
		{name: "ratio one", mutate: func(c *Config) { c.Cache.EvictionTargetRatio = 1 }},
		{
			name:    "single entry below ratio one",
			mutate:  func(c *Config) { c.Cache.MaxEntries = 1 },
			wantErr: ErrCacheBounds,
		},
		{
			name: "single entry with ratio one",
			mutate: func(c *Config) {
				c.Cache.MaxEntries = 1
				c.Cache.EvictionTargetRatio = 1
			},
		},
		{name: "zero sweep", mutate: func(c *Config) { c.Cache.SweepInterval = 0 }, wantField: "sweep_interval"},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = -time.Second }, wantField: "ttl"},
		{name: "zero top pages", mutate: func(c *Config) { c.Analytics.TopPagesLimit = 0 }, wantField: "top_pages_limit"},
		{name: "zero cohort periods", mutate: func(c *Config) { c.Analytics.CohortPeriods = 0 }, wantField: "cohort_periods"},
		{name: "valid timezone", mutate: func(c *Config) { c.Analytics.Timezone = "Asia/Tokyo" }},
		{name: "bad timezone", mutate: func(c *Config) { c.Analytics.Timezone = "Mars/Olympus" }, wantField: "timezone"},
		{name: "bad rollup format", mutate: func(c *Config) { c.Rollup.Format = "xml" }, wantField: "format"},
		{name: "bad schedule", mutate: func(c *Config) { c.Rollup.Schedule = "every now and then" }, wantField: "schedule"},
		{name: "empty schedule", mutate: func(c *Config) { c.Rollup.Schedule = "" }, wantField: "schedule"},
		{name: "seconds schedule", mutate: func(c *Config) { c.Rollup.Schedule = "30 */5 * * * *" }},
		{name: "textfile suffix", mutate: func(c *Config) { c.Metrics.TextfilePath = "/tmp/trailmark.txt" }, wantField: "textfile_path"},
		{name: "textfile ok", mutate: func(c *Config) { c.Metrics.TextfilePath = "/tmp/trailmark.prom" }},
		{name: "zero backoff", mutate: func(c *Config) { c.Supervisor.FailureBackoff = 0 }, wantField: "failure_backoff"},
		{
			name:    "rollup without paths",
			mutate:  func(c *Config) { c.Rollup.Enabled = true },
			wantErr: ErrRollupIncomplete,
		},
		{
			name: "rollup complete",
			mutate: func(c *Config) {
				c.Rollup.Enabled = true
				c.Rollup.InputPath = "events.ndjson"
				c.Rollup.OutputDir = "out"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			switch {
			case tt.wantField != "":
				var verr *validation.StructValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Validate() error = %v, want StructValidationError", err)
				}
				if !slices.Contains(verr.Fields(), tt.wantField) {
					t.Errorf("failed fields = %v, want %q", verr.Fields(), tt.wantField)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestValidate_RollupMissingList(t *testing.T) {
	cfg := defaultConfig()
	cfg.Rollup.Enabled = true
	cfg.Rollup.OutputDir = "out"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	want := "rollup is enabled but not fully configured: missing input_path"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestLoggingSettings(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging = LoggingConfig{Level: "warn", Format: "", Caller: true}

	got := cfg.LoggingSettings()
	if got.Level != "warn" {
		t.Errorf("Level = %q, want warn", got.Level)
	}
	if got.Format != "json" {
		t.Errorf("Format = %q, want json fallback", got.Format)
	}
	if !got.Caller {
		t.Error("Caller should carry over")
	}
}

func TestCacheSettings(t *testing.T) {
	cfg := defaultConfig()
	got := cfg.CacheSettings()

	if got.MaxEntries != 500 || got.EvictionTargetRatio != 0.9 {
		t.Errorf("bounds = %d/%v, want 500/0.9", got.MaxEntries, got.EvictionTargetRatio)
	}
	if got.SweepInterval != time.Minute || got.DefaultTTL != 5*time.Minute {
		t.Errorf("timing = %v/%v, want 1m/5m", got.SweepInterval, got.DefaultTTL)
	}
	if got.Name != "" {
		t.Errorf("Name = %q, want empty", got.Name)
	}
}

func TestAnalyticsSettings(t *testing.T) {
	t.Run("no timezone", func(t *testing.T) {
		cfg := defaultConfig()
		got, err := cfg.AnalyticsSettings()
		if err != nil {
			t.Fatalf("AnalyticsSettings() error = %v", err)
		}
		if got.Location != nil {
			t.Errorf("Location = %v, want nil", got.Location)
		}
		if got.TopPagesLimit != 10 || got.CohortPeriods != 12 || got.CacheTTL != 5*time.Minute {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("timezone", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Analytics.Timezone = "UTC"
		got, err := cfg.AnalyticsSettings()
		if err != nil {
			t.Fatalf("AnalyticsSettings() error = %v", err)
		}
		if got.Location == nil || got.Location.String() != "UTC" {
			t.Errorf("Location = %v, want UTC", got.Location)
		}
	})

	t.Run("unknown timezone", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Analytics.Timezone = "Nowhere/Special"
		if _, err := cfg.AnalyticsSettings(); err == nil {
			t.Error("expected error for unknown timezone")
		}
	})
}
