// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/trailmark/internal/analytics"
	"github.com/tomtom215/trailmark/internal/ingest"
	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/metrics"
	"github.com/tomtom215/trailmark/internal/models"
	"github.com/tomtom215/trailmark/internal/validation"
)

// DefaultRollupSchedule is used when RollupConfig.Schedule is empty.
const DefaultRollupSchedule = "@every 5m"

// ErrInvalidRollupConfig is returned by NewRollupService for unusable settings.
var ErrInvalidRollupConfig = errors.New("invalid rollup configuration")

// Aggregator computes the traffic rollups written by RollupService.
//
// The interface is satisfied by *analytics.Service.
type Aggregator interface {
	ProcessDailyStats(ctx context.Context, pageViews []models.PageView) []models.DailyStats
	ProcessWeeklyStats(ctx context.Context, daily []models.DailyStats) []models.WeeklyStats
	InvalidateCache()
}

// RollupConfig configures a RollupService.
type RollupConfig struct {
	// InputPath is the NDJSON or JSON array events file.
	InputPath string

	// OutputDir receives daily.<ext> and weekly.<ext>. Created if missing.
	OutputDir string

	// Format is the export format.
	// Default: json
	Format analytics.Format

	// Schedule is a cron expression accepted by validation.ScheduleParser.
	// Default: @every 5m
	Schedule string

	// RunOnStart runs one rollup before the first scheduled tick.
	RunOnStart bool

	// TextfilePath, when set, receives a Prometheus metrics snapshot after
	// every run.
	TextfilePath string
}

// RollupResult summarizes one rollup run.
type RollupResult struct {
	RunID       string
	Records     int
	Rejected    int
	Days        int
	Weeks       int
	Files       []string
	Invalidated bool
	Duration    time.Duration
}

// inputState identifies a version of the input file.
type inputState struct {
	modTime time.Time
	size    int64
}

// RollupService periodically re-reads the events file, recomputes daily and
// weekly stats and writes them to the output directory.
//
// It adapts a robfig/cron scheduler to suture's Serve pattern:
//  1. Builds a scheduler with the configured schedule
//  2. Optionally runs once immediately
//  3. Blocks until the context is canceled
//  4. Stops the scheduler and waits for a running rollup to finish
//
// A failed run is logged and counted but does not stop the service; the
// next tick tries again.
type RollupService struct {
	cfg    RollupConfig
	agg    Aggregator
	name   string
	logger zerolog.Logger

	mu        sync.Mutex
	lastInput inputState
	last      RollupResult
	runs      atomic.Int64
}

// NewRollupService creates a rollup service.
//
//	svc, err := services.NewRollupService(services.RollupConfig{
//	    InputPath: "/var/lib/trailmark/events.ndjson",
//	    OutputDir: "/var/lib/trailmark/reports",
//	}, analyticsService)
//	tree.AddRollupService(svc)
func NewRollupService(cfg RollupConfig, agg Aggregator) (*RollupService, error) {
	if agg == nil {
		return nil, fmt.Errorf("%w: aggregator is required", ErrInvalidRollupConfig)
	}
	if cfg.InputPath == "" {
		return nil, fmt.Errorf("%w: input path is required", ErrInvalidRollupConfig)
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", ErrInvalidRollupConfig)
	}

	if cfg.Format == "" {
		cfg.Format = analytics.FormatJSON
	}
	format, err := analytics.ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRollupConfig, err)
	}
	cfg.Format = format

	if cfg.Schedule == "" {
		cfg.Schedule = DefaultRollupSchedule
	}
	if _, err := validation.ScheduleParser.Parse(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %w", ErrInvalidRollupConfig, cfg.Schedule, err)
	}

	return &RollupService{
		cfg:    cfg,
		agg:    agg,
		name:   "rollup",
		logger: logging.WithComponent("rollup"),
	}, nil
}

// Serve implements suture.Service.
func (s *RollupService) Serve(ctx context.Context) error {
	cronLog := newCronLogger(s.logger)
	scheduler := cron.New(
		cron.WithParser(validation.ScheduleParser),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	if _, err := scheduler.AddFunc(s.cfg.Schedule, func() { s.runScheduled(ctx) }); err != nil {
		return fmt.Errorf("rollup schedule %q: %w", s.cfg.Schedule, err)
	}

	s.logger.Info().
		Str("schedule", s.cfg.Schedule).
		Str("input", s.cfg.InputPath).
		Str("output_dir", s.cfg.OutputDir).
		Msg("Rollup service started")

	if s.cfg.RunOnStart {
		s.runScheduled(ctx)
	}

	scheduler.Start()
	<-ctx.Done()

	stopped := scheduler.Stop()
	<-stopped.Done()

	s.logger.Info().Int64("runs", s.runs.Load()).Msg("Rollup service stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *RollupService) String() string {
	return s.name
}

func (s *RollupService) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	// Errors are logged and counted by RunOnce.
	_, _ = s.RunOnce(ctx) //nolint:errcheck // logged in RunOnce
}

// RunOnce performs one rollup immediately. Every run gets its own run ID.
func (s *RollupService) RunOnce(ctx context.Context) (*RollupResult, error) {
	ctx = logging.ContextWithNewRunID(ctx)
	ctx = logging.ContextWithLogger(ctx, s.logger)
	start := time.Now()

	result, err := s.run(ctx)
	s.runs.Add(1)
	metrics.RecordRollup(err)

	if s.cfg.TextfilePath != "" {
		if werr := metrics.WriteTextfile(s.cfg.TextfilePath); werr != nil {
			logging.CtxErr(ctx, werr).Msg("Failed to write metrics textfile")
		}
	}

	if err != nil {
		logging.CtxErr(ctx, err).Str("input", s.cfg.InputPath).Msg("Rollup failed")
		return nil, err
	}

	result.RunID = logging.RunIDFromContext(ctx)
	result.Duration = time.Since(start)

	s.mu.Lock()
	s.last = *result
	s.mu.Unlock()

	logging.CtxInfo(ctx).
		Int("records", result.Records).
		Int("rejected", result.Rejected).
		Int("days", result.Days).
		Int("weeks", result.Weeks).
		Bool("invalidated", result.Invalidated).
		Dur("duration", result.Duration).
		Msg("Rollup completed")
	return result, nil
}

func (s *RollupService) run(ctx context.Context) (*RollupResult, error) {
	invalidated, err := s.refreshInput()
	if err != nil {
		return nil, err
	}

	batch, err := ingest.ReadFile(ctx, s.cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	daily := s.agg.ProcessDailyStats(ctx, batch.PageViews)
	weekly := s.agg.ProcessWeeklyStats(ctx, daily)

	if err := os.MkdirAll(s.cfg.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	dailyPath, err := writeExport(s.cfg.OutputDir, "daily", s.cfg.Format, daily)
	if err != nil {
		return nil, err
	}
	weeklyPath, err := writeExport(s.cfg.OutputDir, "weekly", s.cfg.Format, weekly)
	if err != nil {
		return nil, err
	}

	return &RollupResult{
		Records:     batch.Stats.Records,
		Rejected:    len(batch.Stats.Rejected),
		Days:        len(daily),
		Weeks:       len(weekly),
		Files:       []string{dailyPath, weeklyPath},
		Invalidated: invalidated,
	}, nil
}

// refreshInput drops cached results when the input file changed since the
// previous run. It reports whether the caches were invalidated.
func (s *RollupService) refreshInput() (bool, error) {
	info, err := os.Stat(s.cfg.InputPath)
	if err != nil {
		return false, fmt.Errorf("stat events file: %w", err)
	}
	current := inputState{modTime: info.ModTime(), size: info.Size()}

	s.mu.Lock()
	changed := current != s.lastInput
	s.lastInput = current
	s.mu.Unlock()

	if changed {
		s.agg.InvalidateCache()
	}
	return changed, nil
}

// Last returns the result of the most recent successful run.
func (s *RollupService) Last() RollupResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Runs returns how many rollups have been attempted.
func (s *RollupService) Runs() int64 {
	return s.runs.Load()
}

// writeExport encodes data and replaces dir/name.<ext> atomically.
func writeExport[T analytics.Exportable](dir, name string, format analytics.Format, data []T) (string, error) {
	out, err := analytics.ExportAggregatedData(format, data)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", name, err)
	}
	if out != "" {
		out += "\n"
	}

	path := filepath.Join(dir, name+"."+format.Extension())
	tmp, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // reports are world-readable
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}
