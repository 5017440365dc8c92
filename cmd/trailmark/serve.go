// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/trailmark/internal/analytics"
	"github.com/tomtom215/trailmark/internal/config"
	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/supervisor"
	"github.com/tomtom215/trailmark/internal/supervisor/services"
)

// app holds everything `trailmark serve` runs.
type app struct {
	tree      *supervisor.SupervisorTree
	analytics *analytics.Service
	daily     *analytics.DailyCache
	weekly    *analytics.WeeklyCache
	rollup    *services.RollupService
}

func runServe(ctx context.Context, cfg *config.Config, args []string, _ io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	return a.run(ctx)
}

// buildApp wires caches, the aggregation service and the rollup into a
// supervisor tree without starting anything.
func buildApp(cfg *config.Config) (*app, error) {
	daily, weekly, err := analytics.NewCaches(cfg.CacheSettings())
	if err != nil {
		return nil, fmt.Errorf("create caches: %w", err)
	}

	acfg, err := cfg.AnalyticsSettings()
	if err != nil {
		return nil, err
	}
	svc, err := analytics.New(acfg, analytics.WithDailyCache(daily), analytics.WithWeeklyCache(weekly))
	if err != nil {
		return nil, fmt.Errorf("create analytics service: %w", err)
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddCacheService(daily)
	tree.AddCacheService(weekly)

	a := &app{tree: tree, analytics: svc, daily: daily, weekly: weekly}

	if cfg.Rollup.Enabled {
		a.rollup, err = services.NewRollupService(services.RollupConfig{
			InputPath:    cfg.Rollup.InputPath,
			OutputDir:    cfg.Rollup.OutputDir,
			Format:       analytics.Format(cfg.Rollup.Format),
			Schedule:     cfg.Rollup.Schedule,
			RunOnStart:   cfg.Rollup.RunOnStart,
			TextfilePath: cfg.Metrics.TextfilePath,
		}, svc)
		if err != nil {
			return nil, err
		}
		tree.AddRollupService(a.rollup)
		logging.Info().
			Str("schedule", cfg.Rollup.Schedule).
			Str("input", cfg.Rollup.InputPath).
			Msg("Rollup service added")
	} else {
		logging.Info().Msg("Rollup disabled; serving cache sweepers only")
	}

	return a, nil
}

// run serves the tree until ctx is canceled and reports services that did
// not stop in time.
func (a *app) run(ctx context.Context) error {
	logging.Info().Msg("Starting supervisor tree")
	errCh := a.tree.ServeBackground(ctx)

	serveErr := <-errCh
	if errors.Is(serveErr, context.Canceled) || errors.Is(serveErr, context.DeadlineExceeded) {
		serveErr = nil
	}
	if serveErr != nil {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := a.tree.UnstoppedServiceReport() //nolint:errcheck // best effort after shutdown
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	a.daily.Clear()
	a.weekly.Clear()

	logging.Info().Msg("Trailmark stopped")
	return serveErr
}
