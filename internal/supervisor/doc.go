// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package supervisor provides process supervision for `trailmark serve` using suture v4.

# Overview

Services are organized into two layers for failure isolation:

	RootSupervisor ("trailmark")
	├── CacheSupervisor ("cache-layer")
	│   ├── daily_stats sweeper  (*cache.Cache)
	│   └── weekly_stats sweeper (*cache.Cache)
	└── RollupSupervisor ("rollup-layer")
	    └── RollupService (if rollup.enabled)

A rollup that keeps crashing backs off inside its own layer; the sweepers
keep expiring cached results.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    FailureThreshold: cfg.Supervisor.FailureThreshold,
	    FailureDecay:     cfg.Supervisor.FailureDecay,
	    FailureBackoff:   cfg.Supervisor.FailureBackoff,
	    ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}

	tree.AddCacheService(dailyCache)
	tree.AddCacheService(weeklyCache)
	tree.AddRollupService(rollupService)

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Configuration

Default values match suture's defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Logging

Supervisor events (restarts, backoff, stop timeouts) are reported through
sutureslog. Pass logging.NewSlogLogger() so they land in the same zerolog
stream as everything else.

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return error: service crashed, will be restarted
  - Context canceled: shutdown requested, return ctx.Err() promptly

# Debugging Shutdown Issues

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("Service did not stop")
	}
*/
package supervisor
