// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package services provides suture.Service implementations for `trailmark serve`.

# RollupService

RollupService wraps a robfig/cron scheduler. On every tick it:

 1. Assigns a fresh run ID to the context
 2. Invalidates the aggregation caches if the input file changed
 3. Reads the events file with the ingest package
 4. Computes daily and weekly stats
 5. Replaces daily.<ext> and weekly.<ext> in the output directory
 6. Records the outcome and, if configured, writes a Prometheus textfile

Schedules use validation.ScheduleParser, so both five-field and six-field
(seconds) expressions and descriptors such as @every 5m or @hourly work.
Overlapping ticks are skipped rather than queued.

	svc, err := services.NewRollupService(services.RollupConfig{
	    InputPath:  cfg.Rollup.InputPath,
	    OutputDir:  cfg.Rollup.OutputDir,
	    Format:     analytics.Format(cfg.Rollup.Format),
	    Schedule:   cfg.Rollup.Schedule,
	    RunOnStart: cfg.Rollup.RunOnStart,
	}, analyticsService)
	if err != nil {
	    return err
	}
	tree.AddRollupService(svc)

# Error Handling

A failed run does not make Serve return; suture restarts are reserved for
scheduler setup failures. Failures are logged with the run ID and counted in
trailmark_rollup_runs_total{status="error"}.
*/
package services
