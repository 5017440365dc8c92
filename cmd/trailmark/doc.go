// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package main is the entry point for the trailmark command.

Trailmark turns raw page view and interaction events into daily and weekly
traffic rollups, funnels and retention cohorts. Aggregations are memoized in
bounded, TTL-aware caches.

# Commands

	trailmark report -input events.ndjson [-kind daily|weekly|funnel|cohort]
	                 [-format json|csv] [-steps a,b,c] [-timeframe weekly]
	                 [-output file]
	trailmark serve

report reads an events file once, prints or saves the requested report and
exits. Funnel and cohort reports are json only.

serve runs a Suture v4 supervisor tree until SIGINT or SIGTERM:

	RootSupervisor ("trailmark")
	├── CacheSupervisor ("cache-layer")
	│   ├── daily_stats cache sweeper
	│   └── weekly_stats cache sweeper
	└── RollupSupervisor ("rollup-layer")
	    └── Rollup service (cron schedule, when rollup.enabled)

The rollup re-reads its input file on every tick, drops cached results when
the file changed and writes daily and weekly exports atomically into the
output directory.

# Configuration

Both commands load configuration the same way (highest priority wins):

	Priority: Environment variables > Config file > .env file > Defaults

See package internal/config for the YAML layout and the full list of
TRAILMARK_* environment variables. Commonly used:

	TRAILMARK_LOG_LEVEL=info          # trace, debug, info, warn, error
	TRAILMARK_LOG_FORMAT=json         # json or console
	TRAILMARK_ROLLUP_ENABLED=true
	TRAILMARK_ROLLUP_INPUT=/var/lib/trailmark/events.ndjson
	TRAILMARK_ROLLUP_OUTPUT_DIR=/var/lib/trailmark/rollups
	TRAILMARK_ROLLUP_SCHEDULE=@every 5m
	TRAILMARK_METRICS_TEXTFILE=/var/lib/node_exporter/trailmark.prom

# Exit Codes

	0  success, or -h
	1  runtime failure (unreadable input, invalid configuration)
	2  command line usage error
*/
package main
