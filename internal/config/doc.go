// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package config provides layered configuration for Trailmark.

# Configuration Sources

Load builds a Config from, lowest priority first:

 1. Built-in defaults
 2. A YAML file: $CONFIG_PATH, else the first of trailmark.yaml, trailmark.yml,
    /etc/trailmark/config.yaml, /etc/trailmark/config.yml that exists
 3. Environment variables, after a .env file (or $TRAILMARK_ENV_FILE) has been
    merged into the environment

The result is validated before it is returned.

# Example File

	logging:
	  level: info
	  format: json
	cache:
	  max_entries: 500
	  eviction_target_ratio: 0.9
	  sweep_interval: 1m
	  ttl: 5m
	analytics:
	  top_pages_limit: 10
	  cohort_periods: 12
	  timezone: Europe/Berlin
	rollup:
	  enabled: true
	  input_path: /var/lib/trailmark/events.ndjson
	  output_dir: /var/lib/trailmark/reports
	  format: csv
	  schedule: "@every 5m"
	metrics:
	  textfile_path: /var/lib/node_exporter/trailmark.prom

# Environment Variables

Logging:
  - TRAILMARK_LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - TRAILMARK_LOG_FORMAT: json, console (default: json)
  - TRAILMARK_LOG_CALLER: include caller file:line (default: false)

Cache:
  - TRAILMARK_CACHE_MAX_ENTRIES (default: 500)
  - TRAILMARK_CACHE_EVICTION_TARGET_RATIO (default: 0.9)
  - TRAILMARK_CACHE_SWEEP_INTERVAL (default: 1m)
  - TRAILMARK_CACHE_TTL (default: 5m)

Analytics:
  - TRAILMARK_TOP_PAGES_LIMIT (default: 10)
  - TRAILMARK_COHORT_PERIODS (default: 12)
  - TRAILMARK_TIMEZONE: IANA zone name (default: record offset)

Rollup:
  - TRAILMARK_ROLLUP_ENABLED (default: false)
  - TRAILMARK_ROLLUP_INPUT: events file
  - TRAILMARK_ROLLUP_OUTPUT_DIR: report directory
  - TRAILMARK_ROLLUP_FORMAT: json, csv (default: json)
  - TRAILMARK_ROLLUP_SCHEDULE: cron expression (default: @every 5m)
  - TRAILMARK_ROLLUP_RUN_ON_START: run once at startup (default: true)

Metrics:
  - TRAILMARK_METRICS_TEXTFILE: .prom output path (default: disabled)

Supervisor:
  - TRAILMARK_SUPERVISOR_FAILURE_THRESHOLD (default: 5)
  - TRAILMARK_SUPERVISOR_FAILURE_DECAY (default: 30)
  - TRAILMARK_SUPERVISOR_FAILURE_BACKOFF (default: 15s)
  - TRAILMARK_SUPERVISOR_SHUTDOWN_TIMEOUT (default: 10s)

Other environment variables are ignored.
*/
package config
