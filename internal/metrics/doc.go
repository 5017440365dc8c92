// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package metrics provides Prometheus instrumentation for the aggregation engine.

Collectors are registered on the default Prometheus registry via promauto. The
engine does not serve HTTP; the serve command writes the registry to a textfile
that node_exporter's textfile collector picks up:

	metrics.WriteTextfile("/var/lib/node_exporter/trailmark.prom")

# Available Metrics

Aggregation:
  - trailmark_aggregation_duration_seconds{operation}
  - trailmark_records_processed_total{operation}

Cache:
  - trailmark_cache_hits_total{cache}
  - trailmark_cache_misses_total{cache}
  - trailmark_cache_evictions_total{cache,reason}  reason: expired, size, invalidated
  - trailmark_cache_entries{cache}
  - trailmark_cache_sweep_duration_seconds{cache}

Ingest:
  - trailmark_ingest_accepted_total{kind}
  - trailmark_ingest_rejected_total{reason}

Rollup:
  - trailmark_rollup_runs_total{status}
  - trailmark_rollup_last_success_timestamp
*/
package metrics
