// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the aggregation engine:
// - Aggregation pipeline latency and volume
// - Bounded cache efficiency and eviction pressure
// - Ingest rejections at the validation boundary
// - Scheduled rollup runs

var (
	// Aggregation Metrics
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trailmark_aggregation_duration_seconds",
			Help:    "Duration of aggregation operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"}, // "daily", "weekly", "funnel", "cohort", "export"
	)

	RecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmark_records_processed_total",
			Help: "Total number of input records consumed by aggregation operations",
		},
		[]string{"operation"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmark_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"}, // "daily_stats", "weekly_stats"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmark_cache_misses_total",
			Help: "Total number of cache misses (absent or expired)",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmark_cache_evictions_total",
			Help: "Total number of cache entries removed before being read again",
		},
		[]string{"cache", "reason"}, // "expired", "size", "invalidated"
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trailmark_cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	CacheSweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trailmark_cache_sweep_duration_seconds",
			Help:    "Duration of background cache sweeps in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
		[]string{"cache"},
	)

	// Ingest Metrics
	IngestAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmark_ingest_accepted_total",
			Help: "Total number of records accepted at the ingest boundary",
		},
		[]string{"kind"}, // "pageview", "interaction"
	)

	IngestRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmark_ingest_rejected_total",
			Help: "Total number of records rejected at the ingest boundary",
		},
		[]string{"reason"}, // "decode", "validation", "unknown_kind"
	)

	// Rollup Metrics
	RollupRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmark_rollup_runs_total",
			Help: "Total number of scheduled rollup runs",
		},
		[]string{"status"}, // "success", "error"
	)

	RollupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trailmark_rollup_last_success_timestamp",
			Help: "Unix timestamp of the last successful rollup run",
		},
	)
)

// RecordAggregation records the latency and input volume of an aggregation operation.
func RecordAggregation(operation string, records int, duration time.Duration) {
	AggregationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	RecordsProcessed.WithLabelValues(operation).Add(float64(records))
}

// RecordCacheHit records a cache hit
func RecordCacheHit(cache string) {
	CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheEvictions adds n evictions for the given reason.
func RecordCacheEvictions(cache, reason string, n int) {
	if n <= 0 {
		return
	}
	CacheEvictions.WithLabelValues(cache, reason).Add(float64(n))
}

// UpdateCacheSize sets the current entry count of a cache.
func UpdateCacheSize(cache string, entries int) {
	CacheSize.WithLabelValues(cache).Set(float64(entries))
}

// RecordCacheSweep records how long a background sweep took.
func RecordCacheSweep(cache string, duration time.Duration) {
	CacheSweepDuration.WithLabelValues(cache).Observe(duration.Seconds())
}

// RecordIngestAccepted counts an accepted record of the given kind.
func RecordIngestAccepted(kind string) {
	IngestAccepted.WithLabelValues(kind).Inc()
}

// RecordIngestRejected counts a rejected record.
func RecordIngestRejected(reason string) {
	IngestRejected.WithLabelValues(reason).Inc()
}

// RecordRollup records the outcome of a scheduled rollup run.
func RecordRollup(err error) {
	if err != nil {
		RollupRuns.WithLabelValues("error").Inc()
		return
	}
	RollupRuns.WithLabelValues("success").Inc()
	RollupLastSuccess.Set(float64(time.Now().Unix()))
}
