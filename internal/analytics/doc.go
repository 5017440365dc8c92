// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package analytics turns validated page views and interactions into traffic
reports.

# Reports

  - ProcessDailyStats: per-day page views, unique visitors, sessions, bounce
    rate, average session duration and top pages
  - ProcessWeeklyStats: Sunday-aligned weekly rollups of daily stats
  - CalculateFunnel: per-step session counts and conversion rates
  - CalculateCohortAnalysis: first-visit cohorts with per-period retention
  - ExportAggregatedData: JSON or CSV serialization of daily/weekly stats

# Construction

The Service is built once at startup and passed to its callers. Daily and
weekly results can be memoized by injecting caches:

	daily, weekly, err := analytics.NewCaches(cache.Config{MaxEntries: 500})
	if err != nil {
	    return err
	}
	svc, err := analytics.New(analytics.DefaultConfig(),
	    analytics.WithDailyCache(daily),
	    analytics.WithWeeklyCache(weekly),
	)

Cache keys hash the full input, so identical inputs hit the cache and any new
record produces a new key. InvalidateCache drops everything after a reload.

# Numerical Safety

Every ratio is guarded: empty input, days without sessions and empty cohorts
produce zeros, never NaN or Inf.

# Funnel Semantics

A session reaches a funnel step when it interacted with the step's element at
any point. Step order within the session is not enforced.
*/
package analytics
