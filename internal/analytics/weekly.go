// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package analytics

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/tomtom215/trailmark/internal/cache"
	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/metrics"
	"github.com/tomtom215/trailmark/internal/models"
	"github.com/tomtom215/trailmark/internal/timeagg"
)

// ProcessWeeklyStats rolls daily stats up into Sunday-aligned weeks.
//
// Counts are summed across the week's days. Bounce rate and session duration
// are unweighted means of the daily values. DailyBreakdown is sorted by date
// and weeks are returned in ascending order. Days whose Date is not a valid
// day key are skipped and logged.
func (s *Service) ProcessWeeklyStats(ctx context.Context, daily []models.DailyStats) []models.WeeklyStats {
	if len(daily) == 0 {
		return []models.WeeklyStats{}
	}
	start := time.Now()

	var key string
	if s.weekly != nil {
		key = cache.GenerateKey(WeeklyCacheName, daily)
		if cached, ok := s.weekly.Get(key); ok {
			logging.Ctx(ctx).Debug().Int("weeks", len(cached)).Msg("Weekly stats served from cache")
			return cloneWeekly(cached)
		}
	}

	weeks := make(map[string][]models.DailyStats)
	var skipped []error
	for _, d := range daily {
		day, err := timeagg.ParseDayKey(d.Date, s.cfg.Location)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		weekStarting := timeagg.DayKey(timeagg.WeekStart(day))
		weeks[weekStarting] = append(weeks[weekStarting], d)
	}
	if len(skipped) > 0 {
		logging.Ctx(ctx).Warn().
			Int("skipped", len(skipped)).
			Err(errors.Join(skipped...)).
			Msg("Daily stats with invalid dates skipped")
	}

	result := make([]models.WeeklyStats, 0, len(weeks))
	for _, weekStarting := range timeagg.SortedKeys(weeks) {
		result = append(result, weeklyStats(weekStarting, weeks[weekStarting]))
	}

	if s.weekly != nil {
		s.weekly.Set(key, result, s.cfg.CacheTTL)
	}

	metrics.RecordAggregation("weekly", len(daily), time.Since(start))
	logging.Ctx(ctx).Debug().
		Int("days", len(daily)).
		Int("weeks", len(result)).
		Msg("Weekly stats computed")

	return cloneWeekly(result)
}

// weeklyStats sums and averages the days of one week.
func weeklyStats(weekStarting string, days []models.DailyStats) models.WeeklyStats {
	breakdown := cloneDaily(days)
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Date < breakdown[j].Date
	})

	w := models.WeeklyStats{
		WeekStarting:   weekStarting,
		DailyBreakdown: breakdown,
	}

	var bounceSum, durationSum float64
	for i := range breakdown {
		d := &breakdown[i]
		w.TotalPageViews += d.PageViews
		w.TotalUniqueVisitors += d.UniqueVisitors
		w.TotalSessions += d.Sessions
		bounceSum += d.BounceRate
		durationSum += d.AvgSessionDurationMs
	}

	if n := len(breakdown); n > 0 {
		w.AvgBounceRate = bounceSum / float64(n)
		w.AvgSessionDurationMs = durationSum / float64(n)
	}
	return w
}

// RollingDailyPageViews returns the trailing moving average of daily page
// views, in date order, over window days.
func RollingDailyPageViews(daily []models.DailyStats, window int) ([]float64, error) {
	ordered := slices.Clone(daily)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date < ordered[j].Date
	})

	series := make([]float64, len(ordered))
	for i := range ordered {
		series[i] = float64(ordered[i].PageViews)
	}
	return timeagg.RollingAverage(series, window)
}
