// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/metrics"
	"github.com/tomtom215/trailmark/internal/models"
	"github.com/tomtom215/trailmark/internal/timeagg"
)

// Timeframe is the cohort granularity.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// ParseTimeframe converts a string (case-insensitive) to a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(s)))
	switch tf {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly:
		return tf, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
}

// period maps a timeframe to its bucket period.
func (tf Timeframe) period() (timeagg.Period, error) {
	switch tf {
	case TimeframeDaily:
		return timeagg.PeriodDay, nil
	case TimeframeWeekly:
		return timeagg.PeriodWeek, nil
	case TimeframeMonthly:
		return timeagg.PeriodMonth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, tf)
}

// bucketStart returns the start of the bucket containing t.
func (tf Timeframe) bucketStart(t time.Time) time.Time {
	switch tf {
	case TimeframeWeekly:
		return timeagg.WeekStart(t)
	case TimeframeMonthly:
		return timeagg.MonthStart(t)
	default:
		return timeagg.DayStart(t)
	}
}

// offset returns how many whole timeframe units separate the bucket holding t
// from anchor, which must itself be a bucket start. Calendar arithmetic keeps
// the result exact across DST changes and uneven month lengths.
func (tf Timeframe) offset(anchor, t time.Time) int {
	t = t.In(anchor.Location())
	switch tf {
	case TimeframeMonthly:
		ay, am, _ := anchor.Date()
		ty, tm, _ := t.Date()
		return (ty-ay)*12 + int(tm-am)
	case TimeframeWeekly:
		return floorDiv(civilDays(anchor, timeagg.WeekStart(t)), 7)
	default:
		return civilDays(anchor, t)
	}
}

// civilDays counts calendar days from a's date to b's date.
func civilDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

type cohort struct {
	key      string
	start    time.Time
	visitors []string
}

// CalculateCohortAnalysis groups visitors (user ID, else session ID) by the
// bucket of their first visit and reports, for periods 0 through
// CohortPeriods-1, the percentage of each cohort active in the window
// [start + p units, start + p+1 units). Cohorts are ordered by key.
func (s *Service) CalculateCohortAnalysis(ctx context.Context, pageViews []models.PageView, timeframe Timeframe) ([]models.CohortResult, error) {
	period, err := timeframe.period()
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Cohort analysis rejected")
		return nil, err
	}
	start := time.Now()

	firstVisit := make(map[string]time.Time)
	visits := make(map[string][]time.Time)
	for i := range pageViews {
		pv := &pageViews[i]
		visitor := pv.VisitorID()
		ts := s.localTime(pv.Timestamp)

		visits[visitor] = append(visits[visitor], ts)
		if first, ok := firstVisit[visitor]; !ok || ts.Before(first) {
			firstVisit[visitor] = ts
		}
	}

	cohorts := make(map[string]*cohort)
	for visitor, first := range firstVisit {
		// period already validated
		key, _ := timeagg.BucketKey(first, period)
		c, ok := cohorts[key]
		if !ok {
			c = &cohort{key: key, start: timeframe.bucketStart(first)}
			cohorts[key] = c
		}
		c.visitors = append(c.visitors, visitor)
	}

	results := make([]models.CohortResult, 0, len(cohorts))
	for _, c := range cohorts {
		active := make([]int, s.cfg.CohortPeriods)
		seen := make([]bool, s.cfg.CohortPeriods)

		for _, visitor := range c.visitors {
			clear(seen)
			for _, ts := range visits[visitor] {
				p := timeframe.offset(c.start, ts)
				if p >= 0 && p < len(seen) && !seen[p] {
					seen[p] = true
					active[p]++
				}
			}
		}

		retention := make([]models.RetentionPeriod, s.cfg.CohortPeriods)
		for p := range retention {
			retention[p] = models.RetentionPeriod{
				Period:     p,
				Percentage: percent(active[p], len(c.visitors)),
			}
		}

		results = append(results, models.CohortResult{
			Cohort:      c.key,
			CohortStart: c.start,
			Users:       len(c.visitors),
			Retention:   retention,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Cohort < results[j].Cohort
	})

	metrics.RecordAggregation("cohort", len(pageViews), time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("timeframe", string(timeframe)).
		Int("visitors", len(firstVisit)).
		Int("cohorts", len(results)).
		Msg("Cohort analysis computed")

	return results, nil
}
