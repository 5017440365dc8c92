// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/trailmark/internal/cache"
	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/metrics"
	"github.com/tomtom215/trailmark/internal/models"
	"github.com/tomtom215/trailmark/internal/timeagg"
)

// dailyKeyParams is everything a daily result depends on.
type dailyKeyParams struct {
	Location  string            `json:"location"`
	TopPages  int               `json:"top_pages"`
	PageViews []models.PageView `json:"page_views"`
}

// ProcessDailyStats rolls page views up into one DailyStats per calendar day.
//
// Per day: page views, unique visitors (user ID, else session ID), sessions,
// bounce rate (share of sessions with exactly one view), average session
// duration (summed durations of sessions that recorded any) and the top pages
// by view count, ties kept in first-seen order. Days are returned in
// ascending order. Empty input yields an empty result.
func (s *Service) ProcessDailyStats(ctx context.Context, pageViews []models.PageView) []models.DailyStats {
	if len(pageViews) == 0 {
		return []models.DailyStats{}
	}
	start := time.Now()

	var key string
	if s.daily != nil {
		key = cache.GenerateKey(DailyCacheName, dailyKeyParams{
			Location:  s.locationName(),
			TopPages:  s.cfg.TopPagesLimit,
			PageViews: pageViews,
		})
		if cached, ok := s.daily.Get(key); ok {
			logging.Ctx(ctx).Debug().Int("days", len(cached)).Msg("Daily stats served from cache")
			return cloneDaily(cached)
		}
	}

	groups, _ := timeagg.GroupByPeriod(pageViews, s.pageViewTime, timeagg.PeriodDay) //nolint:errcheck // PeriodDay is valid
	days := timeagg.SortedKeys(groups)

	result := make([]models.DailyStats, 0, len(days))
	for _, day := range days {
		result = append(result, dailyStats(day, groups[day], s.cfg.TopPagesLimit))
	}

	if s.daily != nil {
		s.daily.Set(key, result, s.cfg.CacheTTL)
	}

	metrics.RecordAggregation("daily", len(pageViews), time.Since(start))
	logging.Ctx(ctx).Debug().
		Int("page_views", len(pageViews)).
		Int("days", len(result)).
		Dur("duration", time.Since(start)).
		Msg("Daily stats computed")

	return cloneDaily(result)
}

func (s *Service) pageViewTime(pv models.PageView) time.Time {
	return s.localTime(pv.Timestamp)
}

// dailyStats computes the statistics of one day bucket.
func dailyStats(date string, views []models.PageView, topN int) models.DailyStats {
	visitors := make(map[string]struct{})
	sessionViews := make(map[string]int)
	sessionDuration := make(map[string]int64)

	for i := range views {
		pv := &views[i]
		visitors[pv.VisitorID()] = struct{}{}
		sessionViews[pv.SessionID]++
		if pv.DurationMs != nil {
			sessionDuration[pv.SessionID] += *pv.DurationMs
		}
	}

	bounced := 0
	for _, n := range sessionViews {
		if n == 1 {
			bounced++
		}
	}

	var avgDuration float64
	if len(sessionDuration) > 0 {
		var total int64
		for _, d := range sessionDuration {
			total += d
		}
		avgDuration = float64(total) / float64(len(sessionDuration))
	}

	return models.DailyStats{
		Date:                 date,
		PageViews:            len(views),
		UniqueVisitors:       len(visitors),
		Sessions:             len(sessionViews),
		BounceRate:           percent(bounced, len(sessionViews)),
		AvgSessionDurationMs: avgDuration,
		TopPages:             topPages(views, topN),
	}
}

// topPages counts views per page and returns the topN pages by count,
// ties in first-seen order.
func topPages(views []models.PageView, topN int) []models.PageCount {
	index := make(map[string]int)
	pages := make([]models.PageCount, 0)

	for i := range views {
		page := views[i].Page
		if idx, ok := index[page]; ok {
			pages[idx].Count++
			continue
		}
		index[page] = len(pages)
		pages = append(pages, models.PageCount{Page: page, Count: 1})
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Count > pages[j].Count
	})

	if len(pages) > topN {
		pages = pages[:topN]
	}
	return pages
}
