// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

// Package models provides data structures for the Trailmark engine.
// This file contains the traffic rollup, funnel and cohort report models.
package models

import "time"

// PageCount is a page and the number of views it received in a bucket.
type PageCount struct {
	Page  string `json:"page"`
	Count int    `json:"count"`
}

// DailyStats summarizes one day of page views.
type DailyStats struct {
	// Date is the day bucket key (YYYY-MM-DD)
	Date string `json:"date"`

	// PageViews is the number of page views recorded on this day
	PageViews int `json:"page_views"`

	// UniqueVisitors counts distinct user IDs, falling back to session IDs for anonymous visitors
	UniqueVisitors int `json:"unique_visitors"`

	// Sessions counts distinct session IDs
	Sessions int `json:"sessions"`

	// BounceRate is the percentage of sessions with exactly one page view (0 when Sessions is 0)
	BounceRate float64 `json:"bounce_rate"`

	// AvgSessionDurationMs is the mean summed duration of sessions that recorded any duration
	AvgSessionDurationMs float64 `json:"avg_session_duration_ms"`

	// TopPages lists the most viewed pages, highest count first
	TopPages []PageCount `json:"top_pages"`
}

// WeeklyStats rolls up the DailyStats of one Sunday-aligned week.
type WeeklyStats struct {
	// WeekStarting is the day key of the Sunday opening the week
	WeekStarting string `json:"week_starting"`

	TotalPageViews      int `json:"total_page_views"`
	TotalUniqueVisitors int `json:"total_unique_visitors"`
	TotalSessions       int `json:"total_sessions"`

	// AvgBounceRate and AvgSessionDurationMs are unweighted means across the week's days
	AvgBounceRate        float64 `json:"avg_bounce_rate"`
	AvgSessionDurationMs float64 `json:"avg_session_duration_ms"`

	// DailyBreakdown holds the week's days in ascending date order
	DailyBreakdown []DailyStats `json:"daily_breakdown"`
}

// FunnelStepResult is the population and conversion of one funnel step.
type FunnelStepResult struct {
	Step           string  `json:"step"`
	Users          int     `json:"users"`
	ConversionRate float64 `json:"conversion_rate"`
	DropOffRate    float64 `json:"drop_off_rate"`
}

// RetentionPeriod is the share of a cohort active in one period after its founding period.
type RetentionPeriod struct {
	// Period is the offset from the cohort's founding period (0 = founding period)
	Period int `json:"period"`

	// Percentage is (active cohort users / cohort users) * 100
	Percentage float64 `json:"percentage"`
}

// CohortResult is the retention curve of visitors who first appeared in the same bucket.
type CohortResult struct {
	// Cohort is the bucket key of the founding period
	Cohort string `json:"cohort"`

	// CohortStart is the instant the founding period begins
	CohortStart time.Time `json:"cohort_start"`

	// Users is the cohort size, always positive
	Users int `json:"users"`

	// Retention is ordered by period, starting at 0
	Retention []RetentionPeriod `json:"retention"`
}
