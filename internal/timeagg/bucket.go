// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package timeagg

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Period is a calendar bucket size.
type Period string

const (
	PeriodHour  Period = "hour"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Key layouts. All keys are zero padded so lexical order matches chronological order.
const (
	hourLayout  = "2006-01-02-15"
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// ErrUnknownPeriod is returned for a Period outside hour/day/week/month.
var ErrUnknownPeriod = errors.New("unknown aggregation period")

// ParsePeriod converts a string (case-insensitive) to a Period.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	return p, nil
}

// Valid reports whether p is a supported period.
func (p Period) Valid() bool {
	switch p {
	case PeriodHour, PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// HourKey returns the hour bucket key (YYYY-MM-DD-HH) from t's local calendar fields.
func HourKey(t time.Time) string {
	return t.Format(hourLayout)
}

// DayKey returns the day bucket key (YYYY-MM-DD) from t's local calendar fields.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// WeekKey returns the week bucket key (YYYY-Www). The timestamp is first
// normalized to the Sunday opening its week; the ISO-8601 year and week number
// of that Sunday form the key.
func WeekKey(t time.Time) string {
	year, week := WeekStart(t).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthKey returns the month bucket key (YYYY-MM).
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// BucketKey returns the key of the period bucket containing t.
func BucketKey(t time.Time, period Period) (string, error) {
	switch period {
	case PeriodHour:
		return HourKey(t), nil
	case PeriodDay:
		return DayKey(t), nil
	case PeriodWeek:
		return WeekKey(t), nil
	case PeriodMonth:
		return MonthKey(t), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
}

// DayStart returns midnight of t's day in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns midnight of the Sunday opening t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, t.Location())
}

// MonthStart returns midnight of the first day of t's month, in t's location.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ParseDayKey parses a day bucket key back into midnight of that day in loc.
// A nil loc means UTC.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dayLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day key %q: %w", key, err)
	}
	return t, nil
}

// GroupByPeriod buckets records by the period containing each record's timestamp.
// Records keep their input order within a bucket. The bucket a record lands in
// depends only on its timestamp and the period.
func GroupByPeriod[T any](records []T, timestamp func(T) time.Time, period Period) (map[string][]T, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}

	groups := make(map[string][]T)
	for _, r := range records {
		// period already validated
		key, _ := BucketKey(timestamp(r), period)
		groups[key] = append(groups[key], r)
	}
	return groups, nil
}

// SortedKeys returns the keys of a bucket map in ascending order.
func SortedKeys[T any](groups map[string][]T) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
