// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package analytics

import "errors"

var (
	// ErrInvalidConfig is returned by New when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid analytics configuration")

	// ErrUnsupportedFormat is returned for an export format other than json or csv.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrUnknownTimeframe is returned for a cohort timeframe other than daily, weekly or monthly.
	ErrUnknownTimeframe = errors.New("unknown cohort timeframe")
)

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
