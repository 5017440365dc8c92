// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package timeagg provides stateless calendar bucketing for timestamped records.

# Bucket Keys

Every period maps a timestamp to a zero-padded key built from the timestamp's own
local calendar fields. Convert timestamps to the reporting location before
bucketing if records arrive in mixed zones.

	hour   2024-01-07-15
	day    2024-01-07
	week   2024-W01   (Sunday-aligned week start, then ISO-8601 year/week of that Sunday)
	month  2024-01

Because a Sunday closes its ISO week, the week key of a Sunday-aligned week is the
ISO week that ends on that Sunday. For example, the week opening Sunday
2024-01-07 gets key 2024-W01.

# Grouping

	groups, err := timeagg.GroupByPeriod(views, func(v models.PageView) time.Time {
	    return v.Timestamp
	}, timeagg.PeriodDay)

	for _, key := range timeagg.SortedKeys(groups) {
	    fmt.Println(key, len(groups[key]))
	}

# Rolling Average

RollingAverage computes a trailing moving average with a shortened window at the
start of the series:

	avg, _ := timeagg.RollingAverage([]float64{2, 4, 6, 8}, 2)
	// avg == [2, 3, 5, 7]
*/
package timeagg
