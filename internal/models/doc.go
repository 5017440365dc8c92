// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package models defines the records Trailmark ingests and the results it
produces.

Key Components:

Input records:
  - PageView: a page load with session, optional user and optional duration
  - Interaction: a click, scroll, hover, form_submit or download on a page
  - Payload: typed interaction data (ClickPayload, ScrollPayload, FormPayload,
    DownloadPayload), with RawPayload for types without a fixed shape

Aggregation results:
  - DailyStats: per-day page views, visitors, sessions, bounce rate and top pages
  - WeeklyStats: daily rows folded into Sunday-started weeks
  - FunnelStepResult: sessions reaching a step and the conversion from the previous step
  - CohortResult: first-visit cohorts with per-period retention

Usage Example:

	import "github.com/tomtom215/trailmark/internal/models"

	pv := models.PageView{
	    Page:      "/pricing",
	    Timestamp: time.Now(),
	    SessionID: "s-42",
	}
	visitor := pv.VisitorID() // "s-42" until a user ID is known

	var in models.Interaction
	err := json.Unmarshal(raw, &in) // Data is decoded according to in.Type
	if click, ok := in.Data.(models.ClickPayload); ok {
	    fmt.Println(click.X, click.Y)
	}

JSON Marshaling:

  - snake_case field names throughout
  - time.Time uses RFC3339
  - Interaction payloads are decoded by type; unknown shapes are preserved

Thread Safety:

Models are plain values with no internal locking. Results handed out by the
aggregation caches are copies, so callers may modify them freely.

See Also:

  - internal/ingest: decodes and validates these records from files
  - internal/analytics: computes the result types
*/
package models
