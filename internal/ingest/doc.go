// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

/*
Package ingest is the boundary between raw tracking input and the aggregation
service.

Input is NDJSON or a JSON array of envelopes. The "kind" field selects the
record type; the remaining fields are the record itself:

	{"kind":"pageview","page":"/","timestamp":"2024-01-15T10:00:00Z","session_id":"s1"}
	{"kind":"interaction","type":"click","element":"#buy","page":"/pricing","timestamp":"2024-01-15T10:01:00Z","session_id":"s1","data":{"x":10,"y":20}}

Every record is validated with the shared validator before it is accepted, so
the analytics package only ever sees well-formed records. Bad records are
skipped, counted in trailmark_ingest_rejected_total{reason} and logged at
warn level:

	batch, err := ingest.ReadFile(ctx, "events.ndjson")
	if err != nil {
	    return err
	}
	daily := svc.ProcessDailyStats(ctx, batch.PageViews)
*/
package ingest
