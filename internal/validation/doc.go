// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Two consumers rely on it:
//
//   - the ingest boundary, which validates every decoded page view and
//     interaction before it reaches the aggregation service
//   - the config loader, which validates the merged configuration
//
// Field names in error messages follow the json (or koanf) tag, so a failed
// record reports "session_id is required" rather than "SessionID is required".
//
// # Custom Tags
//
//	cron - a rollup schedule accepted by ScheduleParser ("@every 5m", "0 * * * *")
//
// # Usage
//
//	if verr := validation.ValidateStruct(&pv); verr != nil {
//	    logging.Warn().Strs("fields", verr.Fields()).Msg("Record rejected")
//	}
package validation
