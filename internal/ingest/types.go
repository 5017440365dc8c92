// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package ingest

import (
	"time"

	"github.com/tomtom215/trailmark/internal/models"
)

// Kind discriminates the record carried by an input envelope.
type Kind string

const (
	KindPageView    Kind = "pageview"
	KindInteraction Kind = "interaction"
)

// Rejection reasons, used as the metrics label and in Rejection.Reason.
const (
	ReasonMalformed   = "malformed"
	ReasonUnknownKind = "unknown_kind"
	ReasonValidation  = "validation"
)

// Batch holds the valid records read from one input.
type Batch struct {
	PageViews    []models.PageView
	Interactions []models.Interaction
	Stats        Stats
}

// Rejection describes one input record that was skipped.
type Rejection struct {
	// Record is the 1-based position of the record in the input
	// (line number for NDJSON, element index + 1 for a JSON array).
	Record int
	Reason string
	Err    error
}

// Stats holds statistics about one read.
type Stats struct {
	// Records is the number of non-blank records seen.
	Records int

	// PageViews and Interactions count accepted records by kind.
	PageViews    int
	Interactions int

	// Rejected lists every skipped record.
	Rejected []Rejection

	StartTime time.Time
	EndTime   time.Time
}

// Accepted returns the number of records that passed validation.
func (s *Stats) Accepted() int {
	return s.PageViews + s.Interactions
}

// Duration returns how long the read took.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}
