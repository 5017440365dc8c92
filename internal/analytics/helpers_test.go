// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/trailmark/internal/models"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := New(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func pageView(t *testing.T, page, ts, session, user string) models.PageView {
	t.Helper()
	return models.PageView{Page: page, Timestamp: mustTime(t, ts), SessionID: session, UserID: user}
}

func withDuration(pv models.PageView, ms int64) models.PageView {
	pv.DurationMs = &ms
	return pv
}

func click(session, element string) models.Interaction {
	return models.Interaction{
		Type:      models.InteractionClick,
		Element:   element,
		Page:      "/",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		SessionID: session,
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
