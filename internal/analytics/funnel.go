// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package analytics

import (
	"context"
	"time"

	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/metrics"
	"github.com/tomtom215/trailmark/internal/models"
)

// CalculateFunnel measures how many sessions reached each step of a funnel.
//
// A step is an element identifier. A session reached step i when any of its
// interactions targeted that element; the order of the session's interactions
// is not considered, so a session can count for a later step without having
// reached an earlier one. Conversion at step 0 is relative to all distinct
// sessions in events, and at step i relative to the users of step i-1. With
// set membership a later step can hold more sessions than the one before it,
// in which case conversion exceeds 100 and drop-off goes negative.
//
// Results follow the order of steps.
func (s *Service) CalculateFunnel(ctx context.Context, events []models.Interaction, steps []string) []models.FunnelStepResult {
	start := time.Now()

	sessionElements := make(map[string]map[string]struct{})
	for i := range events {
		e := &events[i]
		elements, ok := sessionElements[e.SessionID]
		if !ok {
			elements = make(map[string]struct{})
			sessionElements[e.SessionID] = elements
		}
		elements[e.Element] = struct{}{}
	}

	results := make([]models.FunnelStepResult, 0, len(steps))
	previousUsers := len(sessionElements)

	for _, step := range steps {
		users := 0
		for _, elements := range sessionElements {
			if _, ok := elements[step]; ok {
				users++
			}
		}

		conversion := percent(users, previousUsers)
		results = append(results, models.FunnelStepResult{
			Step:           step,
			Users:          users,
			ConversionRate: conversion,
			DropOffRate:    100 - conversion,
		})
		previousUsers = users
	}

	metrics.RecordAggregation("funnel", len(events), time.Since(start))
	logging.Ctx(ctx).Debug().
		Int("interactions", len(events)).
		Int("sessions", len(sessionElements)).
		Int("steps", len(steps)).
		Msg("Funnel computed")

	return results
}
