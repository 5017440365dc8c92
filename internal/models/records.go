// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// PageView is a single page impression recorded by the tracking layer.
// Records reaching the aggregation engine have already passed ingest validation.
type PageView struct {
	Page       string    `json:"page" validate:"required"`
	Timestamp  time.Time `json:"timestamp" validate:"required"`
	Referrer   string    `json:"referrer,omitempty"`
	SessionID  string    `json:"session_id" validate:"required"`
	UserID     string    `json:"user_id,omitempty"`
	DurationMs *int64    `json:"duration_ms,omitempty" validate:"omitempty,gte=0"`
}

// VisitorID identifies the visitor behind a page view: the user ID when the
// visitor is known, otherwise the session ID.
func (p *PageView) VisitorID() string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.SessionID
}

// InteractionType enumerates the interaction kinds emitted by the tracking script.
type InteractionType string

const (
	InteractionClick      InteractionType = "click"
	InteractionScroll     InteractionType = "scroll"
	InteractionHover      InteractionType = "hover"
	InteractionFormSubmit InteractionType = "form_submit"
	InteractionDownload   InteractionType = "download"
)

// Valid reports whether t is one of the known interaction types.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionClick, InteractionScroll, InteractionHover, InteractionFormSubmit, InteractionDownload:
		return true
	}
	return false
}

// Interaction is a single user interaction with a page element.
type Interaction struct {
	Type      InteractionType `json:"type" validate:"required,oneof=click scroll hover form_submit download"`
	Element   string          `json:"element" validate:"required"`
	Page      string          `json:"page" validate:"required"`
	Timestamp time.Time       `json:"timestamp" validate:"required"`
	SessionID string          `json:"session_id" validate:"required"`
	Data      Payload         `json:"data,omitempty"`
}

// interactionWire is the decoding shape of Interaction; Data stays raw until
// the interaction type is known.
type interactionWire struct {
	Type      InteractionType `json:"type"`
	Element   string          `json:"element"`
	Page      string          `json:"page"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON decodes an interaction and picks the payload variant from its type.
func (i *Interaction) UnmarshalJSON(b []byte) error {
	var w interactionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	payload, err := DecodePayload(w.Type, w.Data)
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", w.Type, err)
	}

	*i = Interaction{
		Type:      w.Type,
		Element:   w.Element,
		Page:      w.Page,
		Timestamp: w.Timestamp,
		SessionID: w.SessionID,
		Data:      payload,
	}
	return nil
}
