// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Payload is the closed set of metadata shapes an Interaction can carry.
// Known shapes decode into typed structs; anything else lands in RawPayload.
type Payload interface {
	payloadKind() string
}

// ClickPayload carries pointer coordinates for click and hover interactions.
type ClickPayload struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Button string `json:"button,omitempty"`
}

// ScrollPayload carries the scroll depth reached on the page.
type ScrollPayload struct {
	DepthPercent float64 `json:"depth_percent"`
}

// FormPayload describes a submitted form. Field values are never captured.
type FormPayload struct {
	FormID string   `json:"form_id"`
	Fields []string `json:"fields,omitempty"`
}

// DownloadPayload describes a downloaded file.
type DownloadPayload struct {
	File  string `json:"file"`
	Bytes int64  `json:"bytes,omitempty"`
}

// RawPayload keeps arbitrary metadata whose shape is not known ahead of time.
type RawPayload struct {
	Fields map[string]any `json:"fields"`
}

func (ClickPayload) payloadKind() string    { return "click" }
func (ScrollPayload) payloadKind() string   { return "scroll" }
func (FormPayload) payloadKind() string     { return "form" }
func (DownloadPayload) payloadKind() string { return "download" }
func (RawPayload) payloadKind() string      { return "raw" }

// MarshalJSON flattens the raw fields so a RawPayload round-trips as a plain object.
func (p RawPayload) MarshalJSON() ([]byte, error) {
	if p.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.Fields)
}

// DecodePayload decodes raw interaction metadata into the variant matching t.
// Empty or null data yields a nil Payload.
func DecodePayload(t InteractionType, raw []byte) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch t {
	case InteractionClick, InteractionHover:
		var p ClickPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case InteractionScroll:
		var p ScrollPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case InteractionFormSubmit:
		var p FormPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case InteractionDownload:
		var p DownloadPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return RawPayload{Fields: fields}, nil
}
