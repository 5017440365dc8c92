// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestPageViewVisitorID(t *testing.T) {
	anon := PageView{SessionID: "S1"}
	if got := anon.VisitorID(); got != "S1" {
		t.Errorf("anonymous VisitorID() = %q, want S1", got)
	}

	known := PageView{SessionID: "S1", UserID: "U1"}
	if got := known.VisitorID(); got != "U1" {
		t.Errorf("known VisitorID() = %q, want U1", got)
	}
}

func TestInteractionTypeValid(t *testing.T) {
	for _, typ := range []InteractionType{
		InteractionClick, InteractionScroll, InteractionHover, InteractionFormSubmit, InteractionDownload,
	} {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	if InteractionType("swipe").Valid() {
		t.Error("swipe should not be valid")
	}
}

func TestInteractionUnmarshal_PayloadVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, p Payload)
	}{
		{
			name:  "click",
			input: `{"type":"click","element":"#buy","page":"/p","timestamp":"2024-01-01T10:00:00Z","session_id":"S1","data":{"x":10,"y":20,"button":"left"}}`,
			check: func(t *testing.T, p Payload) {
				c, ok := p.(ClickPayload)
				if !ok {
					t.Fatalf("expected ClickPayload, got %T", p)
				}
				if c.X != 10 || c.Y != 20 || c.Button != "left" {
					t.Errorf("unexpected click payload %+v", c)
				}
			},
		},
		{
			name:  "scroll",
			input: `{"type":"scroll","element":"body","page":"/p","timestamp":"2024-01-01T10:00:00Z","session_id":"S1","data":{"depth_percent":75.5}}`,
			check: func(t *testing.T, p Payload) {
				s, ok := p.(ScrollPayload)
				if !ok {
					t.Fatalf("expected ScrollPayload, got %T", p)
				}
				if s.DepthPercent != 75.5 {
					t.Errorf("DepthPercent = %v, want 75.5", s.DepthPercent)
				}
			},
		},
		{
			name:  "form submit",
			input: `{"type":"form_submit","element":"#signup","page":"/p","timestamp":"2024-01-01T10:00:00Z","session_id":"S1","data":{"form_id":"signup","fields":["email"]}}`,
			check: func(t *testing.T, p Payload) {
				f, ok := p.(FormPayload)
				if !ok {
					t.Fatalf("expected FormPayload, got %T", p)
				}
				if f.FormID != "signup" || len(f.Fields) != 1 {
					t.Errorf("unexpected form payload %+v", f)
				}
			},
		},
		{
			name:  "download",
			input: `{"type":"download","element":"a.pdf","page":"/p","timestamp":"2024-01-01T10:00:00Z","session_id":"S1","data":{"file":"a.pdf","bytes":1024}}`,
			check: func(t *testing.T, p Payload) {
				d, ok := p.(DownloadPayload)
				if !ok {
					t.Fatalf("expected DownloadPayload, got %T", p)
				}
				if d.File != "a.pdf" || d.Bytes != 1024 {
					t.Errorf("unexpected download payload %+v", d)
				}
			},
		},
		{
			name:  "no data",
			input: `{"type":"hover","element":"#menu","page":"/p","timestamp":"2024-01-01T10:00:00Z","session_id":"S1"}`,
			check: func(t *testing.T, p Payload) {
				if p != nil {
					t.Errorf("expected nil payload, got %T", p)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var i Interaction
			if err := json.Unmarshal([]byte(tt.input), &i); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if i.SessionID != "S1" {
				t.Errorf("SessionID = %q, want S1", i.SessionID)
			}
			tt.check(t, i.Data)
		})
	}
}

func TestDecodePayload_UnknownTypeKeepsRawFields(t *testing.T) {
	p, err := DecodePayload(InteractionType("custom"), []byte(`{"campaign":"spring","step":2}`))
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	raw, ok := p.(RawPayload)
	if !ok {
		t.Fatalf("expected RawPayload, got %T", p)
	}
	if raw.Fields["campaign"] != "spring" {
		t.Errorf("campaign = %v, want spring", raw.Fields["campaign"])
	}

	out, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back["campaign"] != "spring" {
		t.Errorf("raw payload did not round-trip: %s", out)
	}
}

func TestDecodePayload_Malformed(t *testing.T) {
	if _, err := DecodePayload(InteractionClick, []byte(`{"x":"left"}`)); err == nil {
		t.Error("expected error for mistyped click payload")
	}
}
