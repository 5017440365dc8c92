// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package validation

import (
	"strings"
	"testing"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

type testRecord struct {
	Page      string `json:"page" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	Kind      string `json:"kind" validate:"omitempty,oneof=pageview interaction"`
	Duration  int64  `json:"duration_ms" validate:"gte=0"`
	Name      string `validate:"omitempty,min=2,max=5"`
}

type testSettings struct {
	Schedule string  `koanf:"schedule" validate:"cron"`
	Ratio    float64 `koanf:"eviction_target_ratio" validate:"gt=0,lte=1"`
	Timezone string  `koanf:"timezone" validate:"omitempty,timezone"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"minimal record", &testRecord{Page: "/", SessionID: "s1"}},
		{"full record", &testRecord{Page: "/pricing", SessionID: "s1", Kind: "pageview", Duration: 1200, Name: "abc"}},
		{"descriptor schedule", &testSettings{Schedule: "@every 5m", Ratio: 0.9}},
		{"five field schedule", &testSettings{Schedule: "*/10 * * * *", Ratio: 1, Timezone: "Europe/Berlin"}},
		{"six field schedule", &testSettings{Schedule: "30 0 * * * *", Ratio: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "missing page",
			input:     &testRecord{SessionID: "s1"},
			wantField: "page",
			wantTag:   "required",
			wantMsg:   "page is required",
		},
		{
			name:      "unknown kind",
			input:     &testRecord{Page: "/", SessionID: "s1", Kind: "purchase"},
			wantField: "kind",
			wantTag:   "oneof",
			wantMsg:   "kind must be one of: pageview interaction",
		},
		{
			name:      "negative duration",
			input:     &testRecord{Page: "/", SessionID: "s1", Duration: -1},
			wantField: "duration_ms",
			wantTag:   "gte",
			wantMsg:   "duration_ms must be greater than or equal to 0",
		},
		{
			name:      "short string",
			input:     &testRecord{Page: "/", SessionID: "s1", Name: "a"},
			wantField: "Name",
			wantTag:   "min",
			wantMsg:   "Name must be at least 2 characters",
		},
		{
			name:      "bad schedule",
			input:     &testSettings{Schedule: "every five minutes", Ratio: 0.9},
			wantField: "schedule",
			wantTag:   "cron",
			wantMsg:   "schedule must be a cron expression or descriptor",
		},
		{
			name:      "empty schedule",
			input:     &testSettings{Ratio: 0.9},
			wantField: "schedule",
			wantTag:   "cron",
		},
		{
			name:      "ratio above one",
			input:     &testSettings{Schedule: "@hourly", Ratio: 1.5},
			wantField: "eviction_target_ratio",
			wantTag:   "lte",
		},
		{
			name:      "unknown timezone",
			input:     &testSettings{Schedule: "@hourly", Ratio: 0.9, Timezone: "Mars/Olympus"},
			wantField: "timezone",
			wantTag:   "timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}

			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if tt.wantMsg != "" && errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&testRecord{Duration: -5})
	if err == nil {
		t.Fatal("expected error")
	}

	fields := err.Fields()
	want := []string{"page", "session_id", "duration_ms"}
	if len(fields) != len(want) {
		t.Fatalf("Fields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("Fields()[%d] = %q, want %q", i, fields[i], want[i])
		}
	}

	msg := err.Error()
	if !strings.Contains(msg, "page is required; session_id is required") {
		t.Errorf("Error() = %q, want joined messages", msg)
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	if err.Errors()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", err.Errors()[0].Field())
	}
}

func TestStructValidationError_Empty(t *testing.T) {
	err := &StructValidationError{}
	if err.Error() != "validation failed" {
		t.Errorf("Error() = %q, want 'validation failed'", err.Error())
	}
}
