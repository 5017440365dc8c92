// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package analytics

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trailmark/internal/models"
)

func sampleDaily() []models.DailyStats {
	return []models.DailyStats{
		{
			Date:                 "2024-01-01",
			PageViews:            3,
			UniqueVisitors:       1,
			Sessions:             1,
			BounceRate:           0,
			AvgSessionDurationMs: 1250.5,
			TopPages:             []models.PageCount{{Page: "/", Count: 2}, {Page: "/pricing", Count: 1}},
		},
		{
			Date:           "2024-01-02",
			PageViews:      1,
			UniqueVisitors: 1,
			Sessions:       1,
			BounceRate:     100,
			TopPages:       []models.PageCount{{Page: "/a,b", Count: 1}},
		},
	}
}

// ===================================================================================================
// JSON
// ===================================================================================================

func TestExportAggregatedData_JSONRoundTrip(t *testing.T) {
	daily := sampleDaily()

	out, err := ExportAggregatedData(FormatJSON, daily)
	if err != nil {
		t.Fatalf("ExportAggregatedData() error = %v", err)
	}
	if !strings.Contains(out, "\n  {\n    \"date\": \"2024-01-01\"") {
		t.Errorf("expected 2-space indented output, got:\n%s", out)
	}

	var back []models.DailyStats
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(back, daily) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, daily)
	}
}

func TestExportAggregatedData_JSONWeekly(t *testing.T) {
	weekly := []models.WeeklyStats{{
		WeekStarting:   "2023-12-31",
		TotalPageViews: 4,
		AvgBounceRate:  50,
		DailyBreakdown: sampleDaily(),
	}}

	out, err := ExportAggregatedData(FormatJSON, weekly)
	if err != nil {
		t.Fatalf("ExportAggregatedData() error = %v", err)
	}

	var back []models.WeeklyStats
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(back, weekly) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, weekly)
	}
}

func TestExportAggregatedData_JSONEmpty(t *testing.T) {
	out, err := ExportAggregatedData[models.DailyStats](FormatJSON, nil)
	if err != nil {
		t.Fatalf("ExportAggregatedData() error = %v", err)
	}
	if out != "[]" {
		t.Errorf("empty JSON export = %q, want []", out)
	}
}

// ===================================================================================================
// CSV
// ===================================================================================================

func TestExportAggregatedData_CSVDaily(t *testing.T) {
	out, err := ExportAggregatedData(FormatCSV, sampleDaily())
	if err != nil {
		t.Fatalf("ExportAggregatedData() error = %v", err)
	}

	want := strings.Join([]string{
		"date,page_views,unique_visitors,sessions,bounce_rate,avg_session_duration_ms",
		"2024-01-01,3,1,1,0,1250.5",
		"2024-01-02,1,1,1,100,0",
	}, "\n")
	if out != want {
		t.Errorf("CSV export mismatch:\n got %q\nwant %q", out, want)
	}
}

func TestExportAggregatedData_CSVWeekly(t *testing.T) {
	weekly := []models.WeeklyStats{{
		WeekStarting:        "2024-01-07",
		TotalPageViews:      16,
		TotalUniqueVisitors: 7,
		TotalSessions:       8,
		AvgBounceRate:       30,
		DailyBreakdown:      sampleDaily(),
	}}

	out, err := ExportAggregatedData(FormatCSV, weekly)
	if err != nil {
		t.Fatalf("ExportAggregatedData() error = %v", err)
	}

	lines := strings.Split(out, "\n")
	if lines[0] != "week_starting,total_page_views,total_unique_visitors,total_sessions,avg_bounce_rate,avg_session_duration_ms" {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Contains(lines[0], "daily_breakdown") {
		t.Error("nested daily_breakdown must be excluded")
	}
	if lines[1] != "2024-01-07,16,7,8,30,0" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestExportAggregatedData_CSVEmpty(t *testing.T) {
	out, err := ExportAggregatedData(FormatCSV, []models.DailyStats{})
	if err != nil {
		t.Fatalf("ExportAggregatedData() error = %v", err)
	}
	if out != "" {
		t.Errorf("empty CSV export = %q, want empty string", out)
	}
}

func TestCSVField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"2024-01-01", "2024-01-01"},
		{"a,b", `"a,b"`},
		{`say "hi", then`, `"say ""hi"", then"`},
		{`no "comma"`, `no "comma"`},
	}
	for _, tt := range tests {
		if got := csvField(tt.in); got != tt.want {
			t.Errorf("csvField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ===================================================================================================
// Formats
// ===================================================================================================

func TestExportAggregatedData_UnsupportedFormat(t *testing.T) {
	_, err := ExportAggregatedData(Format("xml"), sampleDaily())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("CSV"); err != nil || f != FormatCSV {
		t.Errorf("ParseFormat(CSV) = %q, %v", f, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON || f.Extension() != "json" {
		t.Errorf("ParseFormat(json) = %q, %v", f, err)
	}
	if _, err := ParseFormat("yaml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(yaml) error = %v, want ErrUnsupportedFormat", err)
	}
}
