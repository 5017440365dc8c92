// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package timeagg

import (
	"errors"
	"math"
	"testing"
)

func TestRollingAverage(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		window int
		want   []float64
	}{
		{"window two", []float64{2, 4, 6, 8}, 2, []float64{2, 3, 5, 7}},
		{"window three", []float64{3, 6, 9, 12, 15}, 3, []float64{3, 4.5, 6, 9, 12}},
		{"window larger than series", []float64{1, 2, 3}, 10, []float64{1, 1.5, 2}},
		{"empty series", []float64{}, 3, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RollingAverage(tt.series, tt.window)
			if err != nil {
				t.Fatalf("RollingAverage() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRollingAverage_WindowOneIsIdentity(t *testing.T) {
	series := []float64{0.1, -3, 1e9, 42, 0}
	got, err := RollingAverage(series, 1)
	if err != nil {
		t.Fatalf("RollingAverage() error = %v", err)
	}
	for i := range series {
		if got[i] != series[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], series[i])
		}
	}

	// result must not alias the input
	got[0] = 99
	if series[0] == 99 {
		t.Error("RollingAverage() returned the input slice")
	}
}

func TestRollingAverage_OutlierLeavesLaterWindowsExact(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   []float64
	}{
		{"large value", []float64{1e16, 1, 1, 1}, []float64{1e16, 5e15, 1, 1}},
		{"infinity", []float64{math.Inf(1), 1, 1, 1}, []float64{math.Inf(1), math.Inf(1), 1, 1}},
		{"negative infinity", []float64{1, math.Inf(-1), 3, 5}, []float64{1, math.Inf(-1), math.Inf(-1), 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RollingAverage(tt.series, 2)
			if err != nil {
				t.Fatalf("RollingAverage() error = %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %v, want %v (all: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestRollingAverage_InvalidWindow(t *testing.T) {
	for _, w := range []int{0, -1} {
		if _, err := RollingAverage([]float64{1}, w); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("window %d: expected ErrInvalidWindow, got %v", w, err)
		}
	}
}
