// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package timeagg

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned when a rolling window is smaller than one element.
var ErrInvalidWindow = errors.New("rolling window must be at least 1")

// RollingAverage returns the trailing moving average of series.
//
// Element i of the result is the mean of series[max(0, i-window+1) .. i], so the
// first window-1 elements average over the shorter prefix. The result has the
// same length as series, and a window of 1 reproduces the input.
//
// Each window is summed on its own, O(n*window), so a huge or infinite value
// only affects the windows that contain it.
func RollingAverage(series []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}

	out := make([]float64, len(series))
	if window == 1 {
		copy(out, series)
		return out, nil
	}

	for i := range series {
		lo := max(0, i-window+1)
		var sum float64
		for _, v := range series[lo : i+1] {
			sum += v
		}
		out[i] = sum / float64(i+1-lo)
	}
	return out, nil
}
