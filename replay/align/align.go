// Package align resamples a sampled signal onto a reference time base
// by piecewise-linear interpolation. The tracking pipeline records
// robot poses and detections on independent clocks; resampling the
// robot trajectory onto the detection timestamps restores a 1:1 frame
// pairing after dropouts.
package align

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Resample evaluates the piecewise-linear interpolant of (times,
// values) at every point of refTimes. times must be strictly
// increasing and at least two samples long; values must match times in
// length. Reference points outside the sampled range take the nearest
// endpoint value.
func Resample(times, values, refTimes []float64) ([]float64, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("align: %d times for %d values", len(times), len(values))
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("align: need at least 2 samples, got %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("align: times not strictly increasing at index %d", i)
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(times, values); err != nil {
		return nil, fmt.Errorf("align: fitting interpolant: %w", err)
	}

	out := make([]float64, len(refTimes))
	for i, t := range refTimes {
		// Clamp to the sampled range; PiecewiseLinear only covers it.
		if t < times[0] {
			t = times[0]
		} else if t > times[len(times)-1] {
			t = times[len(times)-1]
		}
		out[i] = pl.Predict(t)
	}
	return out, nil
}
