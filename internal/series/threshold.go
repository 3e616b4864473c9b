package series

import "fmt"

// AbsoluteThreshold converts a sampled real-valued signal into a boolean
// series: true wherever the signal exceeds the threshold. Crossing times are
// linearly interpolated between samples on opposite sides. A run of samples
// sitting exactly on the threshold switches at the run's midpoint when the
// neighbouring samples lie on opposite sides, and is ignored when they lie
// on the same side. A signal that never leaves the threshold yields a single
// constant-false point.
func AbsoluteThreshold(t, y []float64, threshold float64) (*BooleanTimeSeries, error) {
	return AbsoluteThresholdWithTolerance(t, y, threshold, DefaultTolerance())
}

// AbsoluteThresholdWithTolerance is AbsoluteThreshold with an explicit
// time-comparison policy.
func AbsoluteThresholdWithTolerance(t, y []float64, threshold float64, eps Tolerance) (*BooleanTimeSeries, error) {
	if len(t) == 0 {
		return nil, ErrEmpty
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf("%w: %d times, %d values", ErrShapeMismatch, len(t), len(y))
	}

	// Indexes of samples strictly off the threshold.
	var off []int
	for i, v := range y {
		if !eps.Eq(v, threshold) {
			off = append(off, i)
		}
	}
	end := t[len(t)-1]
	if len(off) == 0 {
		return NewWithTolerance([]float64{t[0]}, []bool{false}, end, eps)
	}

	resT := []float64{t[0]}
	resY := []bool{y[off[0]] > threshold}
	for k := 1; k < len(off); k++ {
		a, b := off[k-1], off[k]
		above := y[b] > threshold
		if above == (y[a] > threshold) {
			continue
		}
		var cross float64
		if b == a+1 {
			// Adjacent samples on opposite sides: interpolate.
			cross = t[a] + (t[b]-t[a])*(threshold-y[a])/(y[b]-y[a])
		} else {
			// Plateau on the threshold between them: switch at its midpoint.
			cross = (t[a+1] + t[b-1]) / 2
		}
		resT = append(resT, cross)
		resY = append(resY, above)
	}

	return NewWithTolerance(resT, resY, end, eps)
}

// RelativeThreshold thresholds at the given fraction of the signal's range,
// so 0.5 switches halfway between the observed minimum and maximum.
func RelativeThreshold(t, y []float64, fraction float64) (*BooleanTimeSeries, error) {
	return RelativeThresholdWithTolerance(t, y, fraction, DefaultTolerance())
}

// RelativeThresholdWithTolerance is RelativeThreshold with an explicit
// time-comparison policy.
func RelativeThresholdWithTolerance(t, y []float64, fraction float64, eps Tolerance) (*BooleanTimeSeries, error) {
	if len(y) == 0 {
		return nil, ErrEmpty
	}
	mn, mx := y[0], y[0]
	for _, v := range y {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return AbsoluteThresholdWithTolerance(t, y, mn+fraction*(mx-mn), eps)
}
