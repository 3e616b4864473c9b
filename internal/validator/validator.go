// Package validator re-checks a solver run against the transition function
// it was produced by. It repeats the delayed-lookup procedure with a
// deliberately naive linear scan, sharing no index machinery with the
// solver, so a defect in one implementation is unlikely to be masked by the
// same defect in the other.
package validator

import (
	"errors"
	"fmt"

	"github.com/san-kum/bdesim/internal/series"
	"github.com/san-kum/bdesim/internal/solver"
)

// ErrBadWindow indicates a validation window that is inverted or reaches
// outside what the result and delays can support.
var ErrBadWindow = errors.New("validator: invalid validation window")

// Validator holds a solver's own outputs together with the function and
// delays that produced them.
type Validator struct {
	fn       solver.TransitionFunc
	forcedFn solver.ForcedTransitionFunc
	delays   []float64
	result   []*series.BooleanTimeSeries
	forcing  []*series.BooleanTimeSeries
	eps      series.Tolerance
}

// New builds a validator for a run without forcing inputs. result is the
// full per-variable output of Solver.Solve, history included.
func New(fn solver.TransitionFunc, delays []float64, result []*series.BooleanTimeSeries) *Validator {
	return &Validator{fn: fn, delays: delays, result: result, eps: series.DefaultTolerance()}
}

// NewForced builds a validator for a run with forcing inputs.
func NewForced(fn solver.ForcedTransitionFunc, delays []float64, result, forcing []*series.BooleanTimeSeries) *Validator {
	return &Validator{forcedFn: fn, delays: delays, result: result, forcing: forcing, eps: series.DefaultTolerance()}
}

// WithTolerance overrides the time-comparison policy and returns the
// validator for chaining.
func (v *Validator) WithTolerance(eps series.Tolerance) *Validator {
	v.eps = eps
	return v
}

// Validate re-evaluates the transition function over (start, end]: at every
// recorded switch time in the window and at the midpoint of every constant
// interval overlapping it. It returns the number of sample times at which
// the recorded state disagrees with the recomputed one.
func (v *Validator) Validate(start, end float64) (int, error) {
	if !v.eps.Less(start, end) {
		return 0, fmt.Errorf("%w: start=%g, end=%g", ErrBadWindow, start, end)
	}

	t, y, err := series.Merge(v.result)
	if err != nil {
		return 0, err
	}
	var forcedT []float64
	var forcedY [][]bool
	if len(v.forcing) > 0 {
		forcedT, forcedY, err = series.Merge(v.forcing)
		if err != nil {
			return 0, err
		}
		if v.eps.Less(v.forcing[0].End, end) {
			return 0, fmt.Errorf("%w: forcing ends at %g, window ends at %g", ErrBadWindow, v.forcing[0].End, end)
		}
	}

	maxDelay := 0.0
	for _, d := range v.delays {
		if d > maxDelay {
			maxDelay = d
		}
	}
	resultEnd := v.result[0].End
	if v.eps.Less(start-maxDelay, t[0]) || v.eps.Less(resultEnd, end) {
		return 0, fmt.Errorf("%w: (%g, %g] not covered by result [%g, %g] with largest delay %g",
			ErrBadWindow, start, end, t[0], resultEnd, maxDelay)
	}

	mismatches := 0
	for _, s := range v.sampleTimes(t, start, end) {
		expected := v.expectedAt(t, y, forcedT, forcedY, s)
		actual := lookup(v.eps, t, y, s)
		if !equal(expected, actual) {
			mismatches++
		}
	}
	return mismatches, nil
}

// sampleTimes returns every switch time inside (start, end] plus the
// midpoint of each constant interval clipped to the window.
func (v *Validator) sampleTimes(t []float64, start, end float64) []float64 {
	bounds := []float64{start}
	var samples []float64
	for _, tt := range t {
		if v.eps.Less(start, tt) && v.eps.LessEq(tt, end) {
			samples = append(samples, tt)
			bounds = append(bounds, tt)
		}
	}
	if !v.eps.Eq(bounds[len(bounds)-1], end) {
		bounds = append(bounds, end)
	}
	for i := 1; i < len(bounds); i++ {
		samples = append(samples, (bounds[i-1]+bounds[i])/2)
	}
	return samples
}

func (v *Validator) expectedAt(t []float64, y [][]bool, forcedT []float64, forcedY [][]bool, s float64) []bool {
	z := make([][]bool, len(v.delays))
	for i, d := range v.delays {
		z[i] = lookup(v.eps, t, y, s-d)
	}
	if v.forcedFn != nil {
		z2 := make([][]bool, len(v.delays))
		for i, d := range v.delays {
			z2[i] = lookup(v.eps, forcedT, forcedY, s-d)
		}
		return v.forcedFn(z, z2)
	}
	return v.fn(z)
}

// lookup scans from the front for the last row at or before s. Slow and
// obviously correct, which is the point.
func lookup(eps series.Tolerance, t []float64, y [][]bool, s float64) []bool {
	i := 0
	for i+1 < len(t) && eps.LessEq(t[i+1], s) {
		i++
	}
	return y[i]
}

func equal(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
