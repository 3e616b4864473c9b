// Package series provides the piecewise-constant boolean signal that the
// whole simulator is built on. A BooleanTimeSeries is right-continuous on
// [T[0], End]: the value recorded at a switch time holds until the next
// switch time, and the last value holds through End.
package series

import "fmt"

// BooleanTimeSeries is an immutable-by-convention boolean step function.
// Cut returns a new series; Compress is the one mutating operation and
// returns its receiver for chaining.
type BooleanTimeSeries struct {
	T     []float64
	Y     []bool
	End   float64
	Label string

	eps Tolerance
}

// New builds a series from switch times, values, and an end time using the
// default tolerance. If fewer values than times are given the missing
// trailing values alternate, so a long history can be declared by its first
// value alone.
func New(t []float64, y []bool, end float64) (*BooleanTimeSeries, error) {
	return NewWithTolerance(t, y, end, DefaultTolerance())
}

// NewWithTolerance is New with an explicit time-comparison policy.
func NewWithTolerance(t []float64, y []bool, end float64, eps Tolerance) (*BooleanTimeSeries, error) {
	if len(t) == 0 || len(y) == 0 {
		return nil, ErrEmpty
	}
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return nil, fmt.Errorf("%w: t[%d]=%g follows t[%d]=%g", ErrNonIncreasing, i, t[i], i-1, t[i-1])
		}
	}
	if eps.Less(end, t[len(t)-1]) {
		return nil, fmt.Errorf("%w: end=%g, last switch=%g", ErrEndBeforeLastSwitch, end, t[len(t)-1])
	}
	if len(y) > len(t) {
		return nil, fmt.Errorf("%w: %d values for %d times", ErrExcessValues, len(y), len(t))
	}

	ct := make([]float64, len(t))
	copy(ct, t)
	cy := make([]bool, len(t))
	copy(cy, y)
	for i := len(y); i < len(t); i++ {
		cy[i] = !cy[i-1]
	}

	return &BooleanTimeSeries{T: ct, Y: cy, End: end, eps: eps}, nil
}

// Tolerance returns the series' time-comparison policy.
func (s *BooleanTimeSeries) Tolerance() Tolerance { return s.eps }

// Start returns the first declared time of the series.
func (s *BooleanTimeSeries) Start() float64 { return s.T[0] }

// At returns the value active at time t.
func (s *BooleanTimeSeries) At(t float64) (bool, error) {
	if s.eps.Less(t, s.T[0]) || s.eps.Less(s.End, t) {
		return false, fmt.Errorf("%w: t=%g not in [%g, %g]", ErrOutOfRange, t, s.T[0], s.End)
	}
	i := 0
	for i+1 < len(s.T) && s.eps.LessEq(s.T[i+1], t) {
		i++
	}
	return s.Y[i], nil
}

// Cut returns a new series restricted to [start, end]. The value active just
// before start becomes the first point when start is not itself a switch
// time. A switch exactly at end is dropped unless keepSwitchOnEnd is set.
func (s *BooleanTimeSeries) Cut(start, end float64, keepSwitchOnEnd bool) (*BooleanTimeSeries, error) {
	if !s.eps.Less(start, end) {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrBadWindow, start, end)
	}
	if s.eps.Less(start, s.T[0]) {
		return nil, fmt.Errorf("%w: start %g precedes series start %g", ErrOutOfRange, start, s.T[0])
	}
	if s.eps.Less(s.End, end) {
		return nil, fmt.Errorf("%w: end %g exceeds series end %g", ErrOutOfRange, end, s.End)
	}

	i := 0
	for i+1 < len(s.T) && s.eps.LessEq(s.T[i+1], start) {
		i++
	}
	resT := []float64{start}
	resY := []bool{s.Y[i]}
	for j := i + 1; j < len(s.T); j++ {
		if s.eps.Less(s.T[j], end) {
			resT = append(resT, s.T[j])
			resY = append(resY, s.Y[j])
			continue
		}
		if s.eps.Eq(s.T[j], end) && keepSwitchOnEnd {
			resT = append(resT, s.T[j])
			resY = append(resY, s.Y[j])
		}
		break
	}

	return &BooleanTimeSeries{T: resT, Y: resY, End: end, Label: s.Label, eps: s.eps}, nil
}

// Compress removes switch points that do not change the value. It mutates
// the receiver in place and returns it for chaining; callers that need the
// uncompressed series must copy first. Compress is idempotent.
func (s *BooleanTimeSeries) Compress() *BooleanTimeSeries {
	resT := s.T[:1]
	resY := s.Y[:1]
	for i := 1; i < len(s.T); i++ {
		if s.Y[i] != resY[len(resY)-1] {
			resT = append(resT, s.T[i])
			resY = append(resY, s.Y[i])
		}
	}
	s.T = resT
	s.Y = resY
	return s
}

// PlotData converts the step representation into drawable line-segment
// arrays, doubling each interior switch time and extending the last value to
// End. The offset is added to every value so stacked traces stay readable.
// Presentation helper only; the engine never calls it.
func (s *BooleanTimeSeries) PlotData(offset float64) ([]float64, []float64) {
	val := func(b bool) float64 {
		if b {
			return 1 + offset
		}
		return offset
	}

	plotT := []float64{s.T[0]}
	plotY := []float64{val(s.Y[0])}
	for i := 1; i < len(s.T); i++ {
		plotT = append(plotT, s.T[i], s.T[i])
		plotY = append(plotY, val(s.Y[i-1]), val(s.Y[i]))
	}
	if s.eps.Less(s.T[len(s.T)-1], s.End) {
		plotT = append(plotT, s.End)
		plotY = append(plotY, val(s.Y[len(s.Y)-1]))
	}
	return plotT, plotY
}
