// Package solver implements the event-driven Boolean Delay Equation engine:
// variables switch between true and false at discrete times, and each
// variable's value at time t is a pure function of every variable's value at
// t minus one of a fixed set of delays. The solver discovers exactly the
// times at which the output could change and evaluates the transition
// function only there.
package solver

import (
	"fmt"

	"github.com/san-kum/bdesim/internal/series"
)

// TransitionFunc computes the next state vector from delayed state values.
// z is indexed by delay then by variable, so z[1][0] is variable 0 seen
// through delay 1. It must be pure: same inputs, same output, no side
// effects, and it must not retain or mutate its argument slices.
type TransitionFunc func(z [][]bool) []bool

// ForcedTransitionFunc additionally receives z2, the forcing inputs seen
// through the same delays, indexed by delay then by forcing input.
type ForcedTransitionFunc func(z, z2 [][]bool) []bool

// Solver owns one simulation setup. Independent Solver instances share
// nothing and may run concurrently; a single Solve call is a tight
// sequential loop with no I/O and no cancellation points.
type Solver struct {
	fn       TransitionFunc
	forcedFn ForcedTransitionFunc

	delays    []float64
	histories []*series.BooleanTimeSeries
	forcing   []*series.BooleanTimeSeries
	eps       series.Tolerance
}

// New builds a solver without forcing inputs. The simulation start is the
// histories' shared end time.
func New(fn TransitionFunc, delays []float64, histories []*series.BooleanTimeSeries) (*Solver, error) {
	return NewWithTolerance(fn, delays, histories, series.DefaultTolerance())
}

// NewWithTolerance is New with an explicit time-comparison policy.
func NewWithTolerance(fn TransitionFunc, delays []float64, histories []*series.BooleanTimeSeries, eps series.Tolerance) (*Solver, error) {
	s := &Solver{fn: fn, delays: delays, histories: histories, eps: eps}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewForced builds a solver whose transition function also reads forcing
// inputs: externally supplied series that join the delayed lookups but are
// never computed.
func NewForced(fn ForcedTransitionFunc, delays []float64, histories, forcing []*series.BooleanTimeSeries) (*Solver, error) {
	return NewForcedWithTolerance(fn, delays, histories, forcing, series.DefaultTolerance())
}

// NewForcedWithTolerance is NewForced with an explicit time-comparison policy.
func NewForcedWithTolerance(fn ForcedTransitionFunc, delays []float64, histories, forcing []*series.BooleanTimeSeries, eps series.Tolerance) (*Solver, error) {
	s := &Solver{forcedFn: fn, delays: delays, histories: histories, forcing: forcing, eps: eps}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Solver) validate() error {
	if len(s.delays) == 0 {
		return ErrNoDelays
	}
	for i, d := range s.delays {
		if d < 0 {
			return fmt.Errorf("%w: delay %d is %g", ErrNegativeDelay, i, d)
		}
	}
	if len(s.histories) == 0 {
		return ErrNoHistories
	}

	start := s.histories[0].Start()
	end := s.histories[0].End
	for i, h := range s.histories {
		if !s.eps.Eq(h.Start(), start) {
			return fmt.Errorf("%w: history %d starts at %g, want %g", ErrMisalignedStart, i, h.Start(), start)
		}
		if !s.eps.Eq(h.End, end) {
			return fmt.Errorf("%w: history %d ends at %g, want %g", ErrMisalignedEnd, i, h.End, end)
		}
		if s.eps.Eq(h.T[len(h.T)-1], h.End) {
			return fmt.Errorf("%w: history %d switches at its end %g", ErrHistoryEndsOnSwitch, i, h.End)
		}
	}
	for i, f := range s.forcing {
		if !s.eps.Eq(f.Start(), start) {
			return fmt.Errorf("%w: forcing input %d starts at %g, want %g", ErrMisalignedStart, i, f.Start(), start)
		}
	}
	return nil
}

// Solve simulates from the histories' shared end time up to and including
// end, returning one compressed output series per variable with the history
// prepended. Given identical inputs the sequence of transition-function
// evaluations and the committed switch points are exactly reproducible.
func (s *Solver) Solve(end float64) ([]*series.BooleanTimeSeries, error) {
	start := s.histories[0].End
	histStart := s.histories[0].Start()
	if !s.eps.Less(start, end) {
		return nil, fmt.Errorf("%w: start=%g, end=%g", ErrBadWindow, start, end)
	}
	maxDelay := 0.0
	for _, d := range s.delays {
		if d > maxDelay {
			maxDelay = d
		}
	}
	if s.eps.Less(start-maxDelay, histStart) {
		return nil, fmt.Errorf("%w: start=%g, largest delay=%g, history begins at %g",
			ErrShortHistory, start, maxDelay, histStart)
	}
	for i, f := range s.forcing {
		if s.eps.Less(f.End, end) {
			return nil, fmt.Errorf("%w: forcing input %d ends at %g, simulation ends at %g",
				ErrShortForcing, i, f.End, end)
		}
	}

	// The run accumulates on a single merged time axis; per-variable series
	// are split back out at the end.
	resT, resY, err := series.Merge(s.histories)
	if err != nil {
		return nil, err
	}
	var forcedT []float64
	var forcedY [][]bool
	if len(s.forcing) > 0 {
		forcedT, forcedY, err = series.Merge(s.forcing)
		if err != nil {
			return nil, err
		}
	}

	finder := NewCandidateSwitchFinder(s.delays, resT, start, end, forcedT, s.eps)
	nvars := len(s.histories)

	for t, ok := finder.NextTime(); ok; t, ok = finder.NextTime() {
		z := make([][]bool, len(s.delays))
		for i, idx := range finder.indices {
			z[i] = resY[idx]
		}

		var state []bool
		if s.forcedFn != nil {
			z2 := make([][]bool, len(s.delays))
			for i, idx := range finder.forcedIndices {
				z2[i] = forcedY[idx]
			}
			state = s.forcedFn(z, z2)
		} else {
			state = s.fn(z)
		}
		if len(state) != nvars {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrArity, len(state), nvars)
		}

		// Commit only real changes, except that the final instant is always
		// recorded so every output reaches the declared end.
		if !equalStates(state, resY[len(resY)-1]) || s.eps.Eq(t, end) {
			resT = append(resT, t)
			resY = append(resY, cloneState(state))
			finder.AddNewTimes(t, len(resT)-1)
		}
	}

	if !s.eps.Eq(resT[len(resT)-1], end) {
		resT = append(resT, end)
		resY = append(resY, cloneState(resY[len(resY)-1]))
	}

	out, err := series.UnmergeWithTolerance(resT, resY, end, s.eps)
	if err != nil {
		return nil, err
	}
	for i, o := range out {
		o.Label = s.histories[i].Label
	}
	return out, nil
}

func equalStates(a, b []bool) bool {
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

func cloneState(s []bool) []bool {
	c := make([]bool, len(s))
	copy(c, s)
	return c
}
