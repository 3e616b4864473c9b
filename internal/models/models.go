// Package models ships ready-to-run BDE systems: delays, transition rule,
// history, and (where the model calls for it) a generated forcing input.
package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/bdesim/internal/series"
	"github.com/san-kum/bdesim/internal/solver"
)

// System is a complete named BDE network. Histories and Forcing are
// factories so every run gets fresh series.
type System struct {
	Name        string
	Description string
	Variables   []string
	Inputs      []string // forcing input names, empty without forcing

	Delays     []float64
	Transition solver.TransitionFunc
	Forced     solver.ForcedTransitionFunc

	Histories  func() ([]*series.BooleanTimeSeries, error)
	Forcing    func(end float64) ([]*series.BooleanTimeSeries, error)
	DefaultEnd float64
}

// HasForcing reports whether the system uses forcing inputs.
func (sys *System) HasForcing() bool { return sys.Forced != nil }

// NewSolver builds a solver for the system, optionally overriding the
// delays, and returns it together with the forcing inputs it was built with
// (nil for unforced systems).
func (sys *System) NewSolver(delays []float64, end float64) (*solver.Solver, []*series.BooleanTimeSeries, error) {
	if delays == nil {
		delays = sys.Delays
	}
	histories, err := sys.Histories()
	if err != nil {
		return nil, nil, err
	}
	for i, h := range histories {
		if i < len(sys.Variables) {
			h.Label = sys.Variables[i]
		}
	}
	if !sys.HasForcing() {
		s, err := solver.New(sys.Transition, delays, histories)
		return s, nil, err
	}
	forcing, err := sys.Forcing(end)
	if err != nil {
		return nil, nil, err
	}
	for i, f := range forcing {
		if i < len(sys.Inputs) {
			f.Label = sys.Inputs[i]
		}
	}
	s, err := solver.NewForced(sys.Forced, delays, histories, forcing)
	return s, forcing, err
}

// Registry maps model names to systems.
type Registry struct {
	systems map[string]*System
}

// NewRegistry returns a registry populated with the built-in systems.
func NewRegistry() *Registry {
	r := &Registry{systems: make(map[string]*System)}
	for _, sys := range []*System{
		negation(),
		twoLoop(),
		relay(),
		neurospora(),
	} {
		r.systems[sys.Name] = sys
	}
	return r
}

// Get returns the named system.
func (r *Registry) Get(name string) (*System, error) {
	sys, ok := r.systems[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return sys, nil
}

// List returns the registered model names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// negation is the smallest oscillator: one variable that inverts itself
// after one time unit, giving a period-2 square wave.
func negation() *System {
	return &System{
		Name:        "negation",
		Description: "single negation feedback loop",
		Variables:   []string{"x"},
		Delays:      []float64{1},
		Transition: func(z [][]bool) []bool {
			return []bool{!z[0][0]}
		},
		Histories: func() ([]*series.BooleanTimeSeries, error) {
			h, err := series.New([]float64{0}, []bool{false}, 1)
			if err != nil {
				return nil, err
			}
			return []*series.BooleanTimeSeries{h}, nil
		},
		DefaultEnd: 7,
	}
}

// twoLoop couples two variables through different delays:
// x1(t) = x2(t-1), x2(t) = NOT x1(t-0.5).
func twoLoop() *System {
	return &System{
		Name:        "twoloop",
		Description: "two variables cross-coupled through unequal delays",
		Variables:   []string{"x1", "x2"},
		Delays:      []float64{1, 0.5},
		Transition: func(z [][]bool) []bool {
			return []bool{z[0][1], !z[1][0]}
		},
		Histories: func() ([]*series.BooleanTimeSeries, error) {
			a, err := series.New([]float64{0, 1.5}, []bool{true, false}, 1.8)
			if err != nil {
				return nil, err
			}
			b, err := series.New([]float64{0, 0.5}, []bool{true, false}, 1.8)
			if err != nil {
				return nil, err
			}
			return []*series.BooleanTimeSeries{a, b}, nil
		},
		DefaultEnd: 10,
	}
}

// relay copies a square-wave forcing input with a half-unit lag.
func relay() *System {
	return &System{
		Name:        "relay",
		Description: "output tracks a square-wave input through one delay",
		Variables:   []string{"x"},
		Inputs:      []string{"u"},
		Delays:      []float64{0.5},
		Forced: func(z, z2 [][]bool) []bool {
			return []bool{z2[0][0]}
		},
		Histories: func() ([]*series.BooleanTimeSeries, error) {
			h, err := series.New([]float64{0, 0.5, 1.5}, []bool{true, false, true}, 1.7)
			if err != nil {
				return nil, err
			}
			return []*series.BooleanTimeSeries{h}, nil
		},
		Forcing: func(end float64) ([]*series.BooleanTimeSeries, error) {
			u, err := SquareWave(0.5, 0.5, false, end)
			if err != nil {
				return nil, err
			}
			return []*series.BooleanTimeSeries{u}, nil
		},
		DefaultEnd: 3,
	}
}

// neurospora is the one-loop circadian model: frq mRNA activates protein,
// protein represses mRNA, and light can re-activate transcription.
func neurospora() *System {
	return &System{
		Name:        "neurospora",
		Description: "one-loop circadian clock with light forcing",
		Variables:   []string{"mrna", "protein"},
		Inputs:      []string{"light"},
		Delays:      []float64{1, 1, 1},
		Forced: func(z, z2 [][]bool) []bool {
			return []bool{z[0][1], !z[1][0] || z2[2][0]}
		},
		Histories: func() ([]*series.BooleanTimeSeries, error) {
			m, err := series.New([]float64{0}, []bool{true}, 1)
			if err != nil {
				return nil, err
			}
			p, err := series.New([]float64{0}, []bool{false}, 1)
			if err != nil {
				return nil, err
			}
			return []*series.BooleanTimeSeries{m, p}, nil
		},
		Forcing: func(end float64) ([]*series.BooleanTimeSeries, error) {
			u, err := SquareWave(0.25, 0.5, false, end)
			if err != nil {
				return nil, err
			}
			return []*series.BooleanTimeSeries{u}, nil
		},
		DefaultEnd: 5,
	}
}

// SquareWave builds a forcing series over [0, end] that starts at the given
// value, first switches at firstSwitch, and then toggles every halfPeriod.
func SquareWave(firstSwitch, halfPeriod float64, start bool, end float64) (*series.BooleanTimeSeries, error) {
	eps := series.DefaultTolerance()
	if firstSwitch <= 0 || halfPeriod <= 0 {
		return nil, fmt.Errorf("square wave: first switch and half period must be positive")
	}
	t := []float64{0}
	y := []bool{start}
	v := start
	for s := firstSwitch; eps.LessEq(s, end); s += halfPeriod {
		v = !v
		t = append(t, s)
		y = append(y, v)
	}
	return series.NewWithTolerance(t, y, end, eps)
}
