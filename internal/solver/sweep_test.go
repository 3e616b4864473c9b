package solver

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/san-kum/bdesim/internal/series"
)

func TestDelaySweep(t *testing.T) {
	build := func(delays []float64) (*Solver, error) {
		h, err := series.New([]float64{0}, []bool{false}, delays[0])
		if err != nil {
			return nil, err
		}
		return New(negate, delays, []*series.BooleanTimeSeries{h})
	}

	values := []float64{0.5, 1, 2}
	results := DelaySweep(context.Background(), build, []float64{1}, 0, values, 8)

	if len(results) != len(values) {
		t.Fatalf("expected %d results, got %d", len(values), len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("run %d failed: %v", i, r.Err)
		}
		if math.Abs(r.Value-values[i]) > 1e-9 {
			t.Errorf("run %d: value order not preserved, got %g", i, r.Value)
		}
		// The negation loop toggles every delay, so the spacing between
		// recorded switches equals the swept delay.
		out := r.Outputs[0]
		if len(out.T) < 3 {
			t.Fatalf("run %d: too few switches: %v", i, out.T)
		}
		gap := out.T[2] - out.T[1]
		if math.Abs(gap-r.Value) > 1e-9 {
			t.Errorf("run %d: expected switch spacing %g, got %g", i, r.Value, gap)
		}
	}
}

func TestDelaySweepReportsPerRunErrors(t *testing.T) {
	build := func(delays []float64) (*Solver, error) {
		h, err := series.New([]float64{0}, []bool{false}, 0.2)
		if err != nil {
			return nil, err
		}
		return New(negate, delays, []*series.BooleanTimeSeries{h})
	}

	// 0.1 fits inside the history; 5 does not.
	results := DelaySweep(context.Background(), build, []float64{0.1}, 0, []float64{0.1, 5}, 3)

	if results[0].Err != nil {
		t.Errorf("short delay should solve: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("delay longer than the history should fail")
	}
}

func TestDelaySweepCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var built atomic.Bool
	build := func(delays []float64) (*Solver, error) {
		built.Store(true)
		return nil, errors.New("unreachable")
	}
	results := DelaySweep(ctx, build, []float64{1}, 0, []float64{0.5, 1}, 3)
	if built.Load() {
		t.Error("build must not run under a cancelled context")
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("run %d: expected context error, got %v", i, r.Err)
		}
	}
}

func TestDelaySweepDoesNotMutateBaseDelays(t *testing.T) {
	base := []float64{1, 0.5}
	build := func(delays []float64) (*Solver, error) {
		a, err := series.New([]float64{0, 1.5}, []bool{true, false}, 1.8)
		if err != nil {
			return nil, err
		}
		b, err := series.New([]float64{0, 0.5}, []bool{true, false}, 1.8)
		if err != nil {
			return nil, err
		}
		fn := func(z [][]bool) []bool { return []bool{z[0][1], !z[1][0]} }
		return New(fn, delays, []*series.BooleanTimeSeries{a, b})
	}

	DelaySweep(context.Background(), build, base, 0, []float64{0.6, 0.8, 1.2}, 5)

	if base[0] != 1 || base[1] != 0.5 {
		t.Errorf("base delays mutated: %v", base)
	}
}
