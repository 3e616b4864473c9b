package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bdesim/internal/series"
)

func mustSeries(t *testing.T, times []float64, y []bool, end float64) *series.BooleanTimeSeries {
	t.Helper()
	s, err := series.New(times, y, end)
	if err != nil {
		t.Fatalf("series.New failed: %v", err)
	}
	return s
}

func timesEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func valuesEqual(a, b []bool) bool {
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

func checkOutput(t *testing.T, got *series.BooleanTimeSeries, wantT []float64, wantY []bool, wantEnd float64) {
	t.Helper()
	if !timesEqual(got.T, wantT) {
		t.Errorf("times: expected %v, got %v", wantT, got.T)
	}
	if !valuesEqual(got.Y, wantY) {
		t.Errorf("values: expected %v, got %v", wantY, got.Y)
	}
	if math.Abs(got.End-wantEnd) > 1e-9 {
		t.Errorf("end: expected %g, got %g", wantEnd, got.End)
	}
}

func negate(z [][]bool) []bool { return []bool{!z[0][0]} }

func TestSolveNegationLoop(t *testing.T) {
	history := mustSeries(t, []float64{0}, []bool{false}, 1)

	s, err := New(negate, []float64{1}, []*series.BooleanTimeSeries{history})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	out, err := s.Solve(3)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 output, got %d", len(out))
	}
	checkOutput(t, out[0], []float64{0, 1, 2, 3}, []bool{false, true, false, true}, 3)
}

func TestSolveStartIsNotANaturalCandidate(t *testing.T) {
	// The start sentinel must trigger an evaluation even though no seeded
	// event lands at the start time.
	history := mustSeries(t, []float64{0}, []bool{false}, 1.5)

	s, err := New(negate, []float64{1}, []*series.BooleanTimeSeries{history})
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Solve(3)
	if err != nil {
		t.Fatal(err)
	}
	// The terminal repeat at t=3 is value-preserving, so compression
	// removes it; the declared end still reaches 3.
	checkOutput(t, out[0], []float64{0, 1.5, 2.5}, []bool{false, true, false}, 3)
}

func TestSolveTwoVariablesTwoDelays(t *testing.T) {
	// x1(t) = x2(t-1), x2(t) = NOT x1(t-0.5)
	historyA := mustSeries(t, []float64{0, 1.5}, []bool{true, false}, 1.8)
	historyB := mustSeries(t, []float64{0, 0.5}, []bool{true, false}, 1.8)

	fn := func(z [][]bool) []bool { return []bool{z[0][1], !z[1][0]} }

	s, err := New(fn, []float64{1, 0.5}, []*series.BooleanTimeSeries{historyA, historyB})
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Solve(5.2)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(out))
	}
	checkOutput(t, out[0], []float64{0, 1.5, 3, 4.5}, []bool{true, false, true, false}, 5.2)
	checkOutput(t, out[1], []float64{0, 0.5, 2, 3.5, 5}, []bool{true, false, true, false, true}, 5.2)
}

func TestSolveSimultaneousSwitches(t *testing.T) {
	// Equal delays make every candidate a coalesced pair of events.
	historyA := mustSeries(t, []float64{0, 0.5, 1, 1.5}, []bool{true}, 1.7)
	historyB := mustSeries(t, []float64{0, 0.5, 1, 1.5}, []bool{true}, 1.7)

	fn := func(z [][]bool) []bool { return []bool{z[0][1], z[1][0]} }

	s, err := New(fn, []float64{1, 1}, []*series.BooleanTimeSeries{historyA, historyB})
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Solve(3.2)
	if err != nil {
		t.Fatal(err)
	}
	wantT := []float64{0, 0.5, 1, 1.5, 2, 2.5, 3}
	wantY := []bool{true, false, true, false, true, false, true}
	checkOutput(t, out[0], wantT, wantY, 3.2)
	checkOutput(t, out[1], wantT, wantY, 3.2)
}

func TestSolveForcingInput(t *testing.T) {
	history := mustSeries(t, []float64{0, 0.5, 1.5}, []bool{true, false, true}, 1.7)
	forcing := mustSeries(t, []float64{0, 0.5, 1.5, 2, 2.5, 3}, []bool{false, true, false, true, false, true}, 3)

	fn := func(z, z2 [][]bool) []bool { return []bool{z2[0][0]} }

	s, err := NewForced(fn, []float64{0.5}, []*series.BooleanTimeSeries{history}, []*series.BooleanTimeSeries{forcing})
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Solve(3)
	if err != nil {
		t.Fatal(err)
	}
	checkOutput(t, out[0],
		[]float64{0, 0.5, 1.5, 2, 2.5, 3},
		[]bool{true, false, true, false, true, false}, 3)
}

func TestSolveForcedIndexTracking(t *testing.T) {
	// Regression guard: with a delay that never lines up with the forcing
	// grid, index bookkeeping must stay exact. A naive rounding scheme got
	// this wrong in an earlier design.
	history := mustSeries(t, []float64{0}, []bool{true}, 0.5)
	forcing := mustSeries(t, []float64{0, 0.5, 1, 1.5, 2, 2.5, 3}, []bool{false}, 3)

	fn := func(z, z2 [][]bool) []bool { return []bool{z2[0][0]} }

	s, err := NewForced(fn, []float64{0.3}, []*series.BooleanTimeSeries{history}, []*series.BooleanTimeSeries{forcing})
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Solve(3)
	if err != nil {
		t.Fatal(err)
	}
	checkOutput(t, out[0],
		[]float64{0, 0.5, 0.8, 1.3, 1.8, 2.3, 2.8},
		[]bool{true, false, true, false, true, false, true}, 3)
}

func TestSolveNeverRecordsEqualConsecutiveStates(t *testing.T) {
	history := mustSeries(t, []float64{0}, []bool{false}, 1)

	s, err := New(negate, []float64{1}, []*series.BooleanTimeSeries{history})
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Solve(10)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range out {
		for i := 1; i < len(o.Y); i++ {
			if o.Y[i] == o.Y[i-1] {
				t.Fatalf("consecutive equal states at %g and %g", o.T[i-1], o.T[i])
			}
		}
	}
}

func TestSolveDeterministic(t *testing.T) {
	build := func() *Solver {
		historyA := mustSeries(t, []float64{0, 1.5}, []bool{true, false}, 1.8)
		historyB := mustSeries(t, []float64{0, 0.5}, []bool{true, false}, 1.8)
		fn := func(z [][]bool) []bool { return []bool{z[0][1], !z[1][0]} }
		s, err := New(fn, []float64{1, 0.5}, []*series.BooleanTimeSeries{historyA, historyB})
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	first, err := build().Solve(200)
	if err != nil {
		t.Fatal(err)
	}
	second, err := build().Solve(200)
	if err != nil {
		t.Fatal(err)
	}
	for v := range first {
		if !timesEqual(first[v].T, second[v].T) || !valuesEqual(first[v].Y, second[v].Y) {
			t.Fatalf("variable %d not reproducible", v)
		}
	}
}

func TestConstructionErrors(t *testing.T) {
	okHistory := func() *series.BooleanTimeSeries { return mustSeries(t, []float64{0}, []bool{false}, 1) }

	t.Run("negative delay", func(t *testing.T) {
		_, err := New(negate, []float64{-1}, []*series.BooleanTimeSeries{okHistory()})
		if !errors.Is(err, ErrNegativeDelay) {
			t.Errorf("expected %v, got %v", ErrNegativeDelay, err)
		}
	})

	t.Run("no delays", func(t *testing.T) {
		_, err := New(negate, nil, []*series.BooleanTimeSeries{okHistory()})
		if !errors.Is(err, ErrNoDelays) {
			t.Errorf("expected %v, got %v", ErrNoDelays, err)
		}
	})

	t.Run("no histories", func(t *testing.T) {
		_, err := New(negate, []float64{1}, nil)
		if !errors.Is(err, ErrNoHistories) {
			t.Errorf("expected %v, got %v", ErrNoHistories, err)
		}
	})

	t.Run("misaligned history starts", func(t *testing.T) {
		a := mustSeries(t, []float64{0}, []bool{false}, 1)
		b := mustSeries(t, []float64{0.5}, []bool{false}, 1)
		_, err := New(func(z [][]bool) []bool { return []bool{z[0][0], z[0][1]} },
			[]float64{1}, []*series.BooleanTimeSeries{a, b})
		if !errors.Is(err, ErrMisalignedStart) {
			t.Errorf("expected %v, got %v", ErrMisalignedStart, err)
		}
	})

	t.Run("misaligned forcing start", func(t *testing.T) {
		h := mustSeries(t, []float64{0.5}, []bool{false}, 1)
		f := mustSeries(t, []float64{0, 1}, []bool{false}, 3)
		_, err := NewForced(func(z, z2 [][]bool) []bool { return []bool{z2[0][0]} },
			[]float64{0.3}, []*series.BooleanTimeSeries{h}, []*series.BooleanTimeSeries{f})
		if !errors.Is(err, ErrMisalignedStart) {
			t.Errorf("expected %v, got %v", ErrMisalignedStart, err)
		}
	})

	t.Run("misaligned history ends", func(t *testing.T) {
		a := mustSeries(t, []float64{0}, []bool{false}, 1)
		b := mustSeries(t, []float64{0}, []bool{false}, 2)
		_, err := New(func(z [][]bool) []bool { return []bool{z[0][0], z[0][1]} },
			[]float64{1}, []*series.BooleanTimeSeries{a, b})
		if !errors.Is(err, ErrMisalignedEnd) {
			t.Errorf("expected %v, got %v", ErrMisalignedEnd, err)
		}
	})

	t.Run("history ends on a switch", func(t *testing.T) {
		h := mustSeries(t, []float64{0, 1}, []bool{false, true}, 1)
		_, err := New(negate, []float64{1}, []*series.BooleanTimeSeries{h})
		if !errors.Is(err, ErrHistoryEndsOnSwitch) {
			t.Errorf("expected %v, got %v", ErrHistoryEndsOnSwitch, err)
		}
	})
}

func TestSolveErrors(t *testing.T) {
	t.Run("end before start", func(t *testing.T) {
		h := mustSeries(t, []float64{0}, []bool{false}, 2)
		s, err := New(negate, []float64{1}, []*series.BooleanTimeSeries{h})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Solve(1.7); !errors.Is(err, ErrBadWindow) {
			t.Errorf("expected %v, got %v", ErrBadWindow, err)
		}
	})

	t.Run("end equals start", func(t *testing.T) {
		h := mustSeries(t, []float64{0}, []bool{false}, 2)
		s, err := New(negate, []float64{1}, []*series.BooleanTimeSeries{h})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Solve(2); !errors.Is(err, ErrBadWindow) {
			t.Errorf("expected %v, got %v", ErrBadWindow, err)
		}
	})

	t.Run("history shorter than largest delay", func(t *testing.T) {
		h := mustSeries(t, []float64{0}, []bool{false}, 0.5)
		s, err := New(negate, []float64{1}, []*series.BooleanTimeSeries{h})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Solve(3); !errors.Is(err, ErrShortHistory) {
			t.Errorf("expected %v, got %v", ErrShortHistory, err)
		}
	})

	t.Run("forcing ends before simulation end", func(t *testing.T) {
		h := mustSeries(t, []float64{0}, []bool{false}, 1)
		f := mustSeries(t, []float64{0, 0.5}, []bool{false}, 2)
		s, err := NewForced(func(z, z2 [][]bool) []bool { return []bool{z2[0][0]} },
			[]float64{1}, []*series.BooleanTimeSeries{h}, []*series.BooleanTimeSeries{f})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Solve(3); !errors.Is(err, ErrShortForcing) {
			t.Errorf("expected %v, got %v", ErrShortForcing, err)
		}
	})

	t.Run("wrong arity from transition function", func(t *testing.T) {
		h := mustSeries(t, []float64{0}, []bool{false}, 1)
		s, err := New(func(z [][]bool) []bool { return []bool{true, false} },
			[]float64{1}, []*series.BooleanTimeSeries{h})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Solve(3); !errors.Is(err, ErrArity) {
			t.Errorf("expected %v, got %v", ErrArity, err)
		}
	})
}

func TestSolveEvaluationCount(t *testing.T) {
	// Every coalesced candidate in [start, end] is evaluated exactly once.
	history := mustSeries(t, []float64{0}, []bool{false}, 1)

	calls := 0
	fn := func(z [][]bool) []bool {
		calls++
		return []bool{!z[0][0]}
	}
	s, err := New(fn, []float64{1}, []*series.BooleanTimeSeries{history})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Solve(3); err != nil {
		t.Fatal(err)
	}
	// Candidates: the sentinel at 1 (coalesced with 0+1), then 2 and 3 from
	// the committed switches.
	if calls != 3 {
		t.Errorf("expected 3 evaluations, got %d", calls)
	}
}
