package solver

import (
	"context"
	"sync"

	"github.com/san-kum/bdesim/internal/series"
)

// SweepResult holds the outputs of one solve within a delay sweep.
type SweepResult struct {
	Value   float64
	Outputs []*series.BooleanTimeSeries
	Err     error
}

// DelaySweep solves the same system once per value in values, substituting
// each into delay slot index. Every run builds its own Solver through the
// supplied factory, so nothing is shared between goroutines and no locking
// is needed. A single solve is never interrupted; the context is only
// consulted before each run starts.
func DelaySweep(ctx context.Context, build func(delays []float64) (*Solver, error), delays []float64, index int, values []float64, end float64) []SweepResult {
	results := make([]SweepResult, len(values))

	var wg sync.WaitGroup
	for i, v := range values {
		wg.Add(1)
		go func(i int, v float64) {
			defer wg.Done()

			results[i].Value = v
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}

			d := make([]float64, len(delays))
			copy(d, delays)
			d[index] = v

			s, err := build(d)
			if err != nil {
				results[i].Err = err
				return
			}
			results[i].Outputs, results[i].Err = s.Solve(end)
		}(i, v)
	}
	wg.Wait()

	return results
}
