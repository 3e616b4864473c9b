package series

import "fmt"

// Merge combines several series onto one time axis. The result times are the
// union of all input switch times and each result row holds every input's
// active value at that time. All inputs must share the same start time.
// Comparisons use the first input's tolerance.
func Merge(list []*BooleanTimeSeries) ([]float64, [][]bool, error) {
	if len(list) == 0 {
		return nil, nil, ErrEmpty
	}
	eps := list[0].eps
	start := list[0].T[0]
	for _, s := range list {
		if !eps.Eq(s.T[0], start) {
			return nil, nil, fmt.Errorf("%w: starts %g and %g differ", ErrMisaligned, start, s.T[0])
		}
	}

	idx := make([]int, len(list))
	cur := make([]bool, len(list))
	for k, s := range list {
		cur[k] = s.Y[0]
	}

	resT := []float64{start}
	resY := [][]bool{cloneRow(cur)}

	for {
		// Next switch time over all inputs that still have one.
		minT := 0.0
		found := false
		for k, s := range list {
			if idx[k]+1 >= len(s.T) {
				continue
			}
			next := s.T[idx[k]+1]
			if !found || next < minT {
				minT = next
				found = true
			}
		}
		if !found {
			break
		}
		// Advance every input switching at (tolerance-equal to) this time.
		for k, s := range list {
			if idx[k]+1 < len(s.T) && eps.Eq(s.T[idx[k]+1], minT) {
				idx[k]++
				cur[k] = s.Y[idx[k]]
			}
		}
		resT = append(resT, minT)
		resY = append(resY, cloneRow(cur))
	}

	return resT, resY, nil
}

// Unmerge splits a merged time axis and value rows back into one compressed
// series per column.
func Unmerge(t []float64, y [][]bool, end float64) ([]*BooleanTimeSeries, error) {
	return UnmergeWithTolerance(t, y, end, DefaultTolerance())
}

// UnmergeWithTolerance is Unmerge with an explicit time-comparison policy.
func UnmergeWithTolerance(t []float64, y [][]bool, end float64, eps Tolerance) ([]*BooleanTimeSeries, error) {
	if len(t) == 0 || len(y) != len(t) {
		return nil, fmt.Errorf("%w: %d times, %d rows", ErrShapeMismatch, len(t), len(y))
	}
	n := len(y[0])
	out := make([]*BooleanTimeSeries, n)
	for v := 0; v < n; v++ {
		col := make([]bool, len(y))
		for i := range y {
			if len(y[i]) != n {
				return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShapeMismatch, i, len(y[i]), n)
			}
			col[i] = y[i][v]
		}
		s, err := NewWithTolerance(t, col, end, eps)
		if err != nil {
			return nil, err
		}
		out[v] = s.Compress()
	}
	return out, nil
}

// HammingDistance is the total time during which the two signals disagree.
// Both series must cover the same [start, end] range.
func (s *BooleanTimeSeries) HammingDistance(other *BooleanTimeSeries) (float64, error) {
	if !s.eps.Eq(s.T[0], other.T[0]) || !s.eps.Eq(s.End, other.End) {
		return 0, fmt.Errorf("%w: ranges [%g, %g] and [%g, %g] differ",
			ErrMisaligned, s.T[0], s.End, other.T[0], other.End)
	}
	t, y, err := Merge([]*BooleanTimeSeries{s, other})
	if err != nil {
		return 0, err
	}
	total := 0.0
	for i := range t {
		if y[i][0] == y[i][1] {
			continue
		}
		next := s.End
		if i+1 < len(t) {
			next = t[i+1]
		}
		total += next - t[i]
	}
	return total, nil
}

func cloneRow(row []bool) []bool {
	c := make([]bool, len(row))
	copy(c, row)
	return c
}
