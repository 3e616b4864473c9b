// Package analysis computes summary quantities over solved boolean signals:
// duty cycle, switch rate, pairwise hamming distances, and a spectral
// estimate of the dominant oscillation period.
package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/bdesim/internal/series"
)

// Resample samples the step signal uniformly at n points over its full
// range, mapping false/true to -1/+1 so the spectrum has no artificial DC
// offset from the encoding.
func Resample(s *series.BooleanTimeSeries, n int) []float64 {
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	span := s.End - s.Start()
	idx := 0
	for i := 0; i < n; i++ {
		t := s.Start() + span*float64(i)/float64(n-1)
		for idx+1 < len(s.T) && s.T[idx+1] <= t {
			idx++
		}
		if s.Y[idx] {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}
	return out
}

// PowerSpectrum returns the magnitude of each positive-frequency bin.
func PowerSpectrum(samples []float64) []float64 {
	spec := fft.FFTReal(samples)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantPeriod estimates the strongest oscillation period of the signal
// from its power spectrum, sampling at n points. It returns 0 for a signal
// with no oscillatory component.
func DominantPeriod(s *series.BooleanTimeSeries, n int) float64 {
	samples := Resample(s, n)
	ps := PowerSpectrum(samples)

	// Skip the DC bin; a constant signal has nothing else.
	best := 0
	for k := 1; k < len(ps); k++ {
		if best == 0 || ps[k] > ps[best] {
			best = k
		}
	}
	if best == 0 || ps[best] < 1e-9 {
		return 0
	}
	span := s.End - s.Start()
	return span / float64(best)
}

// DutyCycle is the fraction of total time the signal spends true.
func DutyCycle(s *series.BooleanTimeSeries) float64 {
	span := s.End - s.Start()
	if span <= 0 {
		return 0
	}
	on := 0.0
	for i := range s.T {
		if !s.Y[i] {
			continue
		}
		next := s.End
		if i+1 < len(s.T) {
			next = s.T[i+1]
		}
		on += next - s.T[i]
	}
	return on / span
}

// SwitchCount is the number of actual value changes in the signal.
func SwitchCount(s *series.BooleanTimeSeries) int {
	n := 0
	for i := 1; i < len(s.Y); i++ {
		if s.Y[i] != s.Y[i-1] {
			n++
		}
	}
	return n
}

// SwitchRate is the number of value changes per unit time.
func SwitchRate(s *series.BooleanTimeSeries) float64 {
	span := s.End - s.Start()
	if span <= 0 {
		return 0
	}
	return float64(SwitchCount(s)) / span
}

// HammingMatrix computes the pairwise disagreement time between every pair
// of signals. All signals must share the same range.
func HammingMatrix(list []*series.BooleanTimeSeries) ([][]float64, error) {
	m := make([][]float64, len(list))
	for i := range list {
		m[i] = make([]float64, len(list))
	}
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			d, err := list[i].HammingDistance(list[j])
			if err != nil {
				return nil, err
			}
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m, nil
}

// Metrics bundles the standard per-variable quantities for storage.
func Metrics(outputs []*series.BooleanTimeSeries, spectrumSamples int) map[string]float64 {
	metrics := make(map[string]float64)
	for _, o := range outputs {
		name := o.Label
		if name == "" {
			name = "var"
		}
		metrics["duty_"+name] = DutyCycle(o)
		metrics["rate_"+name] = SwitchRate(o)
		metrics["period_"+name] = DominantPeriod(o, spectrumSamples)
	}
	return metrics
}
