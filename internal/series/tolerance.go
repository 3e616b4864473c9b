package series

import "math"

// Tolerance is the numeric policy for comparing time values. Two times are
// considered equal when they differ by at most Abs plus Rel scaled by the
// larger magnitude. Every simulation owns its own Tolerance value; there is
// no shared package-level epsilon.
type Tolerance struct {
	Rel float64
	Abs float64
}

// DefaultTolerance returns the policy used when a caller does not supply one.
func DefaultTolerance() Tolerance {
	return Tolerance{Rel: 1e-9, Abs: 1e-12}
}

// Eq reports whether a and b are equal within the tolerance.
func (tl Tolerance) Eq(a, b float64) bool {
	return math.Abs(a-b) <= tl.Abs+tl.Rel*math.Max(math.Abs(a), math.Abs(b))
}

// Less reports whether a is before b beyond the tolerance.
func (tl Tolerance) Less(a, b float64) bool {
	return a < b && !tl.Eq(a, b)
}

// LessEq reports whether a is before or tolerance-equal to b.
func (tl Tolerance) LessEq(a, b float64) bool {
	return a < b || tl.Eq(a, b)
}
