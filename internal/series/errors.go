package series

import "errors"

// Domain errors for time series construction and operations.
var (
	// ErrEmpty indicates a series with no switch points.
	ErrEmpty = errors.New("series: at least one switch point is required")

	// ErrNonIncreasing indicates switch times that are not strictly increasing.
	ErrNonIncreasing = errors.New("series: switch times must be strictly increasing")

	// ErrEndBeforeLastSwitch indicates an end time before the final switch point.
	ErrEndBeforeLastSwitch = errors.New("series: end time is before the last switch point")

	// ErrExcessValues indicates more state values than switch times.
	ErrExcessValues = errors.New("series: more values than switch times")

	// ErrBadWindow indicates an inverted or degenerate time window.
	ErrBadWindow = errors.New("series: window end must be after window start")

	// ErrOutOfRange indicates a window that extends beyond the series.
	ErrOutOfRange = errors.New("series: window is outside the series range")

	// ErrMisaligned indicates series that do not share the required start or end time.
	ErrMisaligned = errors.New("series: series are not aligned")

	// ErrShapeMismatch indicates sample arrays of unequal length.
	ErrShapeMismatch = errors.New("series: time and value arrays differ in length")
)
