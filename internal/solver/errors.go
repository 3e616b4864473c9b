package solver

import "errors"

// Domain errors raised at construction or at Solve entry. Nothing fails
// mid-simulation: a run either completes or is rejected before it starts.
var (
	// ErrNoDelays indicates an empty delay sequence.
	ErrNoDelays = errors.New("solver: at least one delay is required")

	// ErrNegativeDelay indicates a delay below zero.
	ErrNegativeDelay = errors.New("solver: delays must be non-negative")

	// ErrNoHistories indicates no state variable histories were supplied.
	ErrNoHistories = errors.New("solver: at least one history is required")

	// ErrMisalignedStart indicates histories or forcing inputs whose first
	// switch points are not all at the shared simulation start time.
	ErrMisalignedStart = errors.New("solver: all histories and forcing inputs must start at the same time")

	// ErrMisalignedEnd indicates histories that do not end at the same time.
	ErrMisalignedEnd = errors.New("solver: all histories must end at the same time")

	// ErrHistoryEndsOnSwitch indicates a history whose final switch point
	// coincides with its end, leaving no settled state to simulate from.
	ErrHistoryEndsOnSwitch = errors.New("solver: history may not end on a switch point")

	// ErrBadWindow indicates a simulation end at or before the start.
	ErrBadWindow = errors.New("solver: end must be after the history end")

	// ErrShortHistory indicates a history that does not reach back far
	// enough to serve the largest delay.
	ErrShortHistory = errors.New("solver: history does not span the largest delay")

	// ErrShortForcing indicates a forcing input that ends before the
	// simulation does.
	ErrShortForcing = errors.New("solver: forcing input ends before the simulation end")

	// ErrArity indicates a transition function returning the wrong number
	// of variables.
	ErrArity = errors.New("solver: transition function returned wrong number of variables")
)
