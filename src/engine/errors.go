package engine

import "errors"

// Error taxonomy for the allocation path. Detection-layer gaps never
// surface as errors; they degrade to nil/empty results instead.
var (
	// ErrInvalidInput rejects malformed requests (empty goal id list,
	// negative available funds) before any computation.
	ErrInvalidInput = errors.New("invalid allocation input")

	// ErrGoalsNotFound means no active goal owned by the caller matched the
	// requested ids. Nothing has been written when this is returned.
	ErrGoalsNotFound = errors.New("no eligible goals found")

	// ErrInsufficientFunds is the safety net for the funds invariant: the
	// computed allocations would exceed available funds. It aborts the whole
	// batch with zero writes and should never occur outside a logic defect.
	ErrInsufficientFunds = errors.New("allocations exceed available funds")
)
