package eeg

import "errors"

// Error taxonomy for the correction engine. Structural contract violations
// are returned to the caller and abort the run; numerically degenerate
// situations are recovered locally and surfaced through Diagnostics instead.
var (
	// ErrBadSignal indicates a Signal that violates its construction
	// invariants (non-positive rate, ragged channels, duplicate names).
	ErrBadSignal = errors.New("invalid signal")

	// ErrBadTriggers indicates an empty, unsorted or duplicated trigger list.
	ErrBadTriggers = errors.New("invalid trigger set")

	// ErrInvalidReference indicates a reference trigger index out of range.
	ErrInvalidReference = errors.New("invalid reference trigger")

	// ErrInsufficientData indicates a window that would exceed the signal
	// boundary where the contract requires a full window.
	ErrInsufficientData = errors.New("insufficient data around trigger")

	// ErrInvalidTemplateShape indicates an externally supplied template
	// matrix whose shape does not match the epochs it should correct.
	ErrInvalidTemplateShape = errors.New("template shape mismatch")
)
