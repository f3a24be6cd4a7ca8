package booking

import "errors"

var (
	// ErrNotFound is returned when no booking matches the lookup.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned when a status change is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid booking status transition")
)
