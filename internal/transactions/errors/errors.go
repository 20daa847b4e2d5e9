package errors

import "errors"

var (
	ErrNotFound  = errors.New("transaction not found")
	ErrInvalidID = errors.New("invalid transaction id")

	// ErrLockHeld means another capacity-affecting operation on the same trip
	// is in flight.
	ErrLockHeld = errors.New("trip lock already held")
)
