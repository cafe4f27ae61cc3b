package errors

import "errors"

var (
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIndexOutOfRange is returned when a positional index does not address a stored record.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNotConfigured marks a dependency that was not configured at startup.
	ErrNotConfigured = errors.New("not configured")
)
