package common

import "errors"

var (
	// ErrNotFound is returned when a record is not present in the current view.
	ErrNotFound = errors.New("not found")

	// Validation errors raised before a request is sent.
	ErrValidation = errors.New("validation error")

	// ErrCancelled is returned when the user declines a confirmation prompt.
	ErrCancelled = errors.New("cancelled by user")

	// ErrInvalidToken is returned for a token that cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")
)
