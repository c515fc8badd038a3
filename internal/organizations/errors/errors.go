package errors

import "errors"

var (
	ErrNotFound = errors.New("organization not found")

	ErrInvalidID = errors.New("invalid organization ID format")

	ErrTokenTaken = errors.New("calendar token already in use")
)
