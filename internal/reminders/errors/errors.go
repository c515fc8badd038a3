package errors

import "errors"

var (
	ErrNotFound  = errors.New("reminder not found")
	ErrInvalidID = errors.New("invalid id format")
)
