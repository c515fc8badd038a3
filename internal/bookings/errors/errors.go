package errors

import "errors"

var (
	ErrNotFound  = errors.New("booking not found")
	ErrInvalidID = errors.New("invalid id format")
	ErrSlotTaken = errors.New("slot already taken")
)
