package errors

import "errors"

var (
	ErrRuleNotFound     = errors.New("availability rule not found")
	ErrBlackoutNotFound = errors.New("blackout date not found")
	ErrInvalidID        = errors.New("invalid id format")
)
