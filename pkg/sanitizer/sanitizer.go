// Package sanitizer normalizes free-text client input before validation.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs
// into single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizePhone strips spaces, dashes, dots and parentheses so that phone
// numbers compare and validate consistently. It does not verify E.164 shape;
// that is the validator's job.
func NormalizePhone(phone string) string {
	var result strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch {
		case unicode.IsDigit(r):
			result.WriteRune(r)
		case r == '+' && result.Len() == 0:
			result.WriteRune(r)
		}
	}
	return result.String()
}
