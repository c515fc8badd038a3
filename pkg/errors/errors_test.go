package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestConstructorsCarryCodeAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"inactive", InactiveResource("Service"), CodeInactiveResource, http.StatusUnprocessableEntity},
		{"not entitled", NotEntitled("subscription expired"), CodeNotEntitled, http.StatusPaymentRequired},
		{"invalid transition", InvalidTransition("booking is not pending"), CodeInvalidTransition, http.StatusConflict},
		{"conflict", Conflict("slot already taken"), CodeConflict, http.StatusConflict},
		{"unauthorized", Unauthorized("not an admin"), CodeUnauthorized, http.StatusForbidden},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.StatusCode() != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.StatusCode())
			}
		})
	}
}

func TestConflictDistinguishableFromOtherFailures(t *testing.T) {
	conflict := Conflict("slot already taken")
	notEntitled := NotEntitled("no active subscription")

	if !IsCode(conflict, CodeConflict) {
		t.Error("Conflict should match CodeConflict")
	}
	if IsCode(notEntitled, CodeConflict) {
		t.Error("NotEntitled must not match CodeConflict")
	}
	if IsCode(errors.New("plain"), CodeConflict) {
		t.Error("plain errors must not match any code")
	}
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to create booking", cause)

	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
	if err.Error() == "" {
		t.Error("expected non-empty error string")
	}
}

func TestAsAppErrorWrapsUnknownErrors(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected %s, got %s", CodeInternal, appErr.Code)
	}
	if !errors.Is(appErr, plain) {
		t.Error("expected the original error to be preserved")
	}

	already := NotFound("Organization")
	if AsAppError(already) != already {
		t.Error("expected AppError to pass through unchanged")
	}
}

func TestToJSONOmitsInternals(t *testing.T) {
	err := NotFoundWithID("Booking", "abc123")
	data := string(err.ToJSON())

	if data == "" {
		t.Fatal("expected JSON output")
	}
	for _, want := range []string{CodeNotFound, "abc123"} {
		if !strings.Contains(data, want) {
			t.Errorf("expected JSON to contain %q, got %s", want, data)
		}
	}
}

