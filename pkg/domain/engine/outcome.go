package engine

import (
	"errors"
	"strings"
)

// OutcomeKind classifies the result of a booking submission. Every kind
// maps to exactly one user-facing message in the presentation layer.
type OutcomeKind int

const (
	// OutcomeCreated means the booking was accepted by the server.
	OutcomeCreated OutcomeKind = iota
	// OutcomeValidationFailure means the submission was rejected locally
	// before any service call (empty selection).
	OutcomeValidationFailure
	// OutcomeConflict means the server reported the slots as no longer
	// available; the caller should reload slots before retrying.
	OutcomeConflict
	// OutcomeInvalidRequest means the request was malformed or failed
	// server-side validation.
	OutcomeInvalidRequest
	// OutcomeServerError means the service failed independently of the
	// request.
	OutcomeServerError
	// OutcomeAuthExpired means the session credential is no longer valid.
	OutcomeAuthExpired
	// OutcomeNetworkError means the request never reached the service.
	OutcomeNetworkError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreated:
		return "created"
	case OutcomeValidationFailure:
		return "validation_failure"
	case OutcomeConflict:
		return "conflict"
	case OutcomeInvalidRequest:
		return "invalid_request"
	case OutcomeServerError:
		return "server_error"
	case OutcomeAuthExpired:
		return "auth_expired"
	case OutcomeNetworkError:
		return "network_error"
	}
	return "unknown"
}

// Outcome is the terminal result of one booking attempt. BookingID is
// set only for OutcomeCreated; Err carries the underlying failure for
// logging, never for display.
type Outcome struct {
	Kind      OutcomeKind
	BookingID int64
	Err       error
}

// statusError is the shape the API client's error values expose. The
// engine classifies through this interface so the mapping stays a pure
// function, testable without any transport.
type statusError interface {
	error
	HTTPStatus() int
	APIMessage() string
	HasFieldErrors() bool
}

// classifyFailure maps a booking-creation error to an outcome kind.
// Errors without an HTTP status never reached the service.
func classifyFailure(err error) OutcomeKind {
	var se statusError
	if !errors.As(err, &se) {
		return OutcomeNetworkError
	}

	msg := strings.ToLower(se.APIMessage())
	switch status := se.HTTPStatus(); {
	case status == 401 || status == 403:
		return OutcomeAuthExpired
	case status == 409:
		return OutcomeConflict
	case status == 400:
		if strings.Contains(msg, "not available") || strings.Contains(msg, "already") {
			return OutcomeConflict
		}
		if se.HasFieldErrors() {
			return OutcomeInvalidRequest
		}
		// A bare 400 on booking creation is almost always a lost race
		// for the slots.
		return OutcomeConflict
	case status == 422:
		return OutcomeInvalidRequest
	default:
		return OutcomeServerError
	}
}
