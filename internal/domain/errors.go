package domain

import "errors"

// Sentinel errors returned by services. Handlers map them to HTTP statuses;
// services wrap them with fmt.Errorf("%w: ...") to attach the offending
// identifier and a human-readable reason.
var (
	// ErrNotFound: tool, request, rental or deposit does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: booking overlap or self-borrow attempt.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState: acting on a request or deposit not in the required state.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrForbidden: actor is not authorized for the action.
	ErrForbidden = errors.New("forbidden")
	// ErrExpired: acting on a lapsed borrow request.
	ErrExpired = errors.New("request expired")
	// ErrValidation: missing or malformed input, detected before any mutation.
	ErrValidation = errors.New("validation error")
)
