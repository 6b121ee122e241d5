// Package services implements the queue engine: the token store, the queue
// selector, and the wait-time estimator. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer. They fall into four kinds: validation
// (bad input, reported and never retried), not-found, authorization (actor
// outside its bound scope), and conflict (the token's actual state no longer
// matches the caller's assumed prior state; the caller may re-read and retry
// once).
package services

import "errors"

var (
	// ErrTokenNotFound indicates that the requested token does not exist.
	ErrTokenNotFound = errors.New("token not found")

	// ErrOfficeNotFound is returned when a booking references an office that
	// does not exist or is not active.
	ErrOfficeNotFound = errors.New("office not found")

	// ErrDepartmentNotFound is returned when a booking references a
	// department that does not exist or belongs to a different office.
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrServiceNotFound is returned when a booking names a service the
	// office does not offer.
	ErrServiceNotFound = errors.New("service not offered by this office")

	// ErrInvalidInput is returned when a booking or document payload is
	// malformed (bad date, empty slot, empty label).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotPermitted is returned when the actor is outside its bound
	// office/department scope, or a citizen touches a token that is not
	// theirs. Never retried automatically.
	ErrNotPermitted = errors.New("actor not permitted to act on this token")

	// ErrStaleStatus is the conflict error: the token's current status no
	// longer matches the expected pre-state of a transition. The caller
	// should re-read the token and may retry once.
	ErrStaleStatus = errors.New("token status changed underneath, re-read and retry")

	// ErrInvalidTransition is returned when the requested edge does not
	// exist in the status machine at all (including any transition out of a
	// terminal status).
	ErrInvalidTransition = errors.New("transition not allowed")

	// ErrCounterBusy is returned by call-next when a token in scope is
	// already being served. The official must complete or skip it first.
	ErrCounterBusy = errors.New("counter is busy, complete or skip the current token first")
)
