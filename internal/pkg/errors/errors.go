package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when no identity is attached to the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientGems is the business rejection for a gem delta that
	// would take the balance below zero. Callers check for it explicitly;
	// it is an expected outcome, not a failure.
	ErrInsufficientGems = errors.New("insufficient gems")
)
