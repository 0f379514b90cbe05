package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	// ErrUnavailable means the store is refusing calls, e.g. an open breaker.
	ErrUnavailable = errors.New("storage unavailable")
)
