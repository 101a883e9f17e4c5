package session

import "errors"

var (
	// ErrSessionClosed indicates the session was closed.
	ErrSessionClosed = errors.New("session closed")
	// ErrInvalidInput indicates invalid session input.
	ErrInvalidInput = errors.New("invalid session input")
)
