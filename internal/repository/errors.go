package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a conditional write loses a race
	ErrConflict = errors.New("conflict: entity was modified concurrently")
)
