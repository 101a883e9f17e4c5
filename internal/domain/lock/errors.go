package lock

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLocked indicates the project is locked by another owner.
	ErrLocked = errors.New("project is locked by another user")
	// ErrLockNotFound indicates no lock is held by the given owner.
	ErrLockNotFound = errors.New("lock not found")
	// ErrInvalidInput indicates invalid lock input.
	ErrInvalidInput = errors.New("invalid lock input")
)

// ConflictError reports the current holder of a contested lock.
type ConflictError struct {
	Lock Lock
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("project %s is locked by %s since %s", e.Lock.ProjectID, e.Lock.LockedBy, e.Lock.LockedAt.Format(time.RFC3339))
}

func (e *ConflictError) Unwrap() error {
	return ErrLocked
}
