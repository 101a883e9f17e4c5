package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/activity"
	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
)

// LockConflictResponse is returned with 409 when a project is locked by someone else.
type LockConflictResponse struct {
	Error    string    `json:"error"`
	LockedBy string    `json:"lockedBy"`
	LockedAt time.Time `json:"lockedAt"`
}

// APIError pairs an HTTP status with its body.
type APIError struct {
	Status int
	Body   any
}

// MapError maps domain errors to HTTP responses.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var conflict *lock.ConflictError
	if errors.As(err, &conflict) {
		return &APIError{Status: http.StatusConflict, Body: LockConflictResponse{
			Error:    "locked",
			LockedBy: conflict.Lock.LockedBy,
			LockedAt: conflict.Lock.LockedAt,
		}}
	}

	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Status: http.StatusNotFound, Body: ErrorResponse{Error: "project not found", Code: "PROJECT_NOT_FOUND"}}
	case errors.Is(err, lock.ErrLockNotFound):
		return &APIError{Status: http.StatusNotFound, Body: ErrorResponse{Error: "no lock held by this user", Code: "LOCK_NOT_FOUND"}}
	case errors.Is(err, lock.ErrLocked):
		return &APIError{Status: http.StatusConflict, Body: ErrorResponse{Error: "locked", Code: "LOCKED"}}
	case errors.Is(err, project.ErrIDMismatch):
		return &APIError{Status: http.StatusBadRequest, Body: ErrorResponse{Error: err.Error(), Code: "ID_MISMATCH"}}
	case errors.Is(err, project.ErrWeightSum):
		return &APIError{Status: http.StatusBadRequest, Body: ErrorResponse{Error: err.Error(), Code: "WEIGHTS_INVALID"}}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, lock.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Status: http.StatusBadRequest, Body: ErrorResponse{Error: err.Error(), Code: "INVALID_INPUT"}}
	default:
		return &APIError{Status: http.StatusInternalServerError, Body: ErrorResponse{Error: "internal error", Code: "INTERNAL"}}
	}
}
