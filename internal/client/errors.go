package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/transport"
)

// StatusError is a non-2xx answer that has no domain counterpart.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Unwrap lets callers test 400 answers with errors.Is(err, project.ErrInvalidInput).
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusBadRequest {
		return project.ErrInvalidInput
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode == http.StatusConflict {
		var body transport.LockConflictResponse
		if err := json.Unmarshal(data, &body); err == nil && body.LockedBy != "" {
			return &lock.ConflictError{Lock: lock.Lock{LockedBy: body.LockedBy, LockedAt: body.LockedAt}}
		}
	}

	var body transport.ErrorResponse
	_ = json.Unmarshal(data, &body)
	switch {
	case resp.StatusCode == http.StatusNotFound && body.Code == "PROJECT_NOT_FOUND":
		return project.ErrProjectNotFound
	case resp.StatusCode == http.StatusNotFound && body.Code == "LOCK_NOT_FOUND":
		return lock.ErrLockNotFound
	case resp.StatusCode == http.StatusConflict:
		return lock.ErrLocked
	}
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &StatusError{Status: resp.StatusCode, Code: body.Code, Message: msg}
}
