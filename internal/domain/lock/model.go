package lock

import "time"

// DefaultTTL is how long a lock survives without a heartbeat.
const DefaultTTL = 30 * time.Minute

// Lock is an advisory exclusive-edit claim on a project.
type Lock struct {
	ProjectID string    `json:"projectId"`
	LockedBy  string    `json:"lockedBy"`
	LockedAt  time.Time `json:"lockedAt"`
}

// Info is the lock listing representation keyed by project id.
type Info struct {
	LockedBy string    `json:"lockedBy"`
	LockedAt time.Time `json:"lockedAt"`
}

// Stale reports whether the lock is older than ttl at now.
func (l Lock) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(l.LockedAt) > ttl
}

// AcquireResult describes the outcome of a conditional acquire.
type AcquireResult struct {
	// Acquired is false when another owner holds a fresh lock.
	Acquired bool
	// Holder is the lock in place after the attempt.
	Holder Lock
	// Previous is the lock that was replaced, if any.
	Previous *Lock
}
