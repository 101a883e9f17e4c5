package session

import "time"

// SessionStatus represents the lifecycle status of an editing session
type SessionStatus string

const (
	// StatusActive means the session holds (or deliberately overrode) the lock.
	StatusActive SessionStatus = "active"
	// StatusStale means the lock was lost, typically after a heartbeat went unanswered.
	StatusStale  SessionStatus = "stale"
	StatusClosed SessionStatus = "closed"
)

// Info is a point-in-time description of a session.
type Info struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"projectId"`
	Owner         string        `json:"owner"`
	Status        SessionStatus `json:"status"`
	HoldsLock     bool          `json:"holdsLock"`
	Dirty         bool          `json:"dirty"`
	OpenedAt      time.Time     `json:"openedAt"`
	LastHeartbeat time.Time     `json:"lastHeartbeat,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
