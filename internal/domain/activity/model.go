package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectSaved   ActivityType = "project_saved"
	TypeProjectDeleted ActivityType = "project_deleted"
	TypeLockAcquired   ActivityType = "lock_acquired"
	TypeLockTakenOver  ActivityType = "lock_taken_over"
	TypeLockConflict   ActivityType = "lock_conflict"
	TypeLockReleased   ActivityType = "lock_released"
	TypeLockEvicted    ActivityType = "lock_evicted"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"projectId"`
	SessionID    *string      `json:"sessionId,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"createdAt"`
}
