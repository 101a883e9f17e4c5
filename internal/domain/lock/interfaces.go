package lock

import (
	"context"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/activity"
)

// Repository persists locks. Acquire and Refresh must be atomic.
type Repository interface {
	// Acquire writes lock when no lock exists, the existing one is owned by
	// lock.LockedBy, or it was taken before staleBefore.
	Acquire(ctx context.Context, lock Lock, staleBefore time.Time) (AcquireResult, error)
	// Refresh updates the timestamp of a lock owned by owner; repository.ErrNotFound otherwise.
	Refresh(ctx context.Context, projectID, owner string, now time.Time) error
	// Release removes the lock. An empty owner removes any lock.
	Release(ctx context.Context, projectID, owner string) (bool, error)
	List(ctx context.Context) ([]Lock, error)
	// DeleteStale removes and returns locks taken before staleBefore.
	DeleteStale(ctx context.Context, staleBefore time.Time) ([]Lock, error)
}

// ActivityRepository records lock events.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
