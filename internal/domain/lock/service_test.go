package lock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/activity"
	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/repository"
	"github.com/rpggio/tenderscore/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 9, 2, 14, 0, 0, 0, time.UTC)

func newService(repo *mocks.LockRepository, activities lock.ActivityRepository) *lock.Service {
	return lock.NewService(repo, activities, nil,
		lock.WithTTL(30*time.Minute),
		lock.WithClock(func() time.Time { return fixedNow }),
	)
}

func activityOfType(kind activity.ActivityType) interface{} {
	return mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == kind
	})
}

func TestLockService_AcquireFresh(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LockRepository{}
	activities := &mocks.ActivityRepository{}

	want := lock.Lock{ProjectID: "p1", LockedBy: "alice", LockedAt: fixedNow}
	repo.On("Acquire", ctx, want, fixedNow.Add(-30*time.Minute)).
		Return(lock.AcquireResult{Acquired: true, Holder: want}, nil)
	activities.On("Log", ctx, activityOfType(activity.TypeLockAcquired)).Return(nil)

	got, err := newService(repo, activities).Acquire(ctx, "p1", "alice")
	require.NoError(t, err)
	require.Equal(t, want, *got)
	repo.AssertExpectations(t)
	activities.AssertExpectations(t)
}

func TestLockService_AcquireConflict(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LockRepository{}
	activities := &mocks.ActivityRepository{}

	holder := lock.Lock{ProjectID: "p1", LockedBy: "bob", LockedAt: fixedNow.Add(-10 * time.Minute)}
	repo.On("Acquire", ctx, mock.Anything, mock.Anything).
		Return(lock.AcquireResult{Acquired: false, Holder: holder}, nil)
	activities.On("Log", ctx, activityOfType(activity.TypeLockConflict)).Return(nil)

	_, err := newService(repo, activities).Acquire(ctx, "p1", "alice")
	require.ErrorIs(t, err, lock.ErrLocked)
	var conflict *lock.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, holder, conflict.Lock)
}

func TestLockService_AcquireTakesOverStale(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LockRepository{}
	activities := &mocks.ActivityRepository{}

	previous := lock.Lock{ProjectID: "p1", LockedBy: "bob", LockedAt: fixedNow.Add(-31 * time.Minute)}
	holder := lock.Lock{ProjectID: "p1", LockedBy: "alice", LockedAt: fixedNow}
	repo.On("Acquire", ctx, holder, mock.Anything).
		Return(lock.AcquireResult{Acquired: true, Holder: holder, Previous: &previous}, nil)
	activities.On("Log", ctx, activityOfType(activity.TypeLockTakenOver)).Return(nil)

	got, err := newService(repo, activities).Acquire(ctx, "p1", "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", got.LockedBy)
	activities.AssertExpectations(t)
}

func TestLockService_ReacquireOwnLockLogsNothing(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LockRepository{}
	activities := &mocks.ActivityRepository{}

	previous := lock.Lock{ProjectID: "p1", LockedBy: "alice", LockedAt: fixedNow.Add(-time.Minute)}
	holder := lock.Lock{ProjectID: "p1", LockedBy: "alice", LockedAt: fixedNow}
	repo.On("Acquire", ctx, holder, mock.Anything).
		Return(lock.AcquireResult{Acquired: true, Holder: holder, Previous: &previous}, nil)

	_, err := newService(repo, activities).Acquire(ctx, "p1", "alice")
	require.NoError(t, err)
	activities.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
}

func TestLockService_AcquireRequiresOwner(t *testing.T) {
	_, err := newService(&mocks.LockRepository{}, nil).Acquire(context.Background(), "p1", " ")
	require.ErrorIs(t, err, lock.ErrInvalidInput)
}

func TestLockService_HeartbeatNotOwned(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LockRepository{}
	repo.On("Refresh", ctx, "p1", "mallory", fixedNow).Return(repository.ErrNotFound)

	_, err := newService(repo, nil).Heartbeat(ctx, "p1", "mallory")
	require.ErrorIs(t, err, lock.ErrLockNotFound)
	repo.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything)
}

func TestLockService_Heartbeat(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LockRepository{}
	repo.On("Refresh", ctx, "p1", "alice", fixedNow).Return(nil)

	got, err := newService(repo, nil).Heartbeat(ctx, "p1", "alice")
	require.NoError(t, err)
	require.Equal(t, fixedNow, got.LockedAt)
}

func TestLockService_ReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LockRepository{}
	activities := &mocks.ActivityRepository{}
	repo.On("Release", ctx, "p1", "alice").Return(true, nil).Once()
	repo.On("Release", ctx, "p1", "alice").Return(false, nil).Once()
	activities.On("Log", ctx, activityOfType(activity.TypeLockReleased)).Return(nil).Once()

	svc := newService(repo, activities)
	require.NoError(t, svc.Release(ctx, "p1", "alice"))
	require.NoError(t, svc.Release(ctx, "p1", "alice"))
	activities.AssertExpectations(t)
}

func TestLockService_ListEvictsStale(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LockRepository{}
	activities := &mocks.ActivityRepository{}

	stale := lock.Lock{ProjectID: "old", LockedBy: "bob", LockedAt: fixedNow.Add(-2 * time.Hour)}
	fresh := lock.Lock{ProjectID: "p1", LockedBy: "alice", LockedAt: fixedNow.Add(-time.Minute)}
	repo.On("DeleteStale", ctx, fixedNow.Add(-30*time.Minute)).Return([]lock.Lock{stale}, nil)
	repo.On("List", ctx).Return([]lock.Lock{fresh}, nil)
	activities.On("Log", ctx, activityOfType(activity.TypeLockEvicted)).Return(nil)

	got, err := newService(repo, activities).List(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]lock.Info{"p1": {LockedBy: "alice", LockedAt: fresh.LockedAt}}, got)
	activities.AssertExpectations(t)
}

func TestLockService_ActivityFailureDoesNotFailAcquire(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LockRepository{}
	activities := &mocks.ActivityRepository{}

	holder := lock.Lock{ProjectID: "p1", LockedBy: "alice", LockedAt: fixedNow}
	repo.On("Acquire", ctx, holder, mock.Anything).Return(lock.AcquireResult{Acquired: true, Holder: holder}, nil)
	activities.On("Log", ctx, mock.Anything).Return(errors.New("disk full"))

	_, err := newService(repo, activities).Acquire(ctx, "p1", "alice")
	require.NoError(t, err)
}

func TestLock_Stale(t *testing.T) {
	l := lock.Lock{LockedAt: fixedNow}
	require.False(t, l.Stale(fixedNow.Add(30*time.Minute), 30*time.Minute))
	require.True(t, l.Stale(fixedNow.Add(30*time.Minute+time.Second), 30*time.Minute))
}
