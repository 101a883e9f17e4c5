package mocks

import (
	"context"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/activity"
	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Document, error) {
	args := m.Called(ctx, id)
	if doc, ok := args.Get(0).(*project.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context) ([]project.Summary, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Search(ctx context.Context, query string, limit int) ([]project.Summary, error) {
	args := m.Called(ctx, query, limit)
	if list, ok := args.Get(0).([]project.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Put(ctx context.Context, proj *project.Project) (*project.Document, error) {
	args := m.Called(ctx, proj)
	if doc, ok := args.Get(0).(*project.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// LockRepository is a mock for lock.Repository.
type LockRepository struct {
	mock.Mock
}

func (m *LockRepository) Acquire(ctx context.Context, l lock.Lock, staleBefore time.Time) (lock.AcquireResult, error) {
	args := m.Called(ctx, l, staleBefore)
	if res, ok := args.Get(0).(lock.AcquireResult); ok {
		return res, args.Error(1)
	}
	return lock.AcquireResult{}, args.Error(1)
}

func (m *LockRepository) Refresh(ctx context.Context, projectID, owner string, now time.Time) error {
	args := m.Called(ctx, projectID, owner, now)
	return args.Error(0)
}

func (m *LockRepository) Release(ctx context.Context, projectID, owner string) (bool, error) {
	args := m.Called(ctx, projectID, owner)
	return args.Bool(0), args.Error(1)
}

func (m *LockRepository) List(ctx context.Context) ([]lock.Lock, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]lock.Lock); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LockRepository) DeleteStale(ctx context.Context, staleBefore time.Time) ([]lock.Lock, error) {
	args := m.Called(ctx, staleBefore)
	if list, ok := args.Get(0).([]lock.Lock); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// DocumentStore is a mock for session.DocumentStore.
type DocumentStore struct {
	mock.Mock
}

func (m *DocumentStore) Get(ctx context.Context, id string) (*project.Document, error) {
	args := m.Called(ctx, id)
	if doc, ok := args.Get(0).(*project.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentStore) Put(ctx context.Context, proj *project.Project) (*project.Document, error) {
	args := m.Called(ctx, proj)
	if fn, ok := args.Get(0).(func(context.Context, *project.Project) *project.Document); ok {
		return fn(ctx, proj), args.Error(1)
	}
	if doc, ok := args.Get(0).(*project.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

// LockClient is a mock for session.LockClient.
type LockClient struct {
	mock.Mock
}

func (m *LockClient) Acquire(ctx context.Context, projectID, owner string) (*lock.Lock, error) {
	args := m.Called(ctx, projectID, owner)
	if l, ok := args.Get(0).(*lock.Lock); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LockClient) Heartbeat(ctx context.Context, projectID, owner string) (*lock.Lock, error) {
	args := m.Called(ctx, projectID, owner)
	if l, ok := args.Get(0).(*lock.Lock); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LockClient) Release(ctx context.Context, projectID, owner string) error {
	args := m.Called(ctx, projectID, owner)
	return args.Error(0)
}
