package session

import (
	"context"

	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
)

// DocumentStore loads and saves whole project documents.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*project.Document, error)
	Put(ctx context.Context, proj *project.Project) (*project.Document, error)
}

// LockClient manages the advisory edit lock of a project.
type LockClient interface {
	Acquire(ctx context.Context, projectID, owner string) (*lock.Lock, error)
	Heartbeat(ctx context.Context, projectID, owner string) (*lock.Lock, error)
	Release(ctx context.Context, projectID, owner string) error
}
