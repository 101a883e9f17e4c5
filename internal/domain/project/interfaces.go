package project

import (
	"context"

	"github.com/rpggio/tenderscore/internal/domain/activity"
)

// Repository provides persistence for project documents.
type Repository interface {
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context) ([]Summary, error)
	Search(ctx context.Context, query string, limit int) ([]Summary, error)
	Put(ctx context.Context, proj *Project) (*Document, error)
	Delete(ctx context.Context, id string) error
}

// ActivityRepository logs document activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
