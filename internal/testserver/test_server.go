package testserver

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/tenderscore/internal/domain/activity"
	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/sqlite"
	"github.com/rpggio/tenderscore/internal/transport"
)

// TestServer runs the persistence service on an in-memory database.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Projects *project.Service
	Locks    *lock.Service
	Activity *activity.Service
}

// Option configures the lock service of a TestServer.
type Option = lock.Option

// WithLockTTL shortens the lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return lock.WithTTL(ttl)
}

// WithClock replaces the lock service clock.
func WithClock(now func() time.Time) Option {
	return lock.WithClock(now)
}

// URL returns the base URL of the running server.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

func New(t *testing.T, opts ...Option) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	projectRepo := sqlite.NewProjectRepository(db)
	lockRepo := sqlite.NewLockRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	projectSvc := project.NewService(projectRepo, activityRepo, nil)
	lockSvc := lock.NewService(lockRepo, activityRepo, nil, opts...)
	activitySvc := activity.NewService(activityRepo, nil)

	server := httptest.NewServer(transport.NewServer(transport.Services{
		Projects: projectSvc,
		Locks:    lockSvc,
		Activity: activitySvc,
	}, nil))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		DB:       db,
		Projects: projectSvc,
		Locks:    lockSvc,
		Activity: activitySvc,
	}
}
