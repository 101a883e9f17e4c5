package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/negotiation"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/domain/session"
	"github.com/rpggio/tenderscore/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var openedAt = time.Date(2024, 4, 8, 9, 30, 0, 0, time.UTC)

func storedDocument() *project.Document {
	p := project.New("p1", project.Info{Name: "Mediatheque"})
	lot := p.AddLot("Menuiseries", "05", openedAt)
	_, _ = lot.AddCompany("Alu Concept")
	_, _ = lot.AddCompany("Bois & Co")
	_, _ = lot.AddCriterion(project.CriterionSpec{ID: "prix", Weight: 60})
	_, _ = lot.AddCriterion(project.CriterionSpec{ID: "memo", Weight: 40})
	return &project.Document{Project: p, UpdatedAt: openedAt}
}

func newService(docs *mocks.DocumentStore, locks *mocks.LockClient, interval time.Duration) *session.Service {
	return session.NewService(docs, locks, nil,
		session.WithHeartbeatInterval(interval),
		session.WithClock(func() time.Time { return openedAt }),
	)
}

func TestSessionService_OpenAndClose(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentStore{}
	locks := &mocks.LockClient{}

	locks.On("Acquire", ctx, "p1", "alice").Return(&lock.Lock{ProjectID: "p1", LockedBy: "alice"}, nil)
	docs.On("Get", ctx, "p1").Return(storedDocument(), nil)
	locks.On("Release", ctx, "p1", "alice").Return(nil).Once()

	sess, err := newService(docs, locks, time.Hour).Open(ctx, "p1", session.OpenOptions{Owner: "alice"})
	require.NoError(t, err)
	require.Equal(t, session.StatusActive, sess.Status())
	require.True(t, sess.Info().HoldsLock)
	require.Equal(t, "Mediatheque", sess.Project().Info.Name)

	require.NoError(t, sess.Close(ctx))
	require.NoError(t, sess.Close(ctx))
	require.Equal(t, session.StatusClosed, sess.Status())
	locks.AssertExpectations(t)

	err = sess.Mutate(func(*project.Project) error { return nil })
	require.ErrorIs(t, err, session.ErrSessionClosed)
	require.ErrorIs(t, sess.Save(ctx), session.ErrSessionClosed)
}

func TestSessionService_OpenConflict(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentStore{}
	locks := &mocks.LockClient{}

	conflict := &lock.ConflictError{Lock: lock.Lock{ProjectID: "p1", LockedBy: "bob", LockedAt: openedAt}}
	locks.On("Acquire", ctx, "p1", "alice").Return(nil, conflict)

	_, err := newService(docs, locks, time.Hour).Open(ctx, "p1", session.OpenOptions{Owner: "alice"})
	var got *lock.ConflictError
	require.ErrorAs(t, err, &got)
	require.Equal(t, "bob", got.Lock.LockedBy)
	docs.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSessionService_OpenForceWithoutLock(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentStore{}
	locks := &mocks.LockClient{}

	conflict := &lock.ConflictError{Lock: lock.Lock{ProjectID: "p1", LockedBy: "bob", LockedAt: openedAt}}
	locks.On("Acquire", ctx, "p1", "alice").Return(nil, conflict)
	docs.On("Get", ctx, "p1").Return(storedDocument(), nil)

	sess, err := newService(docs, locks, time.Hour).Open(ctx, "p1", session.OpenOptions{Owner: "alice", Force: true})
	require.NoError(t, err)
	require.False(t, sess.Info().HoldsLock)

	require.NoError(t, sess.Close(ctx))
	locks.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_OpenMissingProjectReleasesLock(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentStore{}
	locks := &mocks.LockClient{}

	locks.On("Acquire", ctx, "p1", "alice").Return(&lock.Lock{}, nil)
	docs.On("Get", ctx, "p1").Return(nil, project.ErrProjectNotFound)
	locks.On("Release", ctx, "p1", "alice").Return(nil)

	_, err := newService(docs, locks, time.Hour).Open(ctx, "p1", session.OpenOptions{Owner: "alice"})
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	locks.AssertExpectations(t)
}

func TestSession_MutateIsAtomic(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentStore{}
	locks := &mocks.LockClient{}
	locks.On("Acquire", ctx, "p1", "alice").Return(&lock.Lock{}, nil)
	locks.On("Release", ctx, "p1", "alice").Return(nil)
	docs.On("Get", ctx, "p1").Return(storedDocument(), nil)

	sess, err := newService(docs, locks, time.Hour).Open(ctx, "p1", session.OpenOptions{Owner: "alice"})
	require.NoError(t, err)
	defer sess.Close(ctx)

	before := sess.Project()
	err = sess.MutateLot("", func(lot *project.Lot) error {
		require.NoError(t, lot.RenameCompany(1, "Renamed"))
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")
	require.Same(t, before, sess.Project())
	require.Equal(t, "Alu Concept", sess.Project().Lots[0].Companies[0].Name)
	require.False(t, sess.Info().Dirty)

	err = sess.MutateLot("", func(lot *project.Lot) error {
		return negotiation.SetPriceEntry(lot, lot.CurrentVersionID, project.PriceEntry{CompanyID: 1, DPGF1: 1000})
	})
	require.NoError(t, err)
	require.True(t, sess.Info().Dirty)
	require.Equal(t, "Alu Concept", before.Lots[0].Companies[0].Name)
	require.Empty(t, before.Lots[0].Versions[0].Prices)

	result, err := sess.Score("")
	require.NoError(t, err)
	first, ok := result.Company(1)
	require.True(t, ok)
	require.Equal(t, 60.0, first.PriceScore)

	view, err := sess.View("")
	require.NoError(t, err)
	require.Len(t, view.Companies, 2)
}

func TestSession_SaveAttributesSession(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentStore{}
	locks := &mocks.LockClient{}
	locks.On("Acquire", ctx, "p1", "alice").Return(&lock.Lock{}, nil)
	locks.On("Release", ctx, "p1", "alice").Return(nil)
	docs.On("Get", ctx, "p1").Return(storedDocument(), nil)

	sess, err := newService(docs, locks, time.Hour).Open(ctx, "p1", session.OpenOptions{Owner: "alice"})
	require.NoError(t, err)
	defer sess.Close(ctx)

	savedAt := openedAt.Add(time.Minute)
	docs.On("Put", mock.MatchedBy(func(c context.Context) bool {
		return session.IDFromContext(c) == sess.ID()
	}), mock.Anything).Return(&project.Document{UpdatedAt: savedAt}, nil)

	require.NoError(t, sess.Mutate(func(p *project.Project) error {
		p.Info.Notes = "second round planned"
		return nil
	}))
	require.NoError(t, sess.Save(ctx))
	require.False(t, sess.Info().Dirty)
	require.Equal(t, savedAt, sess.Info().UpdatedAt)
	docs.AssertExpectations(t)
}

func TestSession_HeartbeatLossMarksStale(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentStore{}
	locks := &mocks.LockClient{}
	locks.On("Acquire", ctx, "p1", "alice").Return(&lock.Lock{}, nil)
	docs.On("Get", ctx, "p1").Return(storedDocument(), nil)
	locks.On("Heartbeat", ctx, "p1", "alice").Return(&lock.Lock{}, nil).Once()
	locks.On("Heartbeat", ctx, "p1", "alice").Return(nil, lock.ErrLockNotFound).Once()

	sess, err := newService(docs, locks, time.Hour).Open(ctx, "p1", session.OpenOptions{Owner: "alice"})
	require.NoError(t, err)

	require.NoError(t, sess.Heartbeat(ctx))
	require.Equal(t, openedAt, sess.Info().LastHeartbeat)

	require.ErrorIs(t, sess.Heartbeat(ctx), lock.ErrLockNotFound)
	require.Equal(t, session.StatusStale, sess.Status())
	require.False(t, sess.Info().HoldsLock)

	// A stale session no longer heartbeats and does not release someone else's lock.
	require.NoError(t, sess.Heartbeat(ctx))
	require.NoError(t, sess.Close(ctx))
	locks.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	locks.AssertNumberOfCalls(t, "Heartbeat", 2)
}

func TestSession_HeartbeatLoop(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentStore{}
	locks := &mocks.LockClient{}
	locks.On("Acquire", ctx, "p1", "alice").Return(&lock.Lock{}, nil)
	docs.On("Get", ctx, "p1").Return(storedDocument(), nil)
	locks.On("Heartbeat", mock.Anything, "p1", "alice").Return(nil, lock.ErrLockNotFound)

	sess, err := newService(docs, locks, 5*time.Millisecond).Open(ctx, "p1", session.OpenOptions{Owner: "alice"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sess.Status() == session.StatusStale
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, sess.Close(ctx))
}

func TestSessionService_Create(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentStore{}
	locks := &mocks.LockClient{}
	locks.On("Acquire", ctx, "new-project", "alice").Return(&lock.Lock{}, nil)
	locks.On("Release", ctx, "new-project", "alice").Return(nil)
	docs.On("Put", ctx, mock.MatchedBy(func(p *project.Project) bool {
		return p.ID == "new-project" && len(p.Lots) == 2 && p.Info.Owner == "alice"
	})).Return(func(_ context.Context, p *project.Project) *project.Document {
		return &project.Document{Project: p, UpdatedAt: openedAt}
	}, nil)

	sess, err := newService(docs, locks, time.Hour).Create(ctx, session.CreateRequest{
		ID:   "new-project",
		Info: project.Info{Name: "Gymnase"},
		Lots: []session.LotSpec{{Label: "Terrassement", Number: "01"}, {Label: "Gros oeuvre", Number: "02"}},
	}, session.OpenOptions{Owner: "alice"})
	require.NoError(t, err)
	defer sess.Close(ctx)

	p := sess.Project()
	require.Equal(t, "new-project", p.ID)
	require.Equal(t, p.Lots[0].ID, p.CurrentLotID)
	require.Equal(t, project.InitialVersion, p.Lots[1].Versions[0].Label)
}

func TestSessionService_OpenValidation(t *testing.T) {
	svc := newService(&mocks.DocumentStore{}, &mocks.LockClient{}, time.Hour)
	_, err := svc.Open(context.Background(), "p1", session.OpenOptions{})
	require.ErrorIs(t, err, session.ErrInvalidInput)
}
