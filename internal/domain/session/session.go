package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/domain/scoring"
)

// Session is one user's editing context on a project document. All edits
// go through Mutate so readers always see a consistent document.
type Session struct {
	id        string
	projectID string
	owner     string

	docs   DocumentStore
	locks  LockClient
	logger *slog.Logger
	now    func() time.Time

	mu            sync.Mutex
	proj          *project.Project
	updatedAt     time.Time
	status        SessionStatus
	holdsLock     bool
	dirty         bool
	openedAt      time.Time
	lastHeartbeat time.Time

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// ID returns the session id used to attribute saves.
func (s *Session) ID() string {
	return s.id
}

// Project returns the current document snapshot. Callers must not modify
// it; use Mutate instead.
func (s *Session) Project() *project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proj
}

// Status reports whether the session is active, stale or closed.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Info describes the session state.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:            s.id,
		ProjectID:     s.projectID,
		Owner:         s.owner,
		Status:        s.status,
		HoldsLock:     s.holdsLock,
		Dirty:         s.dirty,
		OpenedAt:      s.openedAt,
		LastHeartbeat: s.lastHeartbeat,
		UpdatedAt:     s.updatedAt,
	}
}

// Mutate applies fn to a copy of the document and swaps the copy in only
// when fn succeeds.
func (s *Session) Mutate(fn func(*project.Project) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusClosed {
		return ErrSessionClosed
	}
	next, err := s.proj.Clone()
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	s.proj = next
	s.dirty = true
	return nil
}

// MutateLot applies fn to one lot; an empty lotID selects the current lot.
func (s *Session) MutateLot(lotID string, fn func(*project.Lot) error) error {
	return s.Mutate(func(p *project.Project) error {
		lot, err := lotOf(p, lotID)
		if err != nil {
			return err
		}
		return fn(lot)
	})
}

// Score computes the ranking of a lot's current version.
func (s *Session) Score(lotID string) (scoring.Result, error) {
	lot, err := lotOf(s.Project(), lotID)
	if err != nil {
		return scoring.Result{}, err
	}
	return scoring.ComputeCurrent(lot), nil
}

// View builds the export view of a lot's current version.
func (s *Session) View(lotID string) (scoring.LotView, error) {
	lot, err := lotOf(s.Project(), lotID)
	if err != nil {
		return scoring.LotView{}, err
	}
	version, err := lot.CurrentVersion()
	if err != nil {
		return scoring.LotView{}, err
	}
	return scoring.View(lot, version), nil
}

// Save writes the document back to the store.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	proj := s.proj
	stale := s.status == StatusStale
	s.mu.Unlock()

	if stale {
		s.logger.Warn("saving without lock", "session_id", s.id, "project_id", s.projectID)
	}
	doc, err := s.docs.Put(ContextWithID(ctx, s.id), proj)
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}

	s.mu.Lock()
	s.updatedAt = doc.UpdatedAt
	if s.proj == proj {
		s.dirty = false
	}
	s.mu.Unlock()
	return nil
}

// Heartbeat refreshes the lock once. Losing the lock marks the session stale.
func (s *Session) Heartbeat(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusActive || !s.holdsLock {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	_, err := s.locks.Heartbeat(ctx, s.projectID, s.owner)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if errors.Is(err, lock.ErrLockNotFound) && s.status == StatusActive {
			s.status = StatusStale
			s.holdsLock = false
			s.logger.Warn("lock lost, session is stale", "session_id", s.id, "project_id", s.projectID)
		}
		return err
	}
	s.lastHeartbeat = s.now()
	return nil
}

// Close stops the heartbeat and releases the lock. Closing twice is a no-op.
func (s *Session) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done

		s.mu.Lock()
		holdsLock := s.holdsLock
		s.status = StatusClosed
		s.holdsLock = false
		s.mu.Unlock()

		if holdsLock {
			if rerr := s.locks.Release(ctx, s.projectID, s.owner); rerr != nil {
				err = fmt.Errorf("releasing lock: %w", rerr)
			}
		}
		s.logger.Debug("session closed", "session_id", s.id, "project_id", s.projectID)
	})
	return err
}

func (s *Session) heartbeatLoop(ctx context.Context, interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Heartbeat(ctx); err != nil {
				if errors.Is(err, lock.ErrLockNotFound) {
					return
				}
				if ctx.Err() == nil {
					s.logger.Warn("heartbeat failed", "session_id", s.id, "project_id", s.projectID, "error", err)
				}
			}
		}
	}
}

func lotOf(p *project.Project, lotID string) (*project.Lot, error) {
	if lotID == "" {
		return p.CurrentLot()
	}
	return p.Lot(lotID)
}
