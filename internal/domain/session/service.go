package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
)

// DefaultHeartbeatInterval keeps a lock alive well within its TTL.
const DefaultHeartbeatInterval = 5 * time.Minute

// Service opens editing sessions on project documents.
type Service struct {
	docs      DocumentStore
	locks     LockClient
	logger    *slog.Logger
	heartbeat time.Duration
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHeartbeatInterval sets how often open sessions refresh their lock.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new session service.
func NewService(docs DocumentStore, locks LockClient, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		docs:      docs,
		locks:     locks,
		logger:    logger,
		heartbeat: DefaultHeartbeatInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenOptions describes who opens a session and how lock conflicts are handled.
type OpenOptions struct {
	Owner string
	// Force opens the session without the lock when another user holds it.
	Force bool
}

// LotSpec describes a lot of a new project.
type LotSpec struct {
	Label  string
	Number string
}

// CreateRequest describes a new project document.
type CreateRequest struct {
	ID   string
	Info project.Info
	Lots []LotSpec
}

// Open locks a project for owner, loads its document and starts the
// heartbeat. On a lock conflict the *lock.ConflictError is returned unless
// opts.Force is set.
func (s *Service) Open(ctx context.Context, projectID string, opts OpenOptions) (*Session, error) {
	if strings.TrimSpace(projectID) == "" || strings.TrimSpace(opts.Owner) == "" {
		return nil, ErrInvalidInput
	}
	holdsLock, err := s.acquire(ctx, projectID, opts)
	if err != nil {
		return nil, err
	}

	doc, err := s.docs.Get(ctx, projectID)
	if err != nil {
		s.releaseQuietly(ctx, projectID, opts.Owner, holdsLock)
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return s.start(doc, opts.Owner, holdsLock), nil
}

// Create builds a new project document, saves it and opens a session on it.
func (s *Service) Create(ctx context.Context, req CreateRequest, opts OpenOptions) (*Session, error) {
	if strings.TrimSpace(opts.Owner) == "" {
		return nil, ErrInvalidInput
	}
	proj := project.New(req.ID, req.Info)
	if proj.Info.Owner == "" {
		proj.Info.Owner = opts.Owner
	}
	now := s.now()
	for _, spec := range req.Lots {
		proj.AddLot(spec.Label, spec.Number, now)
	}

	holdsLock, err := s.acquire(ctx, proj.ID, opts)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Put(ctx, proj)
	if err != nil {
		s.releaseQuietly(ctx, proj.ID, opts.Owner, holdsLock)
		return nil, fmt.Errorf("saving project: %w", err)
	}
	s.logger.Info("project created", "project_id", proj.ID, "owner", opts.Owner)
	return s.start(doc, opts.Owner, holdsLock), nil
}

func (s *Service) acquire(ctx context.Context, projectID string, opts OpenOptions) (bool, error) {
	_, err := s.locks.Acquire(ctx, projectID, opts.Owner)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, lock.ErrLocked) && opts.Force {
		s.logger.Warn("opening project without lock", "project_id", projectID, "owner", opts.Owner, "error", err)
		return false, nil
	}
	return false, err
}

func (s *Service) releaseQuietly(ctx context.Context, projectID, owner string, holdsLock bool) {
	if !holdsLock {
		return
	}
	if err := s.locks.Release(ctx, projectID, owner); err != nil {
		s.logger.Warn("failed to release lock", "project_id", projectID, "owner", owner, "error", err)
	}
}

func (s *Service) start(doc *project.Document, owner string, holdsLock bool) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		id:        uuid.NewString(),
		owner:     owner,
		docs:      s.docs,
		locks:     s.locks,
		logger:    s.logger,
		now:       s.now,
		proj:      doc.Project,
		updatedAt: doc.UpdatedAt,
		status:    StatusActive,
		holdsLock: holdsLock,
		openedAt:  s.now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	sess.projectID = doc.Project.ID
	if holdsLock {
		go sess.heartbeatLoop(ctx, s.heartbeat)
	} else {
		close(sess.done)
	}
	s.logger.Debug("session opened", "session_id", sess.id, "project_id", sess.projectID, "owner", owner, "holds_lock", holdsLock)
	return sess
}
