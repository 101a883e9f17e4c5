package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/activity"
	"github.com/rpggio/tenderscore/internal/repository"
)

// Service coordinates advisory project locks.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
	ttl        time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the staleness threshold.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
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

// NewService creates a new lock service.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:       repo,
		activities: activities,
		logger:     logger,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured staleness threshold.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Acquire takes the lock on a project for owner. It succeeds when the
// project is unlocked, already locked by owner, or its lock is stale.
func (s *Service) Acquire(ctx context.Context, projectID, owner string) (*Lock, error) {
	if err := validate(projectID, owner); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	res, err := s.repo.Acquire(ctx, Lock{ProjectID: projectID, LockedBy: owner, LockedAt: now}, now.Add(-s.ttl))
	if err != nil {
		lockOperations.WithLabelValues("acquire", "error").Inc()
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !res.Acquired {
		lockOperations.WithLabelValues("acquire", "conflict").Inc()
		s.logActivity(ctx, projectID, activity.TypeLockConflict,
			fmt.Sprintf("%s denied, held by %s", owner, res.Holder.LockedBy))
		return nil, &ConflictError{Lock: res.Holder}
	}

	lockOperations.WithLabelValues("acquire", "ok").Inc()
	if res.Previous != nil && res.Previous.LockedBy != owner {
		s.logger.Info("stale lock taken over", "project_id", projectID, "owner", owner, "previous_owner", res.Previous.LockedBy)
		s.logActivity(ctx, projectID, activity.TypeLockTakenOver,
			fmt.Sprintf("%s took over stale lock from %s", owner, res.Previous.LockedBy))
	} else if res.Previous == nil {
		s.logActivity(ctx, projectID, activity.TypeLockAcquired, fmt.Sprintf("%s acquired lock", owner))
	}
	holder := res.Holder
	return &holder, nil
}

// Release removes the lock. With a non-empty owner only that owner's lock
// is removed. Releasing a missing lock succeeds.
func (s *Service) Release(ctx context.Context, projectID, owner string) error {
	if strings.TrimSpace(projectID) == "" {
		return ErrInvalidInput
	}
	removed, err := s.repo.Release(ctx, projectID, owner)
	if err != nil {
		lockOperations.WithLabelValues("release", "error").Inc()
		return fmt.Errorf("releasing lock: %w", err)
	}
	lockOperations.WithLabelValues("release", "ok").Inc()
	if removed {
		summary := "lock released"
		if owner != "" {
			summary = fmt.Sprintf("%s released lock", owner)
		}
		s.logActivity(ctx, projectID, activity.TypeLockReleased, summary)
	}
	return nil
}

// Heartbeat refreshes a lock held by owner. It never creates a lock.
func (s *Service) Heartbeat(ctx context.Context, projectID, owner string) (*Lock, error) {
	if err := validate(projectID, owner); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.repo.Refresh(ctx, projectID, owner, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			lockOperations.WithLabelValues("heartbeat", "not_found").Inc()
			return nil, ErrLockNotFound
		}
		lockOperations.WithLabelValues("heartbeat", "error").Inc()
		return nil, fmt.Errorf("refreshing lock: %w", err)
	}
	lockOperations.WithLabelValues("heartbeat", "ok").Inc()
	return &Lock{ProjectID: projectID, LockedBy: owner, LockedAt: now}, nil
}

// List evicts stale locks and returns the remaining ones by project id.
func (s *Service) List(ctx context.Context) (map[string]Info, error) {
	evicted, err := s.repo.DeleteStale(ctx, s.now().UTC().Add(-s.ttl))
	if err != nil {
		return nil, fmt.Errorf("evicting stale locks: %w", err)
	}
	for _, l := range evicted {
		lockEvictions.Inc()
		s.logger.Debug("stale lock evicted", "project_id", l.ProjectID, "owner", l.LockedBy)
		s.logActivity(ctx, l.ProjectID, activity.TypeLockEvicted, fmt.Sprintf("stale lock of %s evicted", l.LockedBy))
	}

	locks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing locks: %w", err)
	}
	out := make(map[string]Info, len(locks))
	for _, l := range locks {
		out[l.ProjectID] = Info{LockedBy: l.LockedBy, LockedAt: l.LockedAt}
	}
	return out, nil
}

func validate(projectID, owner string) error {
	if strings.TrimSpace(projectID) == "" || strings.TrimSpace(owner) == "" {
		return ErrInvalidInput
	}
	return nil
}

func (s *Service) logActivity(ctx context.Context, projectID string, kind activity.ActivityType, summary string) {
	if s.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{
		ProjectID:    projectID,
		ActivityType: kind,
		Summary:      summary,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log lock activity", "project_id", projectID, "type", kind, "error", err)
	}
}
