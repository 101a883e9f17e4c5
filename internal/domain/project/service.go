package project

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

const defaultSearchLimit = 50

// Service handles project document persistence.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, activities: activities, logger: logger}
}

// Get fetches a project document by ID.
func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return doc, nil
}

// List returns project summaries, filtered by a full-text query when given.
func (s *Service) List(ctx context.Context, query string) ([]Summary, error) {
	var (
		summaries []Summary
		err       error
	)
	if q := strings.TrimSpace(query); q != "" {
		summaries, err = s.repo.Search(ctx, q, defaultSearchLimit)
	} else {
		summaries, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	return summaries, nil
}

// Put upserts a full document. The document id must match the addressed id.
func (s *Service) Put(ctx context.Context, sessionID, id string, proj *Project) (*Document, error) {
	if proj == nil || strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	if proj.ID != id {
		return nil, ErrIDMismatch
	}
	if err := Validate(proj); err != nil {
		return nil, err
	}

	doc, err := s.repo.Put(ctx, proj)
	if err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}

	s.logger.Debug("project saved", "project_id", id, "session_id", sessionID)
	s.logActivity(ctx, id, sessionID, activity.TypeProjectSaved, fmt.Sprintf("saved project %s", id))
	return doc, nil
}

// Delete removes a project and its lock. Deleting a missing project succeeds.
func (s *Service) Delete(ctx context.Context, sessionID, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("deleting project: %w", err)
	}

	s.logger.Info("project deleted", "project_id", id, "session_id", sessionID)
	s.logActivity(ctx, id, sessionID, activity.TypeProjectDeleted, fmt.Sprintf("deleted project %s", id))
	return nil
}

func (s *Service) logActivity(ctx context.Context, projectID, sessionID string, kind activity.ActivityType, summary string) {
	if s.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{
		ProjectID:    projectID,
		ActivityType: kind,
		Summary:      summary,
		CreatedAt:    time.Now(),
	}
	if sessionID != "" {
		entry.SessionID = &sessionID
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "project_id", projectID, "error", err)
	}
}
