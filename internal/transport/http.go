package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rpggio/tenderscore/internal/domain/activity"
	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/domain/session"
)

// UpdatedAtHeader carries the exact server timestamp of a document.
const UpdatedAtHeader = "X-Updated-At"

// ProjectService stores project documents.
type ProjectService interface {
	Get(ctx context.Context, id string) (*project.Document, error)
	List(ctx context.Context, query string) ([]project.Summary, error)
	Put(ctx context.Context, sessionID, id string, proj *project.Project) (*project.Document, error)
	Delete(ctx context.Context, sessionID, id string) error
}

// LockService coordinates project locks.
type LockService interface {
	Acquire(ctx context.Context, projectID, owner string) (*lock.Lock, error)
	Release(ctx context.Context, projectID, owner string) error
	Heartbeat(ctx context.Context, projectID, owner string) (*lock.Lock, error)
	List(ctx context.Context) (map[string]lock.Info, error)
}

// ActivityService reads the audit log.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services groups the handlers' dependencies.
type Services struct {
	Projects ProjectService
	Locks    LockService
	Activity ActivityService
}

// Server wires HTTP handlers.
type Server struct {
	projects ProjectService
	locks    LockService
	activity ActivityService
	logger   *slog.Logger
}

// SaveResponse acknowledges a PUT.
type SaveResponse struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LockRequest is the body of lock acquisition and heartbeat calls.
type LockRequest struct {
	UserID string `json:"userId"`
}

// NewServer creates an HTTP server router with middleware.
func NewServer(svc Services, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogging(logger))
	r.Use(SessionMiddleware)

	srv := &Server{
		projects: svc.Projects,
		locks:    svc.Locks,
		activity: svc.Activity,
		logger:   logger,
	}

	r.Get("/health", srv.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", srv.handleListProjects)
		r.Get("/{id}", srv.handleGetProject)
		r.Put("/{id}", srv.handlePutProject)
		r.Delete("/{id}", srv.handleDeleteProject)
		r.Get("/{id}/activity", srv.handleActivity)
	})

	r.Route("/locks", func(r chi.Router) {
		r.Get("/", srv.handleListLocks)
		r.Post("/{projectID}", srv.handleAcquireLock)
		r.Delete("/{projectID}", srv.handleReleaseLock)
		r.Post("/{projectID}/heartbeat", srv.handleHeartbeat)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.projects.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	doc, err := s.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Last-Modified", doc.UpdatedAt.UTC().Format(http.TimeFormat))
	w.Header().Set(UpdatedAtHeader, doc.UpdatedAt.UTC().Format(time.RFC3339Nano))
	writeJSON(w, http.StatusOK, doc.Project)
}

func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	var proj project.Project
	if err := decodeJSON(w, r, &proj); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	doc, err := s.projects.Put(r.Context(), session.IDFromContext(r.Context()), id, &proj)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set(UpdatedAtHeader, doc.UpdatedAt.UTC().Format(time.RFC3339Nano))
	writeJSON(w, http.StatusOK, SaveResponse{ID: id, UpdatedAt: doc.UpdatedAt})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	err := s.projects.Delete(r.Context(), session.IDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	opts := activity.ListActivityOptions{ProjectID: chi.URLParam(r, "id")}
	q := r.URL.Query()
	var err error
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		writeBadRequest(w, "invalid limit")
		return
	}
	if opts.Offset, err = intParam(q.Get("offset")); err != nil {
		writeBadRequest(w, "invalid offset")
		return
	}
	if t := q.Get("type"); t != "" {
		kind := activity.ActivityType(t)
		opts.ActivityType = &kind
	}

	entries, err := s.activity.GetRecentActivity(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListLocks(w http.ResponseWriter, r *http.Request) {
	locks, err := s.locks.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locks)
}

func (s *Server) handleAcquireLock(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.lockUser(w, r)
	if !ok {
		return
	}
	l, err := s.locks.Acquire(r.Context(), chi.URLParam(r, "projectID"), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleReleaseLock(w http.ResponseWriter, r *http.Request) {
	err := s.locks.Release(r.Context(), chi.URLParam(r, "projectID"), r.URL.Query().Get("userId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.lockUser(w, r)
	if !ok {
		return
	}
	l, err := s.locks.Heartbeat(r.Context(), chi.URLParam(r, "projectID"), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) lockUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req LockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return "", false
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeBadRequest(w, "userId is required")
		return "", false
	}
	return req.UserID, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := MapError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, apiErr.Status, apiErr.Body)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, project.ErrInvalidInput
	}
	return n, nil
}
