// Package client talks to the persistence service over HTTP. It implements
// the document store and lock client that editing sessions depend on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/activity"
	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/domain/session"
	"github.com/rpggio/tenderscore/internal/transport"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

var (
	_ session.DocumentStore = (*Client)(nil)
	_ session.LockClient    = (*Client)(nil)
)

// Client is a typed client of the persistence HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks that the service answers.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// List returns project summaries, optionally filtered by a search query.
func (c *Client) List(ctx context.Context, query string) ([]project.Summary, error) {
	path := "/projects"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out []project.Summary
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return out, nil
}

// Get fetches a project document.
func (c *Client) Get(ctx context.Context, id string) (*project.Document, error) {
	resp, err := c.send(ctx, http.MethodGet, projectPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	defer resp.Body.Close()

	var proj project.Project
	if err := json.NewDecoder(resp.Body).Decode(&proj); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	doc := &project.Document{Project: &proj}
	if raw := resp.Header.Get(transport.UpdatedAtHeader); raw != "" {
		if at, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			doc.UpdatedAt = at
		}
	}
	return doc, nil
}

// Put saves a full project document.
func (c *Client) Put(ctx context.Context, proj *project.Project) (*project.Document, error) {
	if proj == nil {
		return nil, project.ErrInvalidInput
	}
	var out transport.SaveResponse
	if err := c.do(ctx, http.MethodPut, projectPath(proj.ID), proj, &out); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}
	return &project.Document{Project: proj, UpdatedAt: out.UpdatedAt}, nil
}

// Delete removes a project and its lock.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, projectPath(id), nil, nil); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// Activity lists audit entries of a project.
func (c *Client) Activity(ctx context.Context, projectID string, limit, offset int) ([]activity.ActivityEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := projectPath(projectID) + "/activity"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []activity.ActivityEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return out, nil
}

// Locks lists the live locks by project id.
func (c *Client) Locks(ctx context.Context) (map[string]lock.Info, error) {
	var out map[string]lock.Info
	if err := c.do(ctx, http.MethodGet, "/locks", nil, &out); err != nil {
		return nil, fmt.Errorf("listing locks: %w", err)
	}
	return out, nil
}

// Acquire takes the lock of a project for owner. A conflict is returned as
// *lock.ConflictError.
func (c *Client) Acquire(ctx context.Context, projectID, owner string) (*lock.Lock, error) {
	var out lock.Lock
	if err := c.do(ctx, http.MethodPost, lockPath(projectID), transport.LockRequest{UserID: owner}, &out); err != nil {
		var conflict *lock.ConflictError
		if errors.As(err, &conflict) {
			conflict.Lock.ProjectID = projectID
		}
		return nil, err
	}
	return &out, nil
}

// Heartbeat refreshes a lock held by owner.
func (c *Client) Heartbeat(ctx context.Context, projectID, owner string) (*lock.Lock, error) {
	var out lock.Lock
	if err := c.do(ctx, http.MethodPost, lockPath(projectID)+"/heartbeat", transport.LockRequest{UserID: owner}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Release drops the lock of owner. An empty owner drops any lock.
func (c *Client) Release(ctx context.Context, projectID, owner string) error {
	path := lockPath(projectID)
	if owner != "" {
		path += "?userId=" + url.QueryEscape(owner)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// send performs the request and converts non-2xx answers to errors.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if sessionID := session.IDFromContext(ctx); sessionID != "" {
		req.Header.Set(transport.SessionHeader, sessionID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("http request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(resp)
}

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}

func lockPath(projectID string) string {
	return "/locks/" + url.PathEscape(projectID)
}
