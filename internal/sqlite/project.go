package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db  *DB
	now func() time.Time
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db, now: time.Now}
}

// Get retrieves a project document by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Document, error) {
	query := `
		SELECT document, updated_at
		FROM projects
		WHERE id = ?
	`

	var (
		raw       string
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&raw, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	var proj project.Project
	if err := json.Unmarshal([]byte(raw), &proj); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	return &project.Document{Project: &proj, UpdatedAt: fromMillis(updatedAt)}, nil
}

// List returns every project summary, most recently updated first
func (r *ProjectRepository) List(ctx context.Context) ([]project.Summary, error) {
	query := `
		SELECT id, name, market_ref, lot_analyzed, updated_at
		FROM projects
		ORDER BY updated_at DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// Put inserts or replaces a project document and stamps its update time
func (r *ProjectRepository) Put(ctx context.Context, proj *project.Project) (*project.Document, error) {
	data, err := json.Marshal(proj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	summary := proj.Summary(now)

	query := `
		INSERT INTO projects (id, name, market_ref, lot_analyzed, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			market_ref = excluded.market_ref,
			lot_analyzed = excluded.lot_analyzed,
			document = excluded.document,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		summary.ID,
		summary.Name,
		summary.MarketRef,
		summary.LotAnalyzed,
		string(data),
		now.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	return &project.Document{Project: proj, UpdatedAt: now}, nil
}

// Delete removes a project and any lock held on it
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM locks WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete project lock: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanSummaries(rows *sql.Rows) ([]project.Summary, error) {
	var summaries []project.Summary
	for rows.Next() {
		var (
			summary   project.Summary
			updatedAt int64
		)
		if err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.MarketRef,
			&summary.LotAnalyzed,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summary.UpdatedAt = fromMillis(updatedAt)
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return summaries, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
