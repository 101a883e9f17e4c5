package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/repository"
)

// LockRepository implements lock.Repository for SQLite
type LockRepository struct {
	db *DB
}

// NewLockRepository creates a new LockRepository
func NewLockRepository(db *DB) *LockRepository {
	return &LockRepository{db: db}
}

// Acquire writes the lock unless a fresh lock of another owner exists. The
// check and the write are a single conditional upsert.
func (r *LockRepository) Acquire(ctx context.Context, l lock.Lock, staleBefore time.Time) (lock.AcquireResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return lock.AcquireResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	previous, err := getLock(ctx, tx, l.ProjectID)
	if err != nil && err != repository.ErrNotFound {
		return lock.AcquireResult{}, err
	}

	query := `
		INSERT INTO locks (project_id, locked_by, locked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			locked_by = excluded.locked_by,
			locked_at = excluded.locked_at
		WHERE locks.locked_by = excluded.locked_by OR locks.locked_at < ?
	`
	result, err := tx.ExecContext(ctx, query, l.ProjectID, l.LockedBy, l.LockedAt.UnixMilli(), staleBefore.UnixMilli())
	if err != nil {
		return lock.AcquireResult{}, fmt.Errorf("failed to write lock: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return lock.AcquireResult{}, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if previous == nil {
			return lock.AcquireResult{}, repository.ErrConflict
		}
		return lock.AcquireResult{Acquired: false, Holder: *previous}, nil
	}

	if err := tx.Commit(); err != nil {
		return lock.AcquireResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	holder := l
	holder.LockedAt = fromMillis(l.LockedAt.UnixMilli())
	return lock.AcquireResult{Acquired: true, Holder: holder, Previous: previous}, nil
}

// Refresh updates the timestamp of a lock held by owner
func (r *LockRepository) Refresh(ctx context.Context, projectID, owner string, now time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE locks SET locked_at = ? WHERE project_id = ? AND locked_by = ?`,
		now.UnixMilli(), projectID, owner)
	if err != nil {
		return fmt.Errorf("failed to refresh lock: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Release deletes the lock, restricted to owner when given
func (r *LockRepository) Release(ctx context.Context, projectID, owner string) (bool, error) {
	query := `DELETE FROM locks WHERE project_id = ?`
	args := []interface{}{projectID}
	if owner != "" {
		query += " AND locked_by = ?"
		args = append(args, owner)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to release lock: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// List returns every lock
func (r *LockRepository) List(ctx context.Context) ([]lock.Lock, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT project_id, locked_by, locked_at FROM locks ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locks: %w", err)
	}
	defer rows.Close()

	return scanLocks(rows)
}

// DeleteStale removes and returns the locks taken before staleBefore
func (r *LockRepository) DeleteStale(ctx context.Context, staleBefore time.Time) ([]lock.Lock, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT project_id, locked_by, locked_at FROM locks WHERE locked_at < ? ORDER BY project_id`,
		staleBefore.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to select stale locks: %w", err)
	}
	stale, err := scanLocks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(stale) == 0 {
		return stale, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM locks WHERE locked_at < ?`, staleBefore.UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to delete stale locks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return stale, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getLock(ctx context.Context, q queryer, projectID string) (*lock.Lock, error) {
	var (
		l        lock.Lock
		lockedAt int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT project_id, locked_by, locked_at FROM locks WHERE project_id = ?`,
		projectID).Scan(&l.ProjectID, &l.LockedBy, &lockedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lock: %w", err)
	}
	l.LockedAt = fromMillis(lockedAt)
	return &l, nil
}

func scanLocks(rows *sql.Rows) ([]lock.Lock, error) {
	locks := []lock.Lock{}
	for rows.Next() {
		var (
			l        lock.Lock
			lockedAt int64
		)
		if err := rows.Scan(&l.ProjectID, &l.LockedBy, &lockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lock: %w", err)
		}
		l.LockedAt = fromMillis(lockedAt)
		locks = append(locks, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lock rows: %w", err)
	}
	return locks, nil
}
