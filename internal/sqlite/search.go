package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpggio/tenderscore/internal/domain/project"
)

// Search performs a full-text search over project names and market references
func (r *ProjectRepository) Search(ctx context.Context, query string, limit int) ([]project.Summary, error) {
	match := ftsQuery(query)
	if match == "" {
		return []project.Summary{}, nil
	}

	baseQuery := `
		SELECT p.id, p.name, p.market_ref, p.lot_analyzed, p.updated_at
		FROM projects_fts
		JOIN projects p ON p.rowid = projects_fts.rowid
		WHERE projects_fts MATCH ?
		ORDER BY bm25(projects_fts), p.updated_at DESC
	`
	args := []interface{}{match}
	if limit > 0 {
		baseQuery += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// ftsQuery turns free text into a prefix match on every term. Terms are
// quoted so FTS5 operators typed by users are matched literally.
func ftsQuery(input string) string {
	terms := strings.Fields(input)
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ReplaceAll(term, `"`, `""`)
		parts = append(parts, `"`+term+`"*`)
	}
	return strings.Join(parts, " ")
}
