package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProjectRepository_Search(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.Put(ctx, newTestProject("p1", "Rehabilitation piscine", "2024-017"))
	require.NoError(t, err)
	_, err = repo.Put(ctx, newTestProject("p2", "Extension college", "2023-112"))
	require.NoError(t, err)

	results, err := repo.Search(ctx, "pisc", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "p1", results[0].ID)

	results, err = repo.Search(ctx, "2023", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "p2", results[0].ID)

	results, err = repo.Search(ctx, "gare", 10)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestProjectRepository_SearchOperatorsAreLiteral(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.Put(ctx, newTestProject("p1", "Ecole NOT maternelle", ""))
	require.NoError(t, err)

	results, err := repo.Search(ctx, `ecole "NOT`, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = repo.Search(ctx, "   ", 10)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestFTSQuery(t *testing.T) {
	require.Equal(t, `"groupe"* "scolaire"*`, ftsQuery(" groupe  scolaire "))
	require.Equal(t, `"say"* """hi"""*`, ftsQuery(`say "hi"`))
}
