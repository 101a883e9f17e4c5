package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/negotiation"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/domain/scoring"
	"github.com/rpggio/tenderscore/internal/testserver"
)

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--server", server, "--user", "alice"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func mustRun(t *testing.T, server string, args ...string) string {
	t.Helper()
	out, err := run(t, server, args...)
	require.NoError(t, err, "tenderctl %s", strings.Join(args, " "))
	return out
}

func TestTenderctl_ScoringFlow(t *testing.T) {
	ts := testserver.New(t)
	url := ts.URL()

	require.Equal(t, "p1", mustRun(t, url, "projects", "create", "p1", "--name", "Groupe scolaire", "--lot", "Gros oeuvre:02"))
	require.Equal(t, "1", mustRun(t, url, "companies", "add", "p1", "Alpha"))
	require.Equal(t, "2", mustRun(t, url, "companies", "add", "p1", "Beta"))
	require.Equal(t, "3", mustRun(t, url, "companies", "add", "p1", "Gamma"))
	mustRun(t, url, "criteria", "add", "p1", "prix", "40")
	mustRun(t, url, "criteria", "add", "p1", "memo", "60")
	mustRun(t, url, "prices", "set", "p1", "1", "100")
	mustRun(t, url, "prices", "set", "p1", "2", "120")
	mustRun(t, url, "prices", "set", "p1", "3", "150")
	mustRun(t, url, "notes", "set", "p1", "3", "memo", "very_good")

	var result scoring.Result
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, url, "--json", "score", "p1")), &result))
	require.True(t, result.WeightsValid)
	want := map[int]float64{1: 40, 2: 33.33, 3: 26.67}
	for id, score := range want {
		c, ok := result.Company(id)
		require.True(t, ok)
		require.InDelta(t, score, c.PriceScore, 0.01)
	}
	require.Equal(t, 3, result.Companies[0].CompanyID)

	table := mustRun(t, url, "score", "p1")
	require.Contains(t, table, "Gros oeuvre")
	require.Contains(t, table, "Gamma")

	_, err := run(t, url, "versions", "create", "p1")
	require.ErrorIs(t, err, negotiation.ErrCurrentNotValidated)
	require.ErrorContains(t, err, negotiation.ReasonCurrentNotValidated)

	mustRun(t, url, "decisions", "set", "p1", "3", "awardee")
	mustRun(t, url, "decisions", "set", "p1", "1", "retained")
	mustRun(t, url, "versions", "validate", "p1")

	_, err = run(t, url, "notes", "set", "p1", "1", "memo", "good")
	require.ErrorIs(t, err, negotiation.ErrVersionReadOnly)

	_, err = run(t, url, "versions", "create", "p1")
	require.ErrorIs(t, err, negotiation.ErrAwardeePresent)

	mustRun(t, url, "decisions", "set", "p1", "3", "retained")
	out := mustRun(t, url, "versions", "create", "p1", "--analysis-date", "2024-06-01")
	require.True(t, strings.HasSuffix(out, " V1"), out)

	doc, err := ts.Projects.Get(context.Background(), "p1")
	require.NoError(t, err)
	lot, err := doc.Project.CurrentLot()
	require.NoError(t, err)
	require.Len(t, lot.Versions, 2)
	current, err := lot.CurrentVersion()
	require.NoError(t, err)
	require.ElementsMatch(t, []int{1, 3}, current.Roster)
	require.Equal(t, project.DecisionUndecided, current.Decisions[3])

	require.Contains(t, mustRun(t, url, "projects", "list"), "Groupe scolaire")
	require.Contains(t, mustRun(t, url, "projects", "list", "-q", "scolaire"), "p1")
	mustRun(t, url, "projects", "delete", "p1")
	_, err = run(t, url, "projects", "get", "p1")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestTenderctl_LockedProject(t *testing.T) {
	ts := testserver.New(t)
	url := ts.URL()

	mustRun(t, url, "projects", "create", "p2", "--lot", "Toiture:04")
	mustRun(t, url, "--user", "bob", "locks", "acquire", "p2")
	require.Contains(t, mustRun(t, url, "locks", "list"), "bob")

	_, err := run(t, url, "companies", "add", "p2", "Alpha")
	require.ErrorIs(t, err, lock.ErrLocked)

	_, err = run(t, url, "locks", "heartbeat", "p2")
	require.ErrorIs(t, err, lock.ErrLockNotFound)
	mustRun(t, url, "--user", "bob", "locks", "heartbeat", "p2")

	mustRun(t, url, "locks", "release", "p2")
	require.Contains(t, mustRun(t, url, "locks", "list"), "bob")
	mustRun(t, url, "locks", "release", "p2", "--any")
	require.NotContains(t, mustRun(t, url, "locks", "list"), "bob")

	require.Equal(t, "1", mustRun(t, url, "companies", "add", "p2", "Alpha"))
}

func TestParseLotSpec(t *testing.T) {
	spec, err := parseLotSpec(" Charpente : 03 ")
	require.NoError(t, err)
	require.Equal(t, "Charpente", spec.Label)
	require.Equal(t, "03", spec.Number)

	_, err = parseLotSpec(":03")
	require.Error(t, err)
}
