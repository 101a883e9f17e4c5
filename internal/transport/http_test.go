package transport_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/tenderscore/internal/domain/activity"
	"github.com/rpggio/tenderscore/internal/domain/lock"
	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/rpggio/tenderscore/internal/testserver"
	"github.com/rpggio/tenderscore/internal/transport"
)

func do(t *testing.T, method, url string, body any, headers ...string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sampleProject(id string) *project.Project {
	p := project.New(id, project.Info{Name: "Groupe scolaire", MarketRef: "2024-017"})
	lot := p.AddLot("Gros oeuvre", "01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	_, _ = lot.AddCompany("Batiplus")
	_, _ = lot.AddCriterion(project.CriterionSpec{ID: "prix", Weight: 40})
	_, _ = lot.AddCriterion(project.CriterionSpec{ID: "memo", Weight: 60})
	return p
}

func TestHTTPServer_Health(t *testing.T) {
	ts := testserver.New(t)

	resp := do(t, http.MethodGet, ts.URL()+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_ProjectRoundTrip(t *testing.T) {
	ts := testserver.New(t)
	url := ts.URL() + "/projects/p1"

	resp := do(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "PROJECT_NOT_FOUND", decode[transport.ErrorResponse](t, resp).Code)

	resp = do(t, http.MethodPut, url, sampleProject("p1"), transport.SessionHeader, "sess-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[transport.SaveResponse](t, resp)
	require.Equal(t, "p1", saved.ID)
	require.False(t, saved.UpdatedAt.IsZero())

	resp = do(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Last-Modified"))
	updatedAt, err := time.Parse(time.RFC3339Nano, resp.Header.Get(transport.UpdatedAtHeader))
	require.NoError(t, err)
	require.True(t, saved.UpdatedAt.Equal(updatedAt))
	got := decode[project.Project](t, resp)
	require.Equal(t, "Groupe scolaire", got.Info.Name)
	require.Len(t, got.Lots, 1)

	resp = do(t, http.MethodGet, ts.URL()+"/projects", nil)
	summaries := decode[[]project.Summary](t, resp)
	require.Len(t, summaries, 1)
	require.Equal(t, "2024-017", summaries[0].MarketRef)

	resp = do(t, http.MethodGet, ts.URL()+"/projects?q=scolaire", nil)
	require.Len(t, decode[[]project.Summary](t, resp), 1)
	resp = do(t, http.MethodGet, ts.URL()+"/projects?q=piscine", nil)
	require.Empty(t, decode[[]project.Summary](t, resp))

	resp = do(t, http.MethodGet, url+"/activity", nil)
	entries := decode[[]activity.ActivityEntry](t, resp)
	require.Len(t, entries, 1)
	require.Equal(t, activity.TypeProjectSaved, entries[0].ActivityType)
	require.NotNil(t, entries[0].SessionID)
	require.Equal(t, "sess-1", *entries[0].SessionID)

	resp = do(t, http.MethodDelete, url, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodDelete, url, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_PutRejectsBadDocuments(t *testing.T) {
	ts := testserver.New(t)

	resp := do(t, http.MethodPut, ts.URL()+"/projects/other", sampleProject("p1"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "ID_MISMATCH", decode[transport.ErrorResponse](t, resp).Code)

	invalid := sampleProject("p1")
	invalid.Lots[0].CurrentVersionID = "missing"
	resp = do(t, http.MethodPut, ts.URL()+"/projects/p1", invalid)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "INVALID_INPUT", decode[transport.ErrorResponse](t, resp).Code)

	req, err := http.NewRequest(http.MethodPut, ts.URL()+"/projects/p1", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	require.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestHTTPServer_Locks(t *testing.T) {
	ts := testserver.New(t)
	url := ts.URL() + "/locks/p1"

	resp := do(t, http.MethodPost, url, transport.LockRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, url, transport.LockRequest{UserID: "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	held := decode[lock.Lock](t, resp)
	require.Equal(t, "alice", held.LockedBy)

	resp = do(t, http.MethodPost, url, transport.LockRequest{UserID: "bob"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	conflict := decode[transport.LockConflictResponse](t, resp)
	require.Equal(t, "alice", conflict.LockedBy)
	require.False(t, conflict.LockedAt.IsZero())

	resp = do(t, http.MethodPost, url+"/heartbeat", transport.LockRequest{UserID: "bob"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, http.MethodPost, url+"/heartbeat", transport.LockRequest{UserID: "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL()+"/locks", nil)
	locks := decode[map[string]lock.Info](t, resp)
	require.Contains(t, locks, "p1")
	require.Equal(t, "alice", locks["p1"].LockedBy)

	resp = do(t, http.MethodDelete, url+"?userId=bob", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodGet, ts.URL()+"/locks", nil)
	require.Contains(t, decode[map[string]lock.Info](t, resp), "p1")

	resp = do(t, http.MethodDelete, url+"?userId=alice", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodGet, ts.URL()+"/locks", nil)
	require.Empty(t, decode[map[string]lock.Info](t, resp))
}

func TestHTTPServer_StaleLockIsTakenOver(t *testing.T) {
	var now atomic.Int64
	now.Store(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC).UnixNano())
	ts := testserver.New(t, testserver.WithClock(func() time.Time { return time.Unix(0, now.Load()).UTC() }))
	url := ts.URL() + "/locks/p1"

	resp := do(t, http.MethodPost, url, transport.LockRequest{UserID: "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	now.Add(int64(lock.DefaultTTL + time.Second))
	resp = do(t, http.MethodPost, url, transport.LockRequest{UserID: "bob"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "bob", decode[lock.Lock](t, resp).LockedBy)
}

func TestHTTPServer_Metrics(t *testing.T) {
	ts := testserver.New(t)
	_ = do(t, http.MethodGet, ts.URL()+"/health", nil)

	resp := do(t, http.MethodGet, ts.URL()+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "tenderscore_http_request_duration_seconds")
}
