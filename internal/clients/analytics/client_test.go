package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sectorflow/internal/clientdata"
	testingpkg "github.com/aristath/sectorflow/internal/testing"
)

const clustersBody = `[
	{"sector":"Technology","ret_short":0.08,"rel_strength":0.03,"volatility":0.015,"performance":"Outperforming","cluster":2},
	{"sector":"Energy","ret_short":-0.04,"rel_strength":-0.06,"volatility":0.022,"performance":"Underperforming","cluster":0}
]`

const rotationBody = `[
	{"source":"Energy","target":"Technology","weight":0.4},
	{"source":"Utilities","target":"Energy","weight":0.1}
]`

// backend serves fixed bodies and can be switched to failing mode
type backend struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/clusters", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if b.fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(clustersBody))
	})
	mux.HandleFunc("/rotation", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if b.fail.Load() {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(rotationBody))
	})
	return mux
}

func TestClient_FetchesRecords(t *testing.T) {
	b := &backend{}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/"}, nil, zerolog.Nop())

	clusters := c.GetClusterRecords(context.Background())
	require.Len(t, clusters, 2)
	assert.Equal(t, "Technology", clusters[0].Sector)
	require.NotNil(t, clusters[0].Cluster)
	assert.Equal(t, 2.0, *clusters[0].Cluster)

	flows := c.GetFlowRecords(context.Background())
	require.Len(t, flows, 2)
	assert.Equal(t, "Energy", flows[0].Source)
	assert.Equal(t, "Technology", flows[0].Target)
	require.NotNil(t, flows[0].Weight)
	assert.Equal(t, 0.4, *flows[0].Weight)
}

func TestClient_CustomPaths(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/flows", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rotationBody))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RotationPath: "/api/v2/flows"}, nil, zerolog.Nop())
	assert.Len(t, c.GetFlowRecords(context.Background()), 2)
}

func TestClient_FailureWithoutCacheIsEmpty(t *testing.T) {
	b := &backend{}
	b.fail.Store(true)
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil, zerolog.Nop())

	clusters := c.GetClusterRecords(context.Background())
	assert.NotNil(t, clusters)
	assert.Empty(t, clusters)

	flows := c.GetFlowRecords(context.Background())
	assert.NotNil(t, flows)
	assert.Empty(t, flows)
}

func TestClient_UnreachableIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url, Timeout: time.Second}, nil, zerolog.Nop())
	assert.Empty(t, c.GetClusterRecords(context.Background()))
	assert.Empty(t, c.GetFlowRecords(context.Background()))
}

func TestClient_MalformedBodyIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil, zerolog.Nop())
	assert.Empty(t, c.GetFlowRecords(context.Background()))
}

func TestClient_StaleCacheFallback(t *testing.T) {
	b := &backend{}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	repo := testingpkg.NewTestCacheRepo(t)
	c := NewClient(Config{BaseURL: srv.URL}, repo, zerolog.Nop())

	require.Len(t, c.GetClusterRecords(context.Background()), 2)
	require.Len(t, c.GetFlowRecords(context.Background()), 2)

	b.fail.Store(true)

	clusters := c.GetClusterRecords(context.Background())
	require.Len(t, clusters, 2)
	assert.Equal(t, "Energy", clusters[1].Sector)

	flows := c.GetFlowRecords(context.Background())
	require.Len(t, flows, 2)
	assert.Equal(t, "Utilities", flows[1].Source)

	assert.Equal(t, int32(4), b.calls.Load())
}

func TestClient_ExpiredCacheStillServesAsFallback(t *testing.T) {
	b := &backend{}
	b.fail.Store(true)
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	repo := testingpkg.NewTestCacheRepo(t)
	require.NoError(t, repo.Store(clientdata.TableAnalyticsRotation, "/rotation",
		[]map[string]interface{}{{"source": "A", "target": "B", "weight": 1.0}}, -time.Hour))

	c := NewClient(Config{BaseURL: srv.URL}, repo, zerolog.Nop())
	flows := c.GetFlowRecords(context.Background())
	require.Len(t, flows, 1)
	assert.Equal(t, "A", flows[0].Source)
}

func TestClient_CancelledContextIsEmpty(t *testing.T) {
	b := &backend{}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(Config{BaseURL: srv.URL}, nil, zerolog.Nop())
	assert.Empty(t, c.GetClusterRecords(ctx))
}
