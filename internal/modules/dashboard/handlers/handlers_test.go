package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/sectorflow/internal/domain"
	"github.com/aristath/sectorflow/internal/events"
	"github.com/aristath/sectorflow/internal/modules/dashboard"
	testingpkg "github.com/aristath/sectorflow/internal/testing"
)

func populatedProvider() *testingpkg.MockDataProvider {
	return testingpkg.NewMockDataProvider(testingpkg.NewClusterFixtures(), testingpkg.NewFlowFixtures())
}

func setupRouter(t *testing.T, p dashboard.DataProvider, refresh bool) (chi.Router, *dashboard.Service, *events.Bus) {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	bus := events.NewBus(log)
	service := dashboard.NewService(p, nil, bus, log)
	if refresh {
		_, err := service.Refresh(context.Background())
		require.NoError(t, err)
	}

	handler := NewHandler(service, bus, time.Second, log)
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
		handler.RegisterStreamRoutes(r)
	})
	return router, service, bus
}

func get(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHandleGetClusters(t *testing.T) {
	router, service, _ := setupRouter(t, populatedProvider(), true)

	w, body := get(t, router, "/api/sectors/clusters")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["empty"])
	assert.Equal(t, []interface{}{"Technology", "Energy"}, data["labels"])
	assert.Equal(t, []interface{}{"positive", "negative"}, data["colors"])
	assert.Equal(t, []interface{}{0.08, -0.04}, data["x"])
	assert.NotContains(t, data, "message")

	meta := body["metadata"].(map[string]interface{})
	assert.Equal(t, service.Current().CycleID, meta["cycle_id"])
}

func TestHandleGetClusters_EmptyBeforeRefresh(t *testing.T) {
	router, _, _ := setupRouter(t, populatedProvider(), false)

	w, body := get(t, router, "/api/sectors/clusters")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["empty"])
	assert.Equal(t, NoClusterData, data["message"])
	assert.Equal(t, []interface{}{}, data["labels"])

	meta := body["metadata"].(map[string]interface{})
	assert.NotContains(t, meta, "cycle_id")
}

func TestHandleGetRotation(t *testing.T) {
	router, _, _ := setupRouter(t, populatedProvider(), true)

	w, body := get(t, router, "/api/sectors/rotation")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Energy", "Technology", "Utilities"}, data["labels"])
	assert.Equal(t, []interface{}{0.0, 0.0, 2.0}, data["sources"])
	assert.Equal(t, []interface{}{1.0, 1.0, 0.0}, data["targets"])
	assert.Equal(t, []interface{}{0.4, 0.1, 0.2}, data["weights"])
	assert.Equal(t, false, data["aggregated"])

	diag := data["diagnostics"].(map[string]interface{})
	assert.Equal(t, 1.0, diag["parallel_edges"])
}

func TestHandleGetRotation_Aggregate(t *testing.T) {
	router, _, _ := setupRouter(t, populatedProvider(), true)

	w, body := get(t, router, "/api/sectors/rotation?aggregate=true")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["aggregated"])
	weights := data["weights"].([]interface{})
	require.Len(t, weights, 2)
	assert.InDelta(t, 0.5, weights[0].(float64), 1e-12)
	assert.InDelta(t, 0.2, weights[1].(float64), 1e-12)
}

func TestHandleGetRotation_InvalidAggregate(t *testing.T) {
	router, _, _ := setupRouter(t, populatedProvider(), true)

	w, _ := get(t, router, "/api/sectors/rotation?aggregate=maybe")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetRotation_Empty(t *testing.T) {
	router, _, _ := setupRouter(t, testingpkg.NewMockDataProvider(nil, nil), true)

	_, body := get(t, router, "/api/sectors/rotation")
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["empty"])
	assert.Equal(t, NoRotationData, data["message"])
}

func TestHandleGetSnapshot(t *testing.T) {
	router, service, _ := setupRouter(t, populatedProvider(), true)

	w, body := get(t, router, "/api/sectors/snapshot")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	meta := data["meta"].(map[string]interface{})
	assert.Equal(t, service.Current().CycleID, meta["cycle_id"])
	assert.Equal(t, 2.0, meta["sectors"])
	assert.Equal(t, 3.0, meta["edges"])
	assert.Contains(t, data, "clusters")
	assert.Contains(t, data, "rotation")
	assert.Len(t, data["summary"], 2)
}

func TestHandleGetSnapshot_Msgpack(t *testing.T) {
	router, _, _ := setupRouter(t, populatedProvider(), true)

	req := httptest.NewRequest(http.MethodGet, "/api/sectors/snapshot", nil)
	req.Header.Set("Accept", "application/msgpack")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/msgpack", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "data")
	assert.Contains(t, body, "metadata")
}

func TestHandleGetClusterSummary(t *testing.T) {
	router, _, _ := setupRouter(t, populatedProvider(), true)

	w, body := get(t, router, "/api/sectors/clusters/summary")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	summaries := data["clusters"].([]interface{})
	require.Len(t, summaries, 2)
	first := summaries[0].(map[string]interface{})
	assert.Equal(t, 2.0, first["cluster"])
	assert.Equal(t, "Outperforming", first["performance"])
}

func TestHandleGetRotations(t *testing.T) {
	p := populatedProvider()
	router, service, _ := setupRouter(t, p, true)

	shifted := testingpkg.NewClusterFixtures()
	shifted[0].Performance = "Neutral"
	p.SetClusters(shifted)
	_, err := service.Refresh(context.Background())
	require.NoError(t, err)

	w, body := get(t, router, "/api/sectors/rotations")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, 1.0, data["count"])
	rotations := data["rotations"].([]interface{})
	first := rotations[0].(map[string]interface{})
	assert.Equal(t, "Technology", first["sector"])
	assert.Equal(t, "rotation_out", first["direction"])
}

func TestHandleGetRotations_InvalidLimit(t *testing.T) {
	router, _, _ := setupRouter(t, populatedProvider(), true)

	w, _ := get(t, router, "/api/sectors/rotations?limit=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRefresh(t *testing.T) {
	router, service, _ := setupRouter(t, populatedProvider(), false)
	assert.False(t, service.Current().Built())

	req := httptest.NewRequest(http.MethodPost, "/api/sectors/refresh", strings.NewReader(""))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, service.Current().Built())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, service.Current().CycleID, data["cycle_id"])
}

func TestHandlers_HugeFinitePayloadsStayEncodable(t *testing.T) {
	p := testingpkg.NewMockDataProvider(
		[]domain.RawCluster{
			testingpkg.RawCluster("A", "Outperforming", 0, 1e308, 1e308, 1e308),
			testingpkg.RawCluster("B", "Outperforming", 0, 1e308, 1e308, 1e308),
		},
		[]domain.RawFlow{
			testingpkg.RawFlow("A", "B", 1e308),
			testingpkg.RawFlow("A", "B", 1e308),
		},
	)
	router, _, _ := setupRouter(t, p, true)

	for _, path := range []string{
		"/api/sectors/clusters",
		"/api/sectors/clusters/summary",
		"/api/sectors/rotation",
		"/api/sectors/rotation?aggregate=true",
		"/api/sectors/snapshot",
	} {
		t.Run(path, func(t *testing.T) {
			w, body := get(t, router, path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Body.Bytes())
			assert.Contains(t, body, "data")
		})
	}

	_, body := get(t, router, "/api/sectors/rotation?aggregate=true")
	data := body["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{math.MaxFloat64}, data["weights"])

	_, body = get(t, router, "/api/sectors/snapshot")
	rot := body["data"].(map[string]interface{})["rotation"].(map[string]interface{})
	flows := rot["node_flows"].([]interface{})
	source := flows[0].(map[string]interface{})
	assert.Equal(t, math.MaxFloat64, source["outgoing"])
	assert.Equal(t, true, source["saturated"])
}

func TestRegisterRoutes(t *testing.T) {
	router, _, _ := setupRouter(t, populatedProvider(), true)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/sectors/clusters"},
		{http.MethodGet, "/api/sectors/clusters/summary"},
		{http.MethodGet, "/api/sectors/rotation"},
		{http.MethodGet, "/api/sectors/rotations"},
		{http.MethodGet, "/api/sectors/snapshot"},
		{http.MethodPost, "/api/sectors/refresh"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/sectors/clusters", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
