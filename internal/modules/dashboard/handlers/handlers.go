// Package handlers provides HTTP handlers for the sector dashboard.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sectorflow/internal/domain"
	"github.com/aristath/sectorflow/internal/events"
	"github.com/aristath/sectorflow/internal/modules/clusters"
	"github.com/aristath/sectorflow/internal/modules/dashboard"
	"github.com/aristath/sectorflow/internal/modules/rotation"
	"github.com/aristath/sectorflow/internal/render"
)

// Placeholder messages for the renderer when a view has nothing to draw
const (
	NoClusterData  = "No cluster data available"
	NoRotationData = "No rotation flow data"
)

// Handler handles sector dashboard HTTP requests
type Handler struct {
	service        *dashboard.Service
	bus            *events.Bus
	refreshTimeout time.Duration
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new dashboard handler. bus may be nil, which disables the stream.
func NewHandler(
	service *dashboard.Service,
	bus *events.Bus,
	refreshTimeout time.Duration,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:        service,
		bus:            bus,
		refreshTimeout: refreshTimeout,
		log:            log.With().Str("handler", "dashboard").Logger(),
	}
}

// SetOriginPatterns sets the cross-origin hosts allowed to open the stream
func (h *Handler) SetOriginPatterns(patterns []string) {
	h.originPatterns = patterns
}

// envelope wraps every payload the same way
type envelope struct {
	Data     interface{} `json:"data"`
	Metadata metadata    `json:"metadata"`
}

type metadata struct {
	Timestamp string `json:"timestamp"`
	CycleID   string `json:"cycle_id,omitempty"`
	BuiltAt   string `json:"built_at,omitempty"`
}

// ClustersResponse is the cluster scatter payload
type ClustersResponse struct {
	*clusters.ClusterProjection
	Empty       bool                      `json:"empty"`
	Message     string                    `json:"message,omitempty"`
	Diagnostics domain.ClusterDiagnostics `json:"diagnostics"`
}

// RotationResponse is the flow diagram payload
type RotationResponse struct {
	*rotation.NormalizedFlowGraph
	Empty       bool                 `json:"empty"`
	Message     string               `json:"message,omitempty"`
	Aggregated  bool                 `json:"aggregated"`
	NodeFlows   []rotation.NodeFlow  `json:"node_flows"`
	Diagnostics rotation.Diagnostics `json:"diagnostics"`
}

// SnapshotResponse combines both views with cycle metadata
type SnapshotResponse struct {
	Meta      dashboard.SnapshotMeta     `json:"meta"`
	Clusters  ClustersResponse           `json:"clusters"`
	Rotation  RotationResponse           `json:"rotation"`
	Summary   []clusters.ClusterSummary  `json:"summary"`
	Rotations []dashboard.SectorRotation `json:"rotations"`
}

func clustersResponse(snap *dashboard.Snapshot) ClustersResponse {
	resp := ClustersResponse{
		ClusterProjection: snap.Clusters,
		Empty:             snap.Clusters.Empty(),
		Diagnostics:       snap.ClusterDiagnostics,
	}
	if resp.Empty {
		resp.Message = NoClusterData
	}
	return resp
}

func rotationResponse(snap *dashboard.Snapshot, aggregate bool) RotationResponse {
	graph, diag := snap.Rotation, snap.RotationDiagnostics
	nodeFlows := snap.NodeFlows
	if aggregate {
		graph, diag = snap.AggregatedRotation()
		nodeFlows = graph.NodeFlows()
	}

	resp := RotationResponse{
		NormalizedFlowGraph: graph,
		Empty:               graph.Empty(),
		Aggregated:          aggregate,
		NodeFlows:           nodeFlows,
		Diagnostics:         diag,
	}
	if resp.Empty {
		resp.Message = NoRotationData
	}
	return resp
}

// HandleGetClusters handles GET /api/sectors/clusters
func (h *Handler) HandleGetClusters(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Current()
	h.write(w, r, http.StatusOK, snap, clustersResponse(snap))
}

// HandleGetRotation handles GET /api/sectors/rotation
// ?aggregate=true merges parallel flows before normalizing
func (h *Handler) HandleGetRotation(w http.ResponseWriter, r *http.Request) {
	aggregate := false
	if v := r.URL.Query().Get("aggregate"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			render.Error(w, r, http.StatusBadRequest, "invalid aggregate parameter", h.log)
			return
		}
		aggregate = parsed
	}

	snap := h.service.Current()
	h.write(w, r, http.StatusOK, snap, rotationResponse(snap, aggregate))
}

// HandleGetSnapshot handles GET /api/sectors/snapshot
func (h *Handler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Current()
	h.write(w, r, http.StatusOK, snap, snapshotResponse(snap))
}

// HandleGetClusterSummary handles GET /api/sectors/clusters/summary
func (h *Handler) HandleGetClusterSummary(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Current()
	h.write(w, r, http.StatusOK, snap, map[string]interface{}{
		"clusters": snap.Summary,
		"empty":    len(snap.Summary) == 0,
	})
}

// HandleGetRotations handles GET /api/sectors/rotations
// ?limit=N caps the number of events returned, newest first
func (h *Handler) HandleGetRotations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			render.Error(w, r, http.StatusBadRequest, "invalid limit parameter", h.log)
			return
		}
		limit = parsed
	}

	rotations := h.service.Rotations(limit)
	h.write(w, r, http.StatusOK, h.service.Current(), map[string]interface{}{
		"rotations": rotations,
		"count":     len(rotations),
	})
}

// HandleRefresh handles POST /api/sectors/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.refreshTimeout)
		defer cancel()
	}

	snap, err := h.service.Refresh(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("Manual refresh failed")
		render.Error(w, r, http.StatusServiceUnavailable, "refresh did not complete", h.log)
		return
	}

	h.write(w, r, http.StatusOK, snap, snap.Meta())
}

func snapshotResponse(snap *dashboard.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Meta:      snap.Meta(),
		Clusters:  clustersResponse(snap),
		Rotation:  rotationResponse(snap, false),
		Summary:   snap.Summary,
		Rotations: snap.Rotations,
	}
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, snap *dashboard.Snapshot, data interface{}) {
	meta := metadata{Timestamp: time.Now().Format(time.RFC3339)}
	if snap.Built() {
		meta.CycleID = snap.CycleID
		meta.BuiltAt = snap.BuiltAt.Format(time.RFC3339)
	}
	render.Write(w, r, status, envelope{Data: data, Metadata: meta}, h.log)
}
