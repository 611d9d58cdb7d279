package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/sectorflow/internal/domain"
	"github.com/aristath/sectorflow/internal/events"
	"github.com/aristath/sectorflow/internal/modules/clusters"
	"github.com/aristath/sectorflow/internal/modules/rotation"
)

// DefaultHistoryLimit bounds the rotation history kept in memory
const DefaultHistoryLimit = 200

// Service runs render cycles and publishes the latest snapshot
type Service struct {
	provider  DataProvider
	projector *clusters.Projector
	bus       *events.Bus
	log       zerolog.Logger

	current atomic.Pointer[Snapshot]

	// refreshMu serializes cycles so rotation diffs compare consecutive snapshots
	refreshMu sync.Mutex

	historyMu    sync.RWMutex
	history      []SectorRotation
	historyLimit int
}

// NewService creates a dashboard service. bus may be nil.
func NewService(provider DataProvider, projector *clusters.Projector, bus *events.Bus, log zerolog.Logger) *Service {
	if projector == nil {
		projector = clusters.NewProjector(clusters.ColorNeutral)
	}
	s := &Service{
		provider:     provider,
		projector:    projector,
		bus:          bus,
		log:          log.With().Str("service", "dashboard").Logger(),
		historyLimit: DefaultHistoryLimit,
	}
	s.current.Store(emptySnapshot())
	return s
}

// SetHistoryLimit changes how many rotation events are retained
func (s *Service) SetHistoryLimit(n int) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	s.historyLimit = n
	s.trimHistory()
}

// Current returns the latest published snapshot. Before the first cycle it is an
// empty snapshot whose Built reports false.
func (s *Service) Current() *Snapshot {
	return s.current.Load()
}

// Refresh runs one render cycle. Cluster and flow branches fetch concurrently and
// independently; a provider failure in one leaves the other intact. The new
// snapshot replaces the old one only once fully built. A cancelled context abandons
// the cycle and keeps the previous snapshot.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	cycleID := uuid.New().String()
	log := s.log.With().Str("cycle_id", cycleID).Logger()

	var (
		records     []domain.ClusterRecord
		clusterDiag domain.ClusterDiagnostics
		flows       []domain.FlowRecord
		flowDiag    domain.FlowDiagnostics
	)

	// Providers report failures as empty batches; a branch errors only when ctx is cancelled.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, clusterDiag = domain.ValidateClusters(s.provider.GetClusterRecords(gctx))
		return ctx.Err()
	})
	g.Go(func() error {
		flows, flowDiag = domain.ValidateFlows(s.provider.GetFlowRecords(gctx))
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("Render cycle abandoned")
		s.emit(&events.RefreshFailedData{Error: err.Error()})
		return nil, fmt.Errorf("render cycle abandoned: %w", err)
	}

	graph, rotDiag := rotation.Normalize(flows)
	rotDiag.Records = flowDiag

	prev := s.current.Load()
	builtAt := time.Now()

	next := &Snapshot{
		CycleID:             cycleID,
		BuiltAt:             builtAt,
		Clusters:            s.projector.Project(records),
		ClusterDiagnostics:  clusterDiag,
		Summary:             clusters.Summarize(records),
		Rotation:            graph,
		RotationDiagnostics: rotDiag,
		NodeFlows:           graph.NodeFlows(),
		Rotations:           []SectorRotation{},
		records:             records,
		flows:               flows,
	}
	// An empty batch on either side is a failed fetch, not every sector leaving or arriving.
	if prev.Built() && len(prev.records) > 0 && len(records) > 0 {
		next.Rotations = detectRotations(prev.records, records, cycleID, builtAt)
	}

	s.current.Store(next)
	s.recordRotations(next.Rotations)
	s.logDiagnostics(log, next)

	log.Info().
		Int("sectors", next.Clusters.Len()).
		Int("nodes", graph.NodeCount()).
		Int("edges", graph.EdgeCount()).
		Int("rotations", len(next.Rotations)).
		Dur("duration", time.Since(start)).
		Msg("Render cycle completed")

	meta := next.Meta()
	s.emit(&events.SnapshotUpdatedData{
		CycleID:         meta.CycleID,
		BuiltAt:         meta.BuiltAt,
		Sectors:         meta.Sectors,
		ExcludedRecords: meta.ExcludedRecords,
		Nodes:           meta.Nodes,
		Edges:           meta.Edges,
		ExcludedFlows:   meta.ExcludedFlows,
		Rotations:       meta.Rotations,
	})
	for _, r := range next.Rotations {
		s.emit(&events.SectorRotatedData{
			CycleID:   r.CycleID,
			Sector:    r.Sector,
			From:      string(r.From),
			To:        string(r.To),
			Direction: string(r.Direction),
		})
	}

	return next, nil
}

// Rotations returns detected rotations, newest first, at most limit entries.
// limit <= 0 returns the whole retained history.
func (s *Service) Rotations(limit int) []SectorRotation {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	n := len(s.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]SectorRotation, 0, n)
	for i := len(s.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.history[i])
	}
	return out
}

func (s *Service) recordRotations(rotations []SectorRotation) {
	if len(rotations) == 0 {
		return
	}
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	s.history = append(s.history, rotations...)
	s.trimHistory()
}

// trimHistory drops the oldest entries over the limit; callers hold historyMu
func (s *Service) trimHistory() {
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = append([]SectorRotation(nil), s.history[len(s.history)-s.historyLimit:]...)
	}
}

func (s *Service) logDiagnostics(log zerolog.Logger, snap *Snapshot) {
	cd := snap.ClusterDiagnostics
	if cd.Excluded > 0 || len(cd.DuplicateSectors) > 0 || cd.UnrecognizedLabels > 0 {
		log.Warn().
			Int("received", cd.Received).
			Int("excluded", cd.Excluded).
			Interface("reasons", cd.ExclusionReasons).
			Strs("duplicate_sectors", cd.DuplicateSectors).
			Int("unrecognized_labels", cd.UnrecognizedLabels).
			Msg("Cluster records excluded or flagged")
	}

	rd := snap.RotationDiagnostics
	if rd.Records.Excluded > 0 || rd.SelfLoops > 0 {
		log.Warn().
			Int("received", rd.Records.Received).
			Int("excluded", rd.Records.Excluded).
			Interface("reasons", rd.Records.ExclusionReasons).
			Int("self_loops", rd.SelfLoops).
			Strs("self_loop_sectors", rd.Records.SelfLoopSectors).
			Msg("Flow records excluded or flagged")
	}
}

func (s *Service) emit(data events.EventData) {
	if s.bus != nil {
		s.bus.Emit("dashboard", data)
	}
}
