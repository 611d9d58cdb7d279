package dashboard

import (
	"time"

	"github.com/aristath/sectorflow/internal/domain"
	"github.com/aristath/sectorflow/internal/modules/clusters"
	"github.com/aristath/sectorflow/internal/modules/rotation"
)

// Snapshot is everything one render cycle produced. It is immutable once published.
type Snapshot struct {
	CycleID             string                        `json:"cycle_id"`
	BuiltAt             time.Time                     `json:"built_at"`
	Clusters            *clusters.ClusterProjection   `json:"clusters"`
	ClusterDiagnostics  domain.ClusterDiagnostics     `json:"cluster_diagnostics"`
	Summary             []clusters.ClusterSummary     `json:"summary"`
	Rotation            *rotation.NormalizedFlowGraph `json:"rotation"`
	RotationDiagnostics rotation.Diagnostics          `json:"rotation_diagnostics"`
	NodeFlows           []rotation.NodeFlow           `json:"node_flows"`
	Rotations           []SectorRotation              `json:"rotations"`

	records []domain.ClusterRecord
	flows   []domain.FlowRecord
}

// SnapshotMeta is the lightweight description pushed to stream clients
type SnapshotMeta struct {
	CycleID         string    `json:"cycle_id"`
	BuiltAt         time.Time `json:"built_at"`
	Sectors         int       `json:"sectors"`
	ClustersEmpty   bool      `json:"clusters_empty"`
	ExcludedRecords int       `json:"excluded_records"`
	Nodes           int       `json:"nodes"`
	Edges           int       `json:"edges"`
	RotationEmpty   bool      `json:"rotation_empty"`
	ExcludedFlows   int       `json:"excluded_flows"`
	Rotations       int       `json:"rotations"`
}

// emptySnapshot is served before the first cycle completes
func emptySnapshot() *Snapshot {
	g, diag := rotation.Normalize(nil)
	return &Snapshot{
		Clusters:            clusters.Project(nil),
		Summary:             []clusters.ClusterSummary{},
		Rotation:            g,
		RotationDiagnostics: diag,
		NodeFlows:           []rotation.NodeFlow{},
		Rotations:           []SectorRotation{},
	}
}

// Built reports whether the snapshot came from a render cycle
func (s *Snapshot) Built() bool {
	return s.CycleID != ""
}

// AggregatedRotation merges parallel flows before normalizing. The snapshot's own
// graph keeps every flow as a separate edge.
func (s *Snapshot) AggregatedRotation() (*rotation.NormalizedFlowGraph, rotation.Diagnostics) {
	g, diag := rotation.Normalize(rotation.Aggregate(s.flows))
	diag.Records = s.RotationDiagnostics.Records
	return g, diag
}

// Meta summarizes the snapshot
func (s *Snapshot) Meta() SnapshotMeta {
	return SnapshotMeta{
		CycleID:         s.CycleID,
		BuiltAt:         s.BuiltAt,
		Sectors:         s.Clusters.Len(),
		ClustersEmpty:   s.Clusters.Empty(),
		ExcludedRecords: s.ClusterDiagnostics.Excluded,
		Nodes:           s.Rotation.NodeCount(),
		Edges:           s.Rotation.EdgeCount(),
		RotationEmpty:   s.Rotation.Empty(),
		ExcludedFlows:   s.RotationDiagnostics.Records.Excluded,
		Rotations:       len(s.Rotations),
	}
}
