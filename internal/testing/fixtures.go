package testing

import "github.com/aristath/sectorflow/internal/domain"

// ClustersJSON is a well-formed clusters payload matching NewClusterFixtures
const ClustersJSON = `[
	{"sector":"Technology","ret_short":0.08,"rel_strength":0.03,"volatility":0.015,"performance":"Outperforming","cluster":2},
	{"sector":"Energy","ret_short":-0.04,"rel_strength":-0.06,"volatility":0.022,"performance":"Underperforming","cluster":0}
]`

// RotationJSON is a well-formed rotation payload matching NewFlowFixtures
const RotationJSON = `[
	{"source":"Energy","target":"Technology","weight":0.4},
	{"source":"Energy","target":"Technology","weight":0.1},
	{"source":"Utilities","target":"Energy","weight":0.2}
]`

// F64 returns a pointer to v
func F64(v float64) *float64 { return &v }

// RawCluster builds a complete raw cluster record
func RawCluster(sector, label string, cluster, ret, rs, vol float64) domain.RawCluster {
	return domain.RawCluster{
		Sector:           sector,
		ShortTermReturn:  F64(ret),
		RelativeStrength: F64(rs),
		Volatility:       F64(vol),
		Performance:      label,
		Cluster:          F64(cluster),
	}
}

// RawFlow builds a complete raw flow record
func RawFlow(source, target string, weight float64) domain.RawFlow {
	return domain.RawFlow{Source: source, Target: target, Weight: F64(weight)}
}

// NewClusterFixtures returns the records encoded in ClustersJSON
func NewClusterFixtures() []domain.RawCluster {
	return []domain.RawCluster{
		RawCluster("Technology", "Outperforming", 2, 0.08, 0.03, 0.015),
		RawCluster("Energy", "Underperforming", 0, -0.04, -0.06, 0.022),
	}
}

// NewFlowFixtures returns the records encoded in RotationJSON.
// Energy -> Technology appears twice so aggregation has something to merge.
func NewFlowFixtures() []domain.RawFlow {
	return []domain.RawFlow{
		RawFlow("Energy", "Technology", 0.4),
		RawFlow("Energy", "Technology", 0.1),
		RawFlow("Utilities", "Energy", 0.2),
	}
}
