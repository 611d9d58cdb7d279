package rotation

import (
	"errors"
	"fmt"

	"github.com/aristath/sectorflow/internal/domain"
)

// ErrInvariant marks a structural defect in a normalized graph. It is never a
// runtime condition: builders in this package cannot produce it from any input.
var ErrInvariant = errors.New("flow graph invariant violated")

// NormalizedFlowGraph is the renderer input for the rotation diagram.
// Sources, Targets and Weights are parallel: edge i runs Sources[i] -> Targets[i]
// carrying Weights[i]. Labels[k] names node k. Values must not be modified.
type NormalizedFlowGraph struct {
	Labels  []string  `json:"labels"`
	Sources []int     `json:"sources"`
	Targets []int     `json:"targets"`
	Weights []float64 `json:"weights"`
}

// Diagnostics describes a normalization run
type Diagnostics struct {
	Records       domain.FlowDiagnostics `json:"records"`
	Nodes         int                    `json:"nodes"`
	Edges         int                    `json:"edges"`
	SelfLoops     int                    `json:"self_loops"`
	ParallelEdges int                    `json:"parallel_edges"`
}

// EdgeCount returns the number of edges
func (g *NormalizedFlowGraph) EdgeCount() int {
	return len(g.Weights)
}

// NodeCount returns the number of nodes
func (g *NormalizedFlowGraph) NodeCount() int {
	return len(g.Labels)
}

// Empty reports whether there is nothing to draw
func (g *NormalizedFlowGraph) Empty() bool {
	return g.EdgeCount() == 0
}

// Validate checks the structural invariants: equal-length edge sequences and every
// index within [0, n-1].
func (g *NormalizedFlowGraph) Validate() error {
	edges := len(g.Weights)
	if len(g.Sources) != edges || len(g.Targets) != edges {
		return fmt.Errorf("%w: edge sequences have lengths %d/%d/%d",
			ErrInvariant, len(g.Sources), len(g.Targets), edges)
	}

	n := len(g.Labels)
	for i := 0; i < edges; i++ {
		if g.Sources[i] < 0 || g.Sources[i] >= n {
			return fmt.Errorf("%w: edge %d source index %d outside [0,%d)", ErrInvariant, i, g.Sources[i], n)
		}
		if g.Targets[i] < 0 || g.Targets[i] >= n {
			return fmt.Errorf("%w: edge %d target index %d outside [0,%d)", ErrInvariant, i, g.Targets[i], n)
		}
	}
	return nil
}

// MustValidate panics if Validate fails
func (g *NormalizedFlowGraph) MustValidate() {
	if err := g.Validate(); err != nil {
		panic(err)
	}
}

// Normalize builds the renderer graph from validated flows. Each flow becomes exactly
// one edge, in input order; parallel edges are not merged.
func Normalize(flows []domain.FlowRecord) (*NormalizedFlowGraph, Diagnostics) {
	idx := BuildLabelIndex(flows)

	g := &NormalizedFlowGraph{
		Labels:  idx.Labels(),
		Sources: make([]int, 0, len(flows)),
		Targets: make([]int, 0, len(flows)),
		Weights: make([]float64, 0, len(flows)),
	}

	type pair struct{ s, t int }
	seen := make(map[pair]bool, len(flows))
	diag := Diagnostics{
		Records: domain.FlowDiagnostics{Received: len(flows), Accepted: len(flows)},
	}

	for _, f := range flows {
		s, _ := idx.Index(f.Source)
		t, _ := idx.Index(f.Target)

		g.Sources = append(g.Sources, s)
		g.Targets = append(g.Targets, t)
		g.Weights = append(g.Weights, f.Weight)

		if s == t {
			diag.SelfLoops++
		}
		if seen[pair{s, t}] {
			diag.ParallelEdges++
		}
		seen[pair{s, t}] = true
	}

	g.MustValidate()

	diag.Records.SelfLoops = diag.SelfLoops
	diag.Nodes = g.NodeCount()
	diag.Edges = g.EdgeCount()
	return g, diag
}

// NormalizeRaw validates raw flows and normalizes the survivors. Labels are only
// assigned for records that pass validation.
func NormalizeRaw(raws []domain.RawFlow) (*NormalizedFlowGraph, Diagnostics) {
	flows, records := domain.ValidateFlows(raws)
	g, diag := Normalize(flows)
	diag.Records = records
	return g, diag
}
