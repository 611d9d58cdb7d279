package rotation

import (
	"gonum.org/v1/gonum/graph/multi"

	"github.com/aristath/sectorflow/internal/domain"
)

// NodeFlow totals the capital leaving and entering one sector.
// Saturated marks totals that were clamped at math.MaxFloat64.
type NodeFlow struct {
	Label     string  `json:"label"`
	Outgoing  float64 `json:"outgoing"`
	Incoming  float64 `json:"incoming"`
	Net       float64 `json:"net"`
	Saturated bool    `json:"saturated,omitempty"`
}

// Multigraph returns the normalized edges as a gonum weighted directed multigraph.
// Node IDs are label indices. Self-loops are left out; NodeFlows accounts for them.
func (g *NormalizedFlowGraph) Multigraph() *multi.WeightedDirectedGraph {
	mg := multi.NewWeightedDirectedGraph()
	for i := range g.Labels {
		mg.AddNode(multi.Node(i))
	}
	for i := range g.Weights {
		if g.Sources[i] == g.Targets[i] {
			continue
		}
		mg.SetWeightedLine(mg.NewWeightedLine(
			multi.Node(g.Sources[i]),
			multi.Node(g.Targets[i]),
			g.Weights[i],
		))
	}
	return mg
}

// NodeFlows returns per-sector outgoing, incoming and net totals in index order.
// Parallel edges are summed here; the graph itself keeps them distinct.
func (g *NormalizedFlowGraph) NodeFlows() []NodeFlow {
	out := make([]NodeFlow, len(g.Labels))
	for i, label := range g.Labels {
		out[i].Label = label
	}

	mg := g.Multigraph()
	nodes := mg.Nodes()
	for nodes.Next() {
		uid := nodes.Node().ID()
		to := mg.From(uid)
		for to.Next() {
			vid := to.Node().ID()
			lines := mg.WeightedLines(uid, vid)
			for lines.Next() {
				w := lines.WeightedLine().Weight()
				out[uid].addOutgoing(w)
				out[vid].addIncoming(w)
			}
		}
	}

	for i := range g.Weights {
		if g.Sources[i] == g.Targets[i] {
			out[g.Sources[i]].addOutgoing(g.Weights[i])
			out[g.Sources[i]].addIncoming(g.Weights[i])
		}
	}

	for i := range out {
		out[i].Net = out[i].Incoming - out[i].Outgoing
	}
	return out
}

func (f *NodeFlow) addOutgoing(w float64) {
	var clamped bool
	f.Outgoing, clamped = domain.SaturatingAdd(f.Outgoing, w)
	f.Saturated = f.Saturated || clamped
}

func (f *NodeFlow) addIncoming(w float64) {
	var clamped bool
	f.Incoming, clamped = domain.SaturatingAdd(f.Incoming, w)
	f.Saturated = f.Saturated || clamped
}
