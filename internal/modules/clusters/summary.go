package clusters

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/sectorflow/internal/domain"
)

// ClusterSummary aggregates the members of one cluster
type ClusterSummary struct {
	ClusterID            int                     `json:"cluster"`
	Sectors              []string                `json:"sectors"`
	Performance          domain.PerformanceLabel `json:"performance"`
	MeanShortTermReturn  float64                 `json:"mean_ret_short"`
	MeanRelativeStrength float64                 `json:"mean_rel_strength"`
	MeanVolatility       float64                 `json:"mean_volatility"`
}

// Summarize groups records by cluster id and averages their metrics.
// Sectors keep input order within a cluster. Clusters are ordered by mean
// short-term return, strongest first. Performance is the label most members
// carry, ties going to the label seen first.
func Summarize(records []domain.ClusterRecord) []ClusterSummary {
	type group struct {
		sectors  []string
		ret      []float64
		rs       []float64
		vol      []float64
		labels   map[domain.PerformanceLabel]int
		firstIdx map[domain.PerformanceLabel]int
	}

	groups := make(map[int]*group)
	var order []int

	for _, r := range records {
		g, ok := groups[r.ClusterID]
		if !ok {
			g = &group{
				labels:   make(map[domain.PerformanceLabel]int),
				firstIdx: make(map[domain.PerformanceLabel]int),
			}
			groups[r.ClusterID] = g
			order = append(order, r.ClusterID)
		}
		if _, seen := g.firstIdx[r.Performance]; !seen {
			g.firstIdx[r.Performance] = len(g.sectors)
		}
		g.sectors = append(g.sectors, r.Sector)
		g.ret = append(g.ret, r.ShortTermReturn)
		g.rs = append(g.rs, r.RelativeStrength)
		g.vol = append(g.vol, r.Volatility)
		g.labels[r.Performance]++
	}

	out := make([]ClusterSummary, 0, len(order))
	for _, id := range order {
		g := groups[id]

		var label domain.PerformanceLabel
		best := -1
		for l, count := range g.labels {
			if count > best || (count == best && g.firstIdx[l] < g.firstIdx[label]) {
				label, best = l, count
			}
		}

		out = append(out, ClusterSummary{
			ClusterID:            id,
			Sectors:              g.sectors,
			Performance:          label,
			MeanShortTermReturn:  finiteMean(g.ret),
			MeanRelativeStrength: finiteMean(g.rs),
			MeanVolatility:       finiteMean(g.vol),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MeanShortTermReturn != out[j].MeanShortTermReturn {
			return out[i].MeanShortTermReturn > out[j].MeanShortTermReturn
		}
		return out[i].ClusterID < out[j].ClusterID
	})
	return out
}

// finiteMean is stat.Mean for finite inputs whose sum would overflow. The mean of
// finite values lies within their range, so values are scaled by 1/n before summing.
func finiteMean(xs []float64) float64 {
	m := stat.Mean(xs, nil)
	if !math.IsInf(m, 0) {
		return m
	}
	scaled := make([]float64, len(xs))
	floats.ScaleTo(scaled, 1/float64(len(xs)), xs)
	return math.Max(-math.MaxFloat64, math.Min(math.MaxFloat64, floats.Sum(scaled)))
}
