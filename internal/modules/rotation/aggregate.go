package rotation

import "github.com/aristath/sectorflow/internal/domain"

// Aggregate merges parallel flows between the same (source, target) pair by summing
// their weights. Output keeps the first-seen order of each pair. Normalize never
// merges; callers that want merged flows apply this upstream. A summed weight that
// would overflow is clamped at math.MaxFloat64 so every output stays a valid flow.
func Aggregate(flows []domain.FlowRecord) []domain.FlowRecord {
	type pair struct{ source, target string }

	out := make([]domain.FlowRecord, 0, len(flows))
	pos := make(map[pair]int, len(flows))

	for _, f := range flows {
		key := pair{f.Source, f.Target}
		if i, ok := pos[key]; ok {
			out[i].Weight, _ = domain.SaturatingAdd(out[i].Weight, f.Weight)
			continue
		}
		pos[key] = len(out)
		out = append(out, f)
	}
	return out
}
