package dashboard

import (
	"time"

	"github.com/aristath/sectorflow/internal/domain"
)

// SectorRotation records a sector whose performance label changed between two cycles
type SectorRotation struct {
	Sector     string                   `json:"sector"`
	From       domain.PerformanceLabel  `json:"from"`
	To         domain.PerformanceLabel  `json:"to"`
	Direction  domain.RotationDirection `json:"direction"`
	CycleID    string                   `json:"cycle_id"`
	DetectedAt time.Time                `json:"detected_at"`
}

// detectRotations compares each sector in next against its label in prev.
// A sector absent from prev is reported with an empty From and RotationUnknown;
// a sector that disappeared is not reported. A duplicated sector is judged by its
// first occurrence. Results follow the order of next.
func detectRotations(prev, next []domain.ClusterRecord, cycleID string, at time.Time) []SectorRotation {
	before := make(map[string]domain.PerformanceLabel, len(prev))
	for _, r := range prev {
		if _, ok := before[r.Sector]; !ok {
			before[r.Sector] = r.Performance
		}
	}

	seen := make(map[string]bool, len(next))
	out := []SectorRotation{}
	for _, r := range next {
		if seen[r.Sector] {
			continue
		}
		seen[r.Sector] = true

		from, ok := before[r.Sector]
		if ok && from == r.Performance {
			continue
		}
		out = append(out, SectorRotation{
			Sector:     r.Sector,
			From:       from,
			To:         r.Performance,
			Direction:  domain.ClassifyRotation(from, r.Performance),
			CycleID:    cycleID,
			DetectedAt: at,
		})
	}
	return out
}
