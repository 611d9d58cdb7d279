// Package clusters turns validated cluster records into the 3-D scatter projection.
package clusters

import (
	"fmt"
	"strings"

	"github.com/aristath/sectorflow/internal/domain"
)

// ColorCategory is the categorical color bucket the renderer maps to a palette
type ColorCategory string

const (
	ColorPositive ColorCategory = "positive"
	ColorNegative ColorCategory = "negative"
	ColorNeutral  ColorCategory = "neutral"
)

// ParseColorCategory parses a configured category name
func ParseColorCategory(s string) (ColorCategory, error) {
	switch c := ColorCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case ColorPositive, ColorNegative, ColorNeutral:
		return c, nil
	default:
		return "", fmt.Errorf("unknown color category: %q", s)
	}
}

// ClusterProjection holds the scatter inputs as parallel sequences, one entry per
// record in input order. X is short-term return, Y relative strength, Z volatility.
type ClusterProjection struct {
	X      []float64       `json:"x"`
	Y      []float64       `json:"y"`
	Z      []float64       `json:"z"`
	Colors []ColorCategory `json:"colors"`
	Labels []string        `json:"labels"`
}

// Len returns the number of points
func (p *ClusterProjection) Len() int {
	return len(p.Labels)
}

// Empty reports whether there is nothing to draw
func (p *ClusterProjection) Empty() bool {
	return p.Len() == 0
}

// Projector builds projections with a configurable category for unrecognized labels
type Projector struct {
	unknown ColorCategory
}

// NewProjector creates a projector. Unrecognized performance labels map to unknown.
func NewProjector(unknown ColorCategory) *Projector {
	return &Projector{unknown: unknown}
}

// Classify maps a performance label to its color category
func (p *Projector) Classify(label domain.PerformanceLabel) ColorCategory {
	switch label {
	case domain.PerformanceOutperforming:
		return ColorPositive
	case domain.PerformanceUnderperforming:
		return ColorNegative
	case domain.PerformanceNeutral:
		return ColorNeutral
	default:
		return p.unknown
	}
}

// Project builds the scatter projection. No field is sorted or recomputed.
func (p *Projector) Project(records []domain.ClusterRecord) *ClusterProjection {
	proj := &ClusterProjection{
		X:      make([]float64, len(records)),
		Y:      make([]float64, len(records)),
		Z:      make([]float64, len(records)),
		Colors: make([]ColorCategory, len(records)),
		Labels: make([]string, len(records)),
	}
	for i, r := range records {
		proj.X[i] = r.ShortTermReturn
		proj.Y[i] = r.RelativeStrength
		proj.Z[i] = r.Volatility
		proj.Colors[i] = p.Classify(r.Performance)
		proj.Labels[i] = r.Sector
	}
	return proj
}

var defaultProjector = NewProjector(ColorNeutral)

// Classify maps a label using the neutral default
func Classify(label domain.PerformanceLabel) ColorCategory {
	return defaultProjector.Classify(label)
}

// Project builds a projection using the neutral default for unrecognized labels
func Project(records []domain.ClusterRecord) *ClusterProjection {
	return defaultProjector.Project(records)
}
