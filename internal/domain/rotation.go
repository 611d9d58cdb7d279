package domain

// RotationDirection classifies how a sector moved between two performance labels
type RotationDirection string

const (
	RotationIn       RotationDirection = "rotation_in"
	RotationOut      RotationDirection = "rotation_out"
	RotationNoChange RotationDirection = "no_change"
	RotationUnknown  RotationDirection = "unknown"
)

// performanceRank orders labels from weakest to strongest
var performanceRank = map[PerformanceLabel]int{
	PerformanceUnderperforming: 0,
	PerformanceNeutral:         1,
	PerformanceOutperforming:   2,
}

// ClassifyRotation compares two labels for the same sector.
// Unrecognized or missing labels yield RotationUnknown.
func ClassifyRotation(from, to PerformanceLabel) RotationDirection {
	fromRank, okFrom := performanceRank[from]
	toRank, okTo := performanceRank[to]
	if !okFrom || !okTo {
		return RotationUnknown
	}

	switch {
	case toRank > fromRank:
		return RotationIn
	case toRank < fromRank:
		return RotationOut
	default:
		return RotationNoChange
	}
}
