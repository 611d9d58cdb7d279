package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRotation(t *testing.T) {
	tests := []struct {
		name     string
		from     PerformanceLabel
		to       PerformanceLabel
		expected RotationDirection
	}{
		{"under to neutral", PerformanceUnderperforming, PerformanceNeutral, RotationIn},
		{"neutral to out", PerformanceNeutral, PerformanceOutperforming, RotationIn},
		{"under to out", PerformanceUnderperforming, PerformanceOutperforming, RotationIn},
		{"out to under", PerformanceOutperforming, PerformanceUnderperforming, RotationOut},
		{"neutral to under", PerformanceNeutral, PerformanceUnderperforming, RotationOut},
		{"unchanged", PerformanceNeutral, PerformanceNeutral, RotationNoChange},
		{"missing previous", "", PerformanceNeutral, RotationUnknown},
		{"unrecognized target", PerformanceNeutral, "Sideways", RotationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyRotation(tt.from, tt.to))
		})
	}
}
