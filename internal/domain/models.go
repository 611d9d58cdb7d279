// Package domain provides the sector analytics record models and their validation.
package domain

import (
	"encoding/json"
	"fmt"
)

// PerformanceLabel is the categorical classification supplied by the upstream clustering
type PerformanceLabel string

const (
	PerformanceOutperforming   PerformanceLabel = "Outperforming"
	PerformanceUnderperforming PerformanceLabel = "Underperforming"
	PerformanceNeutral         PerformanceLabel = "Neutral"
)

// Known reports whether the label is one of the three recognized values
func (p PerformanceLabel) Known() bool {
	switch p {
	case PerformanceOutperforming, PerformanceUnderperforming, PerformanceNeutral:
		return true
	}
	return false
}

// RawCluster is one element of the analytics /clusters payload, before validation.
// Numeric fields are pointers so a missing field can be told apart from zero.
type RawCluster struct {
	Sector           string   `json:"sector"`
	ShortTermReturn  *float64 `json:"ret_short"`
	RelativeStrength *float64 `json:"rel_strength"`
	Volatility       *float64 `json:"volatility"`
	Performance      string   `json:"performance"`
	Cluster          *float64 `json:"cluster"`
}

// RawFlow is one element of the analytics /rotation payload, before validation
type RawFlow struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Weight *float64 `json:"weight"`
}

// ClusterRecord is one sector's validated clustering output
type ClusterRecord struct {
	Sector           string           `json:"sector"`
	ShortTermReturn  float64          `json:"ret_short"`
	RelativeStrength float64          `json:"rel_strength"`
	Volatility       float64          `json:"volatility"`
	Performance      PerformanceLabel `json:"performance"`
	ClusterID        int              `json:"cluster"`
}

// FlowRecord is one validated directed sector-to-sector capital weight
type FlowRecord struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// SelfLoop reports whether the flow starts and ends at the same sector
func (f FlowRecord) SelfLoop() bool {
	return f.Source == f.Target
}

// DecodeClusters decodes a /clusters payload element by element.
// An element that fails to decode becomes a zero RawCluster, which validation rejects,
// so one bad element never discards the rest of the batch.
func DecodeClusters(data []byte) ([]RawCluster, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("failed to decode cluster payload: %w", err)
	}

	raws := make([]RawCluster, len(elems))
	for i, elem := range elems {
		var raw RawCluster
		if err := json.Unmarshal(elem, &raw); err != nil {
			continue
		}
		raws[i] = raw
	}
	return raws, nil
}

// DecodeFlows decodes a /rotation payload element by element (see DecodeClusters)
func DecodeFlows(data []byte) ([]RawFlow, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("failed to decode rotation payload: %w", err)
	}

	raws := make([]RawFlow, len(elems))
	for i, elem := range elems {
		var raw RawFlow
		if err := json.Unmarshal(elem, &raw); err != nil {
			continue
		}
		raws[i] = raw
	}
	return raws, nil
}
