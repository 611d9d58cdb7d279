package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Record validation errors. Callers match them with errors.Is.
var (
	ErrEmptySector      = errors.New("empty sector")
	ErrEmptyEndpoint    = errors.New("empty flow endpoint")
	ErrMissingField     = errors.New("missing field")
	ErrNonFinite        = errors.New("non-finite value")
	ErrNegativeWeight   = errors.New("negative weight")
	ErrInvalidClusterID = errors.New("invalid cluster id")
)

// ClusterDiagnostics describes what cluster validation excluded or flagged
type ClusterDiagnostics struct {
	Received           int            `json:"received"`
	Accepted           int            `json:"accepted"`
	Excluded           int            `json:"excluded"`
	ExclusionReasons   map[string]int `json:"exclusion_reasons,omitempty"`
	DuplicateSectors   []string       `json:"duplicate_sectors,omitempty"`
	UnrecognizedLabels int            `json:"unrecognized_labels"`
}

// FlowDiagnostics describes what flow validation excluded or flagged
type FlowDiagnostics struct {
	Received         int            `json:"received"`
	Accepted         int            `json:"accepted"`
	Excluded         int            `json:"excluded"`
	ExclusionReasons map[string]int `json:"exclusion_reasons,omitempty"`
	SelfLoops        int            `json:"self_loops"`
	SelfLoopSectors  []string       `json:"self_loop_sectors,omitempty"`
}

// ValidateCluster checks one raw cluster record. The sector name is kept verbatim;
// only an empty or whitespace-only name is rejected.
func ValidateCluster(raw RawCluster) (ClusterRecord, error) {
	sector := raw.Sector
	if blank(sector) {
		return ClusterRecord{}, ErrEmptySector
	}

	ret, err := finite("ret_short", raw.ShortTermReturn)
	if err != nil {
		return ClusterRecord{}, fmt.Errorf("sector %s: %w", sector, err)
	}
	rs, err := finite("rel_strength", raw.RelativeStrength)
	if err != nil {
		return ClusterRecord{}, fmt.Errorf("sector %s: %w", sector, err)
	}
	vol, err := finite("volatility", raw.Volatility)
	if err != nil {
		return ClusterRecord{}, fmt.Errorf("sector %s: %w", sector, err)
	}

	clusterID, err := clusterID(raw.Cluster)
	if err != nil {
		return ClusterRecord{}, fmt.Errorf("sector %s: %w", sector, err)
	}

	return ClusterRecord{
		Sector:           sector,
		ShortTermReturn:  ret,
		RelativeStrength: rs,
		Volatility:       vol,
		Performance:      PerformanceLabel(strings.TrimSpace(raw.Performance)),
		ClusterID:        clusterID,
	}, nil
}

// ValidateFlow checks one raw flow record. Self-loops are valid. Endpoint labels
// are kept verbatim, so "Tech" and "Tech " are distinct nodes.
func ValidateFlow(raw RawFlow) (FlowRecord, error) {
	source, target := raw.Source, raw.Target
	if blank(source) || blank(target) {
		return FlowRecord{}, ErrEmptyEndpoint
	}

	weight, err := finite("weight", raw.Weight)
	if err != nil {
		return FlowRecord{}, fmt.Errorf("flow %s->%s: %w", source, target, err)
	}
	if weight < 0 {
		return FlowRecord{}, fmt.Errorf("flow %s->%s: %w: %g", source, target, ErrNegativeWeight, weight)
	}

	return FlowRecord{Source: source, Target: target, Weight: weight}, nil
}

// ValidateClusters validates a batch in input order, dropping malformed records.
// Duplicate sectors are kept and reported.
func ValidateClusters(raws []RawCluster) ([]ClusterRecord, ClusterDiagnostics) {
	diag := ClusterDiagnostics{Received: len(raws)}
	records := make([]ClusterRecord, 0, len(raws))
	seen := make(map[string]bool, len(raws))

	for _, raw := range raws {
		record, err := ValidateCluster(raw)
		if err != nil {
			diag.Excluded++
			diag.ExclusionReasons = countReason(diag.ExclusionReasons, err)
			continue
		}

		if seen[record.Sector] {
			diag.DuplicateSectors = appendUnique(diag.DuplicateSectors, record.Sector)
		}
		seen[record.Sector] = true

		if !record.Performance.Known() {
			diag.UnrecognizedLabels++
		}
		records = append(records, record)
	}

	diag.Accepted = len(records)
	return records, diag
}

// ValidateFlows validates a batch in input order, dropping malformed records
func ValidateFlows(raws []RawFlow) ([]FlowRecord, FlowDiagnostics) {
	diag := FlowDiagnostics{Received: len(raws)}
	records := make([]FlowRecord, 0, len(raws))

	for _, raw := range raws {
		record, err := ValidateFlow(raw)
		if err != nil {
			diag.Excluded++
			diag.ExclusionReasons = countReason(diag.ExclusionReasons, err)
			continue
		}

		if record.SelfLoop() {
			diag.SelfLoops++
			diag.SelfLoopSectors = appendUnique(diag.SelfLoopSectors, record.Source)
		}
		records = append(records, record)
	}

	diag.Accepted = len(records)
	return records, diag
}

func finite(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNonFinite, field)
	}
	return *v, nil
}

func clusterID(v *float64) (int, error) {
	id, err := finite("cluster", v)
	if err != nil {
		return 0, err
	}
	if id < 0 || id != math.Trunc(id) || id >= math.MaxInt+1 {
		return 0, fmt.Errorf("%w: %g", ErrInvalidClusterID, id)
	}
	return int(id), nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// reasonKey collapses a wrapped validation error to its sentinel for counting
func reasonKey(err error) string {
	for _, sentinel := range []error{
		ErrEmptySector,
		ErrEmptyEndpoint,
		ErrMissingField,
		ErrNonFinite,
		ErrNegativeWeight,
		ErrInvalidClusterID,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "other"
}

func countReason(reasons map[string]int, err error) map[string]int {
	if reasons == nil {
		reasons = make(map[string]int)
	}
	reasons[reasonKey(err)]++
	return reasons
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
