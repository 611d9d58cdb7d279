package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func rawCluster(sector string, label string, cluster float64) RawCluster {
	return RawCluster{
		Sector:           sector,
		ShortTermReturn:  f64(0.04),
		RelativeStrength: f64(0.01),
		Volatility:       f64(0.012),
		Performance:      label,
		Cluster:          f64(cluster),
	}
}

func rawFlow(source, target string, weight float64) RawFlow {
	return RawFlow{Source: source, Target: target, Weight: f64(weight)}
}

func TestValidateCluster(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawCluster
		wantErr error
	}{
		{
			name: "valid record",
			raw:  rawCluster("Technology", "Outperforming", 2),
		},
		{
			name:    "empty sector",
			raw:     rawCluster("", "Neutral", 0),
			wantErr: ErrEmptySector,
		},
		{
			name:    "whitespace sector",
			raw:     rawCluster("   ", "Neutral", 0),
			wantErr: ErrEmptySector,
		},
		{
			name: "missing volatility",
			raw: func() RawCluster {
				r := rawCluster("Energy", "Neutral", 0)
				r.Volatility = nil
				return r
			}(),
			wantErr: ErrMissingField,
		},
		{
			name: "NaN return",
			raw: func() RawCluster {
				r := rawCluster("Energy", "Neutral", 0)
				r.ShortTermReturn = f64(math.NaN())
				return r
			}(),
			wantErr: ErrNonFinite,
		},
		{
			name: "infinite relative strength",
			raw: func() RawCluster {
				r := rawCluster("Energy", "Neutral", 0)
				r.RelativeStrength = f64(math.Inf(-1))
				return r
			}(),
			wantErr: ErrNonFinite,
		},
		{
			name:    "negative cluster id",
			raw:     rawCluster("Energy", "Neutral", -1),
			wantErr: ErrInvalidClusterID,
		},
		{
			name:    "fractional cluster id",
			raw:     rawCluster("Energy", "Neutral", 1.5),
			wantErr: ErrInvalidClusterID,
		},
		{
			name: "missing cluster id",
			raw: func() RawCluster {
				r := rawCluster("Energy", "Neutral", 0)
				r.Cluster = nil
				return r
			}(),
			wantErr: ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := ValidateCluster(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Technology", record.Sector)
			assert.Equal(t, 0.04, record.ShortTermReturn)
			assert.Equal(t, 0.01, record.RelativeStrength)
			assert.Equal(t, 0.012, record.Volatility)
			assert.Equal(t, PerformanceOutperforming, record.Performance)
			assert.Equal(t, 2, record.ClusterID)
		})
	}
}

func TestValidateCluster_KeepsSectorVerbatim(t *testing.T) {
	record, err := ValidateCluster(rawCluster("  Energy ", "Neutral", 0))
	require.NoError(t, err)
	assert.Equal(t, "  Energy ", record.Sector)
}

func TestValidateCluster_LargeClusterID(t *testing.T) {
	record, err := ValidateCluster(rawCluster("Energy", "Neutral", 1<<40))
	require.NoError(t, err)
	assert.Equal(t, 1<<40, record.ClusterID)

	_, err = ValidateCluster(rawCluster("Energy", "Neutral", 1e300))
	assert.ErrorIs(t, err, ErrInvalidClusterID)
}

func TestValidateFlows_WhitespaceVariantsAreDistinct(t *testing.T) {
	records, diag := ValidateFlows([]RawFlow{
		rawFlow("Tech", "Energy", 1),
		rawFlow("Tech ", "Energy", 2),
		rawFlow("\t", "Energy", 3),
	})

	require.Len(t, records, 2)
	assert.Equal(t, "Tech", records[0].Source)
	assert.Equal(t, "Tech ", records[1].Source)
	assert.Equal(t, 1, diag.Excluded)
}

func TestValidateFlow(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawFlow
		wantErr error
	}{
		{name: "valid", raw: rawFlow("A", "B", 5)},
		{name: "zero weight", raw: rawFlow("A", "B", 0)},
		{name: "self loop is valid", raw: rawFlow("A", "A", 1)},
		{name: "negative weight", raw: rawFlow("A", "B", -1), wantErr: ErrNegativeWeight},
		{name: "empty source", raw: rawFlow("", "B", 1), wantErr: ErrEmptyEndpoint},
		{name: "empty target", raw: rawFlow("A", " ", 1), wantErr: ErrEmptyEndpoint},
		{name: "NaN weight", raw: rawFlow("A", "B", math.NaN()), wantErr: ErrNonFinite},
		{name: "infinite weight", raw: rawFlow("A", "B", math.Inf(1)), wantErr: ErrNonFinite},
		{name: "missing weight", raw: RawFlow{Source: "A", Target: "B"}, wantErr: ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := ValidateFlow(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw.Source, record.Source)
			assert.Equal(t, *tt.raw.Weight, record.Weight)
		})
	}
}

func TestValidateClusters(t *testing.T) {
	raws := []RawCluster{
		rawCluster("Technology", "Outperforming", 2),
		rawCluster("", "Neutral", 0),
		rawCluster("Energy", "Underperforming", 0),
		rawCluster("Technology", "Outperforming", 2),
		rawCluster("Utilities", "Sideways", 1),
		rawCluster("Materials", "Neutral", -3),
	}

	records, diag := ValidateClusters(raws)

	require.Len(t, records, 4)
	assert.Equal(t, []string{"Technology", "Energy", "Technology", "Utilities"}, sectors(records))

	assert.Equal(t, 6, diag.Received)
	assert.Equal(t, 4, diag.Accepted)
	assert.Equal(t, 2, diag.Excluded)
	assert.Equal(t, map[string]int{
		ErrEmptySector.Error():      1,
		ErrInvalidClusterID.Error(): 1,
	}, diag.ExclusionReasons)
	assert.Equal(t, []string{"Technology"}, diag.DuplicateSectors)
	assert.Equal(t, 1, diag.UnrecognizedLabels)
}

func TestValidateClusters_Empty(t *testing.T) {
	records, diag := ValidateClusters(nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, ClusterDiagnostics{}, diag)
}

func TestValidateFlows(t *testing.T) {
	raws := []RawFlow{
		rawFlow("A", "B", 5),
		rawFlow("A", "B", -1),
		rawFlow("C", "C", 2),
		rawFlow("", "B", 1),
		rawFlow("C", "C", 4),
		{Source: "A", Target: "C"},
	}

	records, diag := ValidateFlows(raws)

	require.Len(t, records, 3)
	assert.Equal(t, FlowRecord{Source: "A", Target: "B", Weight: 5}, records[0])
	assert.Equal(t, FlowRecord{Source: "C", Target: "C", Weight: 2}, records[1])
	assert.Equal(t, FlowRecord{Source: "C", Target: "C", Weight: 4}, records[2])

	assert.Equal(t, 6, diag.Received)
	assert.Equal(t, 3, diag.Accepted)
	assert.Equal(t, 3, diag.Excluded)
	assert.Equal(t, 1, diag.ExclusionReasons[ErrNegativeWeight.Error()])
	assert.Equal(t, 1, diag.ExclusionReasons[ErrEmptyEndpoint.Error()])
	assert.Equal(t, 1, diag.ExclusionReasons[ErrMissingField.Error()])
	assert.Equal(t, 2, diag.SelfLoops)
	assert.Equal(t, []string{"C"}, diag.SelfLoopSectors)
}

func TestValidateFlows_NegativeWeightOnly(t *testing.T) {
	records, diag := ValidateFlows([]RawFlow{rawFlow("A", "B", -1)})
	assert.Empty(t, records)
	assert.Equal(t, 1, diag.Excluded)
	assert.Equal(t, 0, diag.Accepted)
}

func sectors(records []ClusterRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Sector
	}
	return out
}
