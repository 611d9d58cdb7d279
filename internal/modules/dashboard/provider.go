// Package dashboard assembles per-cycle snapshots of the cluster and rotation views.
package dashboard

import (
	"context"

	"github.com/aristath/sectorflow/internal/domain"
)

// DataProvider supplies raw analytic records.
// Implementations absorb their own failures and return an empty slice instead.
type DataProvider interface {
	GetClusterRecords(ctx context.Context) []domain.RawCluster
	GetFlowRecords(ctx context.Context) []domain.RawFlow
}
