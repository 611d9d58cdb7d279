package testing

import (
	"context"
	"sync"

	"github.com/aristath/sectorflow/internal/domain"
)

// MockDataProvider is a mock implementation of dashboard.DataProvider for testing.
// Unset or failed branches return an empty, non-nil slice, like the real client.
type MockDataProvider struct {
	mu           sync.RWMutex
	clusters     []domain.RawCluster
	flows        []domain.RawFlow
	clusterCalls int
	flowCalls    int
}

// NewMockDataProvider creates a provider serving the given records
func NewMockDataProvider(clusters []domain.RawCluster, flows []domain.RawFlow) *MockDataProvider {
	return &MockDataProvider{clusters: clusters, flows: flows}
}

// SetClusters sets the cluster records to return
func (m *MockDataProvider) SetClusters(clusters []domain.RawCluster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters = clusters
}

// SetFlows sets the flow records to return
func (m *MockDataProvider) SetFlows(flows []domain.RawFlow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows = flows
}

// GetClusterRecords returns a copy of the configured cluster records
func (m *MockDataProvider) GetClusterRecords(ctx context.Context) []domain.RawCluster {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusterCalls++
	return append([]domain.RawCluster{}, m.clusters...)
}

// GetFlowRecords returns a copy of the configured flow records
func (m *MockDataProvider) GetFlowRecords(ctx context.Context) []domain.RawFlow {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flowCalls++
	return append([]domain.RawFlow{}, m.flows...)
}

// Calls reports how many times each branch was fetched
func (m *MockDataProvider) Calls() (clusters, flows int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clusterCalls, m.flowCalls
}
