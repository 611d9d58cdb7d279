package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sectorflow/internal/clientdata"
)

func TestNewTestCacheDB_AppliesSchema(t *testing.T) {
	db, cleanup := NewTestCacheDB(t)
	defer cleanup()

	for _, table := range clientdata.AllTables {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, table, name)
	}

	cleanup()
	cleanup()
}

func TestMockDataProvider_ReturnsCopies(t *testing.T) {
	m := NewMockDataProvider(NewClusterFixtures(), nil)

	got := m.GetClusterRecords(context.Background())
	require.Len(t, got, 2)
	got[0].Sector = "Mutated"

	assert.Equal(t, "Technology", m.GetClusterRecords(context.Background())[0].Sector)
	assert.NotNil(t, m.GetFlowRecords(context.Background()))

	clusters, flows := m.Calls()
	assert.Equal(t, 2, clusters)
	assert.Equal(t, 1, flows)
}
