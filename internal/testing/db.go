// Package testing provides shared test helpers: cache databases, record fixtures and mock providers.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/aristath/sectorflow/internal/clientdata"
	"github.com/aristath/sectorflow/internal/database"
)

// NewTestCacheDB opens a file-backed cache database with the client data schema applied.
// The file lives in t.TempDir(), so each test gets its own isolated database.
// The returned cleanup function is idempotent.
func NewTestCacheDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		t.Fatalf("Failed to create test cache database: %v", err)
	}

	if err := clientdata.InitSchema(db.Conn()); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to apply client data schema: %v", err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test cache database: %v", err)
		}
	}
}

// NewTestCacheRepo returns a client data repository over a fresh cache database.
// The database is closed when the test finishes.
func NewTestCacheRepo(t *testing.T) *clientdata.Repository {
	t.Helper()
	db, cleanup := NewTestCacheDB(t)
	t.Cleanup(cleanup)
	return clientdata.NewRepository(db.Conn())
}
