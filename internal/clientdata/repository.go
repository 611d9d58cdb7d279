// Package clientdata provides persistent caching for external API client responses.
// All data is stored as JSON blobs with expiration timestamps, so a client can fall
// back to the last good payload when its upstream is unreachable.
package clientdata

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Cache tables, one per upstream payload kind.
const (
	TableAnalyticsClusters = "analytics_clusters"
	TableAnalyticsRotation = "analytics_rotation"
)

// AllTables lists all cache tables for schema and cleanup operations.
var AllTables = []string{
	TableAnalyticsClusters,
	TableAnalyticsRotation,
}

// validTables is a set for O(1) table name validation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Repository provides cache operations for client data.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InitSchema creates the cache tables if they do not exist.
func InitSchema(db *sql.DB) error {
	for _, table := range AllTables {
		stmt := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %[1]s (%[2]s TEXT PRIMARY KEY, data TEXT NOT NULL, expires_at INTEGER NOT NULL);
CREATE INDEX IF NOT EXISTS idx_%[1]s_expires ON %[1]s(expires_at);`,
			table, getKeyColumn(table),
		)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// validateTable ensures the table name is in our allowed list.
// This prevents SQL injection through table names.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// getKeyColumn returns the primary key column name for a table.
func getKeyColumn(table string) string {
	return "endpoint"
}

// Store saves data with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert data.
func (r *Repository) Store(table, key string, data interface{}, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()
	keyCol := getKeyColumn(table)

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s, data, expires_at) VALUES (?, ?, ?)",
		table, keyCol,
	)

	if _, err := r.db.Exec(query, key, string(jsonData), expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}

	return nil
}

// Get returns data regardless of expiration status.
// Use this as a fallback when API calls fail - stale data is better than no data.
// Returns nil, nil if the key doesn't exist.
func (r *Repository) Get(table, key string) (json.RawMessage, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE %s = ?", table, getKeyColumn(table))

	var data string
	err := r.db.QueryRow(query, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data from %s: %w", table, err)
	}

	return json.RawMessage(data), nil
}

// DeleteExpiredBefore removes all rows that expired before the cutoff.
func (r *Repository) DeleteExpiredBefore(table string, cutoff time.Time) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", table)

	result, err := r.db.Exec(query, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", table, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}

	return deleted, nil
}

// DeleteAllExpiredBefore removes entries that expired before the cutoff from all tables.
func (r *Repository) DeleteAllExpiredBefore(cutoff time.Time) (map[string]int64, error) {
	results := make(map[string]int64)

	for _, table := range AllTables {
		deleted, err := r.DeleteExpiredBefore(table, cutoff)
		if err != nil {
			return results, err
		}
		results[table] = deleted
	}

	return results, nil
}
