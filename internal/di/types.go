// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/sectorflow/internal/clientdata"
	"github.com/aristath/sectorflow/internal/clients/analytics"
	"github.com/aristath/sectorflow/internal/database"
	"github.com/aristath/sectorflow/internal/events"
	"github.com/aristath/sectorflow/internal/modules/dashboard"
	"github.com/aristath/sectorflow/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is the single source of truth for service instances.
type Container struct {
	// Cache database; nil when CACHE_ENABLED=false
	CacheDB *database.DB

	ClientDataRepo  *clientdata.Repository
	AnalyticsClient *analytics.Client
	EventBus        *events.Bus
	Dashboard       *dashboard.Service
	Scheduler       *scheduler.Scheduler
}

// JobInstances holds the scheduled jobs for manual triggering
type JobInstances struct {
	Refresh    *dashboard.RefreshJob
	Cleanup    *clientdata.CleanupJob  // nil when the cache is disabled
	Checkpoint *database.CheckpointJob // nil when the cache is disabled
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
