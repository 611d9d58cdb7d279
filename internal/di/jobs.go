package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/sectorflow/internal/clientdata"
	"github.com/aristath/sectorflow/internal/config"
	"github.com/aristath/sectorflow/internal/database"
	"github.com/aristath/sectorflow/internal/modules/dashboard"
)

// RegisterJobs registers all scheduled jobs.
// Returns JobInstances for manual triggering.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil || container.Dashboard == nil {
		return nil, fmt.Errorf("container is not initialized")
	}

	instances := &JobInstances{
		Refresh: dashboard.NewRefreshJob(container.Dashboard, cfg.RefreshTimeout),
	}
	if err := container.Scheduler.AddJob(cfg.RefreshSchedule, instances.Refresh); err != nil {
		return nil, fmt.Errorf("failed to register refresh job: %w", err)
	}

	if container.ClientDataRepo != nil {
		instances.Cleanup = clientdata.NewCleanupJob(container.ClientDataRepo, log)
		if err := container.Scheduler.AddJob(cfg.CleanupSchedule, instances.Cleanup); err != nil {
			return nil, fmt.Errorf("failed to register cleanup job: %w", err)
		}
	}

	if container.CacheDB != nil {
		instances.Checkpoint = database.NewCheckpointJob(log, container.CacheDB)
		if err := container.Scheduler.AddJob(cfg.CheckpointSchedule, instances.Checkpoint); err != nil {
			return nil, fmt.Errorf("failed to register checkpoint job: %w", err)
		}
	}

	log.Info().
		Bool("cleanup", instances.Cleanup != nil).
		Bool("checkpoint", instances.Checkpoint != nil).
		Msg("Jobs registered")
	return instances, nil
}
