package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/sectorflow/internal/clientdata"
	"github.com/aristath/sectorflow/internal/clients/analytics"
	"github.com/aristath/sectorflow/internal/config"
	"github.com/aristath/sectorflow/internal/events"
	"github.com/aristath/sectorflow/internal/modules/clusters"
	"github.com/aristath/sectorflow/internal/modules/dashboard"
	"github.com/aristath/sectorflow/internal/scheduler"
)

// InitializeServices builds repositories, clients and services on top of the databases
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	if container.CacheDB != nil {
		container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())
	}

	container.AnalyticsClient = analytics.NewClient(analytics.Config{
		BaseURL:      cfg.Analytics.BaseURL,
		ClustersPath: cfg.Analytics.ClustersPath,
		RotationPath: cfg.Analytics.RotationPath,
		Timeout:      cfg.Analytics.Timeout,
	}, container.ClientDataRepo, log)

	container.EventBus = events.NewBus(log)

	container.Dashboard = dashboard.NewService(
		container.AnalyticsClient,
		clusters.NewProjector(cfg.UnknownCategory),
		container.EventBus,
		log,
	)
	container.Dashboard.SetHistoryLimit(cfg.RotationHistoryLimit)

	container.Scheduler = scheduler.New(log)

	return nil
}
