package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/sectorflow/internal/clientdata"
	"github.com/aristath/sectorflow/internal/config"
	"github.com/aristath/sectorflow/internal/database"
)

// InitializeDatabases opens the provider cache database and applies its schema.
// With the cache disabled the container carries no database.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	if !cfg.CacheEnabled {
		log.Info().Msg("Provider cache disabled")
		return container, nil
	}

	cacheDB, err := database.New(database.Config{
		Path:    cfg.CachePath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}

	if err := clientdata.InitSchema(cacheDB.Conn()); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}

	container.CacheDB = cacheDB
	log.Info().Str("path", cacheDB.Path()).Msg("Cache database initialized")
	return container, nil
}
