// Package main is the entry point for the sectorflow dashboard backend.
// It fetches sector cluster and capital-rotation records from the analytics
// backend, normalizes them into renderer-ready snapshots on a schedule, and
// serves them over HTTP, websocket and SSE.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/sectorflow/internal/config"
	"github.com/aristath/sectorflow/internal/di"
	"github.com/aristath/sectorflow/internal/server"
	"github.com/aristath/sectorflow/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("analytics", cfg.Analytics.BaseURL).
		Str("refresh_schedule", cfg.RefreshSchedule).
		Bool("cache", cfg.CacheEnabled).
		Msg("Starting sectorflow")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// First render cycle before serving, so clients rarely see the empty snapshot.
	// Failure here is not fatal; the scheduler retries on the next tick.
	if err := container.Scheduler.RunNow(jobs.Refresh); err != nil {
		log.Warn().Err(err).Msg("Initial render cycle failed")
	}

	container.Scheduler.Start()

	srv := server.New(server.Config{
		Log:                log,
		Port:               cfg.Port,
		DevMode:            cfg.DevMode,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RefreshTimeout:     cfg.RefreshTimeout,
		CacheEnabled:       cfg.CacheEnabled,
		Dashboard:          container.Dashboard,
		EventBus:           container.EventBus,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
