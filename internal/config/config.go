// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aristath/sectorflow/internal/modules/clusters"
	"github.com/aristath/sectorflow/internal/utils"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the cache database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	Analytics AnalyticsConfig

	CacheEnabled         bool
	RefreshSchedule      string
	RefreshTimeout       time.Duration
	CleanupSchedule      string
	CheckpointSchedule   string
	RotationHistoryLimit int
	UnknownCategory      clusters.ColorCategory
	CORSAllowedOrigins   []string
}

// AnalyticsConfig points at the analytics backend that computes clusters and flows
type AnalyticsConfig struct {
	BaseURL      string
	ClustersPath string
	RotationPath string
	Timeout      time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("SECTORFLOW_DATA_DIR", "data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	unknown, err := clusters.ParseColorCategory(getEnv("UNKNOWN_PERFORMANCE_CATEGORY", string(clusters.ColorNeutral)))
	if err != nil {
		return nil, fmt.Errorf("invalid UNKNOWN_PERFORMANCE_CATEGORY: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("GO_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Analytics: AnalyticsConfig{
			BaseURL:      getEnv("ANALYTICS_BASE_URL", "http://127.0.0.1:8000"),
			ClustersPath: getEnv("ANALYTICS_CLUSTERS_PATH", "/clusters"),
			RotationPath: getEnv("ANALYTICS_ROTATION_PATH", "/rotation"),
			Timeout:      getEnvAsDuration("ANALYTICS_TIMEOUT", 10*time.Second),
		},
		CacheEnabled:         getEnvAsBool("CACHE_ENABLED", true),
		RefreshSchedule:      getEnv("REFRESH_SCHEDULE", "@every 5m"),
		RefreshTimeout:       getEnvAsDuration("REFRESH_TIMEOUT", 30*time.Second),
		CleanupSchedule:      getEnv("CLEANUP_SCHEDULE", "0 0 3 * * *"),
		CheckpointSchedule:   getEnv("CHECKPOINT_SCHEDULE", "0 */30 * * * *"),
		RotationHistoryLimit: getEnvAsInt("ROTATION_HISTORY_LIMIT", 200),
		UnknownCategory:      unknown,
		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		if err := os.MkdirAll(absDataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks that configuration values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT out of range: %d", c.Port)
	}

	u, err := url.Parse(c.Analytics.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ANALYTICS_BASE_URL must be an absolute URL, got %q", c.Analytics.BaseURL)
	}
	if !strings.HasPrefix(c.Analytics.ClustersPath, "/") || !strings.HasPrefix(c.Analytics.RotationPath, "/") {
		return fmt.Errorf("analytics paths must start with /")
	}
	if c.Analytics.Timeout <= 0 {
		return fmt.Errorf("ANALYTICS_TIMEOUT must be positive")
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.RefreshSchedule); err != nil {
		return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", c.RefreshSchedule, err)
	}
	if _, err := parser.Parse(c.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid CLEANUP_SCHEDULE %q: %w", c.CleanupSchedule, err)
	}
	if _, err := parser.Parse(c.CheckpointSchedule); err != nil {
		return fmt.Errorf("invalid CHECKPOINT_SCHEDULE %q: %w", c.CheckpointSchedule, err)
	}

	if c.RotationHistoryLimit <= 0 {
		return fmt.Errorf("ROTATION_HISTORY_LIMIT must be positive")
	}

	return nil
}

// CachePath returns the cache database location
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return utils.ParseCSV(value)
}
