package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// SlowOperationThreshold is the duration above which OperationTimer warns
const SlowOperationThreshold = 10 * time.Second

// OperationTimer returns a func that logs the elapsed time since the call.
//
// Usage:
//
//	defer utils.OperationTimer("fetch_clusters", log)()
func OperationTimer(operation string, log zerolog.Logger) func() time.Duration {
	start := time.Now()

	return func() time.Duration {
		duration := time.Since(start)

		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", duration).
			Msg("Operation completed")

		if duration > SlowOperationThreshold {
			log.Warn().
				Str("operation", operation).
				Dur("duration", duration).
				Msg("Slow operation detected")
		}
		return duration
	}
}
