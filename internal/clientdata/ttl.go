package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// TTLAnalytics bounds how long a last-good analytics payload counts as fresh.
	// Expired rows still serve as a stale fallback until the cleanup job purges them.
	TTLAnalytics = 6 * time.Hour

	// TTLStaleRetention is how long past expiry a payload survives cleanup
	TTLStaleRetention = 7 * 24 * time.Hour
)
