package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts
const (
	DBConnectionTimeout  = 10 * time.Second
	DBQueryTimeout       = 15 * time.Second
	DBHealthCheckTimeout = 5 * time.Second
	DBConnMaxLifetime    = 1 * time.Hour
	DBConnMaxIdleTime    = 30 * time.Minute
)

// Operation Durations
const (
	CORSMaxAge = 300 // in seconds

	// RateLimiterCleanupInterval is how often idle per-client limiters are evicted
	RateLimiterCleanupInterval = 5 * time.Minute

	// RateLimiterIdleTTL is how long a client's limiter survives without requests
	RateLimiterIdleTTL = 10 * time.Minute

	// RetryAfterSeconds is sent with 429 responses
	RetryAfterSeconds = 1
)
