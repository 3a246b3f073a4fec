package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "rentora"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisURL = "redis://localhost:6379"

	DefaultKafkaBrokers       = "localhost:9092"
	DefaultBookingEventsTopic = "booking.events"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultConfirmLockTTL    = 5 * time.Second
	DefaultLockRetryAttempts = 3
	DefaultLockRetryBackoff  = 150 * time.Millisecond

	DefaultGpsRateLimitRequests = 6
	DefaultGpsRateLimitWindow   = 60 * time.Second

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
