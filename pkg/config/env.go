package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisURL = "REDIS_URL"

	EnvKafkaBrokers        = "KAFKA_BROKERS"
	EnvBookingEventsTopic  = "BOOKING_EVENTS_TOPIC"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvConfirmLockTTL       = "CONFIRM_LOCK_TTL"
	EnvLockRetryAttempts    = "LOCK_RETRY_ATTEMPTS"
	EnvLockRetryBackoff     = "LOCK_RETRY_BACKOFF"
	EnvGpsRateLimitRequests = "GPS_RATE_LIMIT_REQUESTS"
	EnvGpsRateLimitWindow   = "GPS_RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
