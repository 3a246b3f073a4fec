package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"rentora/pkg/client"
	"rentora/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisURL string

	KafkaBrokers       []string
	BookingEventsTopic string

	Port string

	ConfirmLockTTL    time.Duration
	LockRetryAttempts int
	LockRetryBackoff  time.Duration

	GpsRateLimitRequests int
	GpsRateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// Best-effort .env for local development; real deployments set the environment.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisURL: getEnvStr(EnvRedisURL, DefaultRedisURL),

		KafkaBrokers:       splitAndTrim(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)),
		BookingEventsTopic: getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),

		Port: getEnvStr(EnvPort, DefaultPort),

		ConfirmLockTTL:    getEnvDuration(EnvConfirmLockTTL, DefaultConfirmLockTTL),
		LockRetryAttempts: getEnvNum(EnvLockRetryAttempts, DefaultLockRetryAttempts),
		LockRetryBackoff:  getEnvDuration(EnvLockRetryBackoff, DefaultLockRetryBackoff),

		GpsRateLimitRequests: getEnvNum(EnvGpsRateLimitRequests, DefaultGpsRateLimitRequests),
		GpsRateLimitWindow:   getEnvDuration(EnvGpsRateLimitWindow, DefaultGpsRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisURL)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	if cfg.RedisURL == "" {
		errs = append(errs, "RedisURL cannot be empty")
	} else if !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		errs = append(errs, fmt.Sprintf("RedisURL must start with 'redis://' or 'rediss://', got: %s", cfg.RedisURL))
	}

	if len(cfg.KafkaBrokers) == 0 {
		errs = append(errs, "KafkaBrokers cannot be empty")
	}
	if cfg.BookingEventsTopic == "" {
		errs = append(errs, "BookingEventsTopic cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.ConfirmLockTTL <= 0 {
		errs = append(errs, fmt.Sprintf("ConfirmLockTTL must be positive, got: %s", cfg.ConfirmLockTTL))
	}
	if cfg.LockRetryAttempts < 1 {
		errs = append(errs, fmt.Sprintf("LockRetryAttempts must be at least 1, got: %d", cfg.LockRetryAttempts))
	}
	if cfg.LockRetryBackoff < 0 {
		errs = append(errs, fmt.Sprintf("LockRetryBackoff cannot be negative, got: %s", cfg.LockRetryBackoff))
	}
	if cfg.GpsRateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("GpsRateLimitRequests must be positive, got: %d", cfg.GpsRateLimitRequests))
	}
	if cfg.GpsRateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("GpsRateLimitWindow must be positive, got: %s", cfg.GpsRateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_url", redactURI(cfg.RedisURL),
		"kafka_brokers", cfg.KafkaBrokers,
		"booking_events_topic", cfg.BookingEventsTopic,
		"port", cfg.Port,
		"confirm_lock_ttl", cfg.ConfirmLockTTL,
		"lock_retry_attempts", cfg.LockRetryAttempts,
		"lock_retry_backoff", cfg.LockRetryBackoff,
		"gps_rate_limit_requests", cfg.GpsRateLimitRequests,
		"gps_rate_limit_window", cfg.GpsRateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactURI(uri string) string {
	credentialRegex := regexp.MustCompile(`^(\w+(\+srv)?://)[^@/]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
