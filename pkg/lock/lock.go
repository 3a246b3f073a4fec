// Package lock provides a distributed mutual-exclusion lock backed by a
// shared Redis instance, so exclusion holds across service replicas.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rentora/pkg/logger"
)

// ErrNotAcquired is returned when the retry budget is exhausted without
// obtaining the lock. Callers map it to a "busy" response, distinct from a
// domain conflict.
var ErrNotAcquired = errors.New("lock not acquired")

type Locker interface {
	// WithLock runs fn while holding an exclusive lease on key. The lock is
	// released on every exit path; a crashed holder is evicted by lease expiry.
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

type RedisLocker struct {
	rdb      *redis.Client
	log      *logger.Logger
	attempts int
	backoff  time.Duration
}

func NewRedisLocker(rdb *redis.Client, log *logger.Logger, attempts int, backoff time.Duration) *RedisLocker {
	if attempts < 1 {
		attempts = 1
	}
	return &RedisLocker{
		rdb:      rdb,
		log:      log,
		attempts: attempts,
		backoff:  backoff,
	}
}

// releaseScript deletes the lock only when the stored owner token still
// matches, so a holder whose lease expired cannot release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *RedisLocker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	acquired := false
	for attempt := 0; attempt < l.attempts; attempt++ {
		ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			acquired = true
			break
		}
		if attempt == l.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.backoff):
		}
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrNotAcquired, key)
	}

	defer func() {
		// Release must run even when the caller's context is already done.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		released, err := releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Int()
		if err != nil {
			l.log.Warn("Failed to release lock", "key", key, "error", err)
			return
		}
		if released == 0 {
			l.log.Warn("Lock lease expired before release", "key", key)
		}
	}()

	return fn(ctx)
}
