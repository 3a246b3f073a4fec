// Package ratelimit provides a fixed-window rate limiter backed by a shared
// Redis instance, so the limit holds across service replicas.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter interface {
	// Allow reports whether another call for key fits inside the current
	// window, counting the call when it does. A refused call returns
	// immediately; blocking and backoff are the caller's concern.
	Allow(ctx context.Context, key string, maxCount int, window time.Duration) (bool, error)
}

type RedisLimiter struct {
	rdb *redis.Client
}

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb}
}

// countScript increments the counter and starts the window in one atomic
// step. Only the first increment sets the TTL; later increments must not
// extend it or a steady stream of refused calls would never drain. Doing
// both in a script means a caller can never leave a counter without a TTL,
// which would refuse the key forever.
var countScript = redis.NewScript(`
local count = redis.call("incr", KEYS[1])
if count == 1 then
	redis.call("pexpire", KEYS[1], ARGV[1])
end
return count
`)

func (l *RedisLimiter) Allow(ctx context.Context, key string, maxCount int, window time.Duration) (bool, error) {
	count, err := countScript.Run(ctx, l.rdb, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to count rate-limit call for %s: %w", key, err)
	}
	return count <= int64(maxCount), nil
}
