package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes JSON payloads over Redis pub/sub. Only subscribers
// connected at publish time receive the message, which is exactly the contract
// for ephemeral telemetry such as partner GPS pings.
type RedisNotifier struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisNotifier(rdb *redis.Client, prefix string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, prefix: prefix}
}

func (n *RedisNotifier) Publish(ctx context.Context, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for channel %s: %w", key, err)
	}

	if err := n.rdb.Publish(ctx, n.prefix+key, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", key, err)
	}
	return nil
}
