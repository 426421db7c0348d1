package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces gateway cache entries within a shared Redis instance.
const keyPrefix = "mcpgate:cache:"

var _ Store = (*RedisStore)(nil)

// RedisStore is the durable cache tier. Entry expiry is delegated to Redis
// TTLs, so an expired entry is absent by the time it is read back.
// NewRedisStore should be used to create instances of RedisStore.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client as a cache tier.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value and its remaining TTL for key.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	pipe := r.client.Pipeline()
	getCmd := pipe.Get(ctx, keyPrefix+key)
	ttlCmd := pipe.TTL(ctx, keyPrefix+key)

	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, false, nil
		}
		return nil, 0, false, fmt.Errorf("redis get '%s': %w", key, err)
	}

	value, err := getCmd.Bytes()
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get '%s': %w", key, err)
	}

	ttl, err := ttlCmd.Result()
	if err != nil || ttl < 0 {
		// Entries are always written with a TTL; a missing one means the key
		// was written by something else. Treat it as expiring now.
		ttl = 0
	}

	return value, ttl, true, nil
}

// Set stores value under key with the given TTL.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set '%s': %w", key, err)
	}
	return nil
}
