package dedup

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the durable backend. Keys expire server-side via TTL, so
// there is no sweep; a key simply stops existing after the retention
// window.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore creates a Redis-backed store with the given retention window.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention}
}

// IsUsed reports whether key exists and has not expired.
func (r *RedisStore) IsUsed(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n == 1, nil
}

// MarkUsed stores the insertion timestamp under key with the retention
// window as TTL. A repeated mark overwrites the value and restarts the TTL.
func (r *RedisStore) MarkUsed(ctx context.Context, key string) error {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := r.client.Set(ctx, key, ts, r.retention).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
