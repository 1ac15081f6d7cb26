package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores JSON-encoded values in Redis with a fixed TTL. Redis
// expires entries itself, so CleanExpired is a no-op; the type still
// satisfies Cache so callers can swap it for the in-process LRU.
type RedisCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

const redisTimeout = 2 * time.Second

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// NewRedisCache creates a Redis-backed cache. The prefix namespaces keys so
// multiple caches can share one Redis database.
func NewRedisCache[T any](client *redis.Client, prefix string, ttl time.Duration) *RedisCache[T] {
	return &RedisCache[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get retrieves a value from the cache
func (c *RedisCache[T]) Get(key string) (T, bool) {
	var zero T

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("Redis get failed", "key", key, "error", err)
		}
		return zero, false
	}

	var data T
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("Redis cache entry corrupt", "key", key, "error", err)
		return zero, false
	}
	return data, true
}

// Set stores a value in the cache
func (c *RedisCache[T]) Set(key string, data T) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Redis cache marshal failed", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := c.client.SetEx(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		slog.Warn("Redis set failed", "key", key, "error", err)
	}
}

// Delete removes a key from the cache
func (c *RedisCache[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		slog.Warn("Redis delete failed", "key", key, "error", err)
	}
}
