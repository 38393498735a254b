package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 2 * time.Second

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
	Timeout  time.Duration
}

// RedisCache stores JSON encoded values in Redis. Expiry is delegated to
// Redis itself through the key TTL.
type RedisCache[T any] struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// NewRedisCache connects to Redis and verifies the connection with a PING.
func NewRedisCache[T any](ctx context.Context, opts RedisOptions, logger *slog.Logger) (*RedisCache[T], error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	c := newRedisCacheFromClient[T](client, opts, logger)

	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return c, nil
}

func newRedisCacheFromClient[T any](client *redis.Client, opts RedisOptions, logger *slog.Logger) *RedisCache[T] {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	return &RedisCache[T]{
		client:  client,
		prefix:  opts.Prefix,
		ttl:     opts.TTL,
		timeout: timeout,
		logger:  logger,
	}
}

func (c *RedisCache[T]) key(key string) string {
	return c.prefix + key
}

// Get retrieves a value from Redis. Any failure is reported as a miss.
func (c *RedisCache[T]) Get(key string) (T, bool) {
	var zero T

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Redis get failed", "component", "cache", "cache_key", key, "error", err)
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", "component", "cache", "cache_key", key, "error", err)
		return zero, false
	}
	return value, true
}

// Set stores a value with the configured TTL.
func (c *RedisCache[T]) Set(key string, data T) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.Error("Failed to encode cache entry", "component", "cache", "cache_key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed", "component", "cache", "cache_key", key, "error", err)
	}
}

// Delete removes a key from Redis
func (c *RedisCache[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warn("Redis delete failed", "component", "cache", "cache_key", key, "error", err)
	}
}

// Size counts the keys under this cache's prefix.
func (c *RedisCache[T]) Size() int {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	count := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Redis scan failed", "component", "cache", "error", err)
	}
	return count
}

// Ping reports whether Redis is reachable.
func (c *RedisCache[T]) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool
func (c *RedisCache[T]) Close() error {
	return c.client.Close()
}
