// Package cache holds the Redis-backed counters used for request throttling.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCounter keeps fixed-window request counters in Redis.
type RedisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter creates the client lazily; connections are dialed on first use.
func NewRedisCounter(addr string) *RedisCounter {
	return &RedisCounter{rdb: redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})}
}

// Incr increments key and starts its expiry window on the first hit.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return n, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n, nil
}

func (c *RedisCounter) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis %s: %w", c.rdb.Options().Addr, err)
	}
	return nil
}

func (c *RedisCounter) Close() error {
	return c.rdb.Close()
}
