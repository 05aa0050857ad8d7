// Package redis implements the key-value cache layer in front of hot graph
// reads.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"socialgraph/infrastructure/config"
)

// Cache is a read-through/write-invalidate cache over Redis. Every operation
// degrades gracefully: a cache-store failure is logged at warning level and
// surfaces as a miss (reads) or a no-op (writes), never as an error to the
// caller. A circuit breaker keeps a down Redis from costing a timeout per
// call.
type Cache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// scanPageSize bounds each SCAN page so pattern deletion never blocks the
// store with a single unbounded sweep.
const scanPageSize = 100

// NewCache creates the cache client. The connection is established by
// Connect, which must run before the service accepts traffic.
func NewCache(cfg *config.Config, logger *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "redis",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Cache{client: client, breaker: breaker, logger: logger}
}

// Connect probes the store eagerly. Lazy connect-on-first-use is deliberately
// not supported; readiness is decided at startup.
func (c *Cache) Connect(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get returns the value for key, or ok=false on miss or failure.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	out, err := c.breaker.Execute(func() (any, error) {
		val, err := c.client.Get(ctx, key).Result()
		if err == redis.Nil {
			// A miss is a normal outcome, not a breaker-visible failure.
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return val, nil
	})
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	if out == nil {
		return "", false
	}
	return out.(string), true
}

// Set stores value under key with an explicit TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.client.SetEx(ctx, key, value, ttl).Err()
	})
	if err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		c.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// DeletePattern removes every key matching the glob, scanning the keyspace
// in bounded-size pages.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	_, err := c.breaker.Execute(func() (any, error) {
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, pattern, scanPageSize).Result()
			if err != nil {
				return nil, err
			}
			if len(keys) > 0 {
				if err := c.client.Del(ctx, keys...).Err(); err != nil {
					return nil, err
				}
			}
			if next == 0 {
				return nil, nil
			}
			cursor = next
		}
	})
	if err != nil {
		c.logger.Warn("cache pattern delete failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// GetMany returns the present keys only.
func (c *Cache) GetMany(ctx context.Context, keys []string) map[string]string {
	if len(keys) == 0 {
		return map[string]string{}
	}
	out, err := c.breaker.Execute(func() (any, error) {
		return c.client.MGet(ctx, keys...).Result()
	})
	if err != nil {
		c.logger.Warn("cache multi-get failed", zap.Int("keys", len(keys)), zap.Error(err))
		return map[string]string{}
	}

	values := out.([]any)
	present := make(map[string]string, len(keys))
	for i, v := range values {
		if s, ok := v.(string); ok {
			present[keys[i]] = s
		}
	}
	return present
}

// SetMany stores all entries with one TTL in a single pipelined round trip.
// The batch is atomic with respect to network round trips only; concurrent
// readers may observe individual keys as they land.
func (c *Cache) SetMany(ctx context.Context, entries map[string]string, ttl time.Duration) {
	if len(entries) == 0 {
		return
	}
	_, err := c.breaker.Execute(func() (any, error) {
		pipe := c.client.Pipeline()
		for key, value := range entries {
			pipe.SetEx(ctx, key, value, ttl)
		}
		_, err := pipe.Exec(ctx)
		return nil, err
	})
	if err != nil {
		c.logger.Warn("cache multi-set failed", zap.Int("entries", len(entries)), zap.Error(err))
	}
}

// Increment adds amount to the counter at key and returns the new value, or
// 0 on failure.
func (c *Cache) Increment(ctx context.Context, key string, amount int64) int64 {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.client.IncrBy(ctx, key, amount).Result()
	})
	if err != nil {
		c.logger.Warn("cache increment failed", zap.String("key", key), zap.Error(err))
		return 0
	}
	return out.(int64)
}

// GetTTL returns the remaining TTL for key. A negative duration means the
// key has no expiry or does not exist; failures report -2s.
func (c *Cache) GetTTL(ctx context.Context, key string) time.Duration {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.client.TTL(ctx, key).Result()
	})
	if err != nil {
		c.logger.Warn("cache ttl lookup failed", zap.String("key", key), zap.Error(err))
		return -2 * time.Second
	}
	return out.(time.Duration)
}
