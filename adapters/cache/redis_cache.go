package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/walletauth/core"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis implementation of the DataCache interface.
// All keys live under one prefix so Reset can drop them without FLUSHDB.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis data cache for the given profile
func NewRedisCache(client *redis.Client, profile string) *RedisCache {
	if profile == "" {
		profile = "default"
	}
	return &RedisCache{
		client: client,
		prefix: "walletauth:cache:" + profile + ":",
	}
}

// Get retrieves a cached value
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}
	return value, nil
}

// Set stores a value with expiration time
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Reset deletes every key under the cache prefix
func (c *RedisCache) Reset(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to reset cache: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to reset cache: %w", err)
		}
	}
	return nil
}
