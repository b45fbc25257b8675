package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/core"
)

// RedisCache is a Redis implementation of the VerdictCache interface.
// Expiry is handled server-side, so Cleanup is a no-op.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisCache creates a new Redis cache and verifies the connection
func NewRedisCache(addr, password string, db int, keyPrefix string, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", addr), zap.Int("db", db))

	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}, nil
}

func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// Get retrieves a cached verdict by message key
func (c *RedisCache) Get(ctx context.Context, key string) (*core.Verdict, bool) {
	payload, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Error("Failed to query cache", zap.Error(err), zap.String("key", key))
		}
		return nil, false
	}

	var verdict core.Verdict
	if err := json.Unmarshal([]byte(payload), &verdict); err != nil {
		c.logger.Error("Failed to decode cached verdict", zap.Error(err), zap.String("key", key))
		return nil, false
	}

	return &verdict, true
}

// Set stores a verdict with a server-side TTL
func (c *RedisCache) Set(ctx context.Context, key string, verdict *core.Verdict, ttl time.Duration) {
	payload, err := json.Marshal(verdict)
	if err != nil {
		c.logger.Error("Failed to encode verdict", zap.Error(err), zap.String("key", key))
		return
	}

	if err := c.client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("key", key))
	}
}

// Delete removes a cached verdict
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires entries itself
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
	}
}
