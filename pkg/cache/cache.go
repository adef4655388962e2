// Package cache provides the serve-mode report cache: Redis-backed when an
// address is configured, otherwise an in-process TTL map. A cache miss and
// a backend failure look the same to callers, which recompute the report.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores assembled report JSON keyed by analysis parameters.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Close() error
}

// Key builds the cache key for one analysis request.
func Key(subject string, limit int) string {
	return "smishscan:report:" + subject + "|" + strconv.Itoa(limit)
}

// ===== IN-MEMORY BACKEND =====

// memoryCache is the fallback backend: a TTL map with opportunistic
// eviction of expired entries on writes.
type memoryCache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]memoryEntry
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemory returns an in-process cache with the given TTL.
func NewMemory(ttl time.Duration) Cache {
	return &memoryCache{ttl: ttl, m: make(map[string]memoryEntry)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(c.m, key)
		return nil, false
	}
	return e.value, true
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.m {
		if now.After(e.expires) {
			delete(c.m, k)
		}
	}
	c.m[key] = memoryEntry{value: value, expires: now.Add(c.ttl)}
}

func (c *memoryCache) Close() error { return nil }

// ===== REDIS BACKEND =====

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects a Redis-backed cache and verifies the connection.
func NewRedis(ctx context.Context, addr string, ttl time.Duration, logger *zap.Logger) (Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	logger.Info("Redis cache connected", zap.String("addr", addr), zap.Duration("ttl", ttl))
	return &redisCache{client: client, ttl: ttl, logger: logger}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisCache) Close() error { return c.client.Close() }
