// Package cache provides the optional Redis-backed TF-IDF score cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/unimate/listing-search/config"
	"github.com/unimate/listing-search/internal/logger"
)

const keyPrefix = "scores:"

// NewRedisClient creates a Redis client and verifies the connection with a PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisScores caches weight vectors under keyPrefix+key with a TTL.
// Concurrent misses on one key share a single computation.
type RedisScores struct {
	client redis.Cmdable
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func NewRedisScores(client redis.Cmdable, ttl time.Duration) *RedisScores {
	return &RedisScores{
		client: client,
		ttl:    ttl,
		logger: logger.WithComponent("score-cache"),
	}
}

// Weights returns the cached weights for key, or computes and stores them.
// Redis failures degrade to computing; only compute errors are returned.
func (c *RedisScores) Weights(ctx context.Context, key string, compute func() ([]float64, error)) ([]float64, bool, error) {
	if weights, ok := c.get(ctx, key); ok {
		return weights, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if weights, ok := c.get(ctx, key); ok {
			return weights, nil
		}
		weights, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, weights)
		return weights, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]float64), false, nil
}

// Stats reports lookups served from Redis and lookups that were not.
func (c *RedisScores) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *RedisScores) get(ctx context.Context, key string) ([]float64, bool) {
	data, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var weights []float64
	if err := json.Unmarshal([]byte(data), &weights); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return weights, true
}

func (c *RedisScores) set(ctx context.Context, key string, weights []float64) {
	data, err := json.Marshal(weights)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}
