// Package cache provides a Redis-backed scan result cache keyed by URL hash.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phishguard/phishguard/internal/config"
	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/logger"
	"github.com/phishguard/phishguard/internal/telemetry"
)

// connectionTimeout is the timeout for verifying the Redis connection.
const connectionTimeout = 5 * time.Second

const keyPrefix = "phishguard:scan:"

// NewClient creates a Redis client and verifies the connection.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// ResultCache stores aggregated scan results in Redis. Cache failures
// are logged and treated as misses so a Redis outage never blocks scans.
type ResultCache struct {
	client    *redis.Client
	ttl       time.Duration
	log       logger.Logger
	telemetry *telemetry.Provider
}

// NewResultCache creates a result cache with the given TTL.
func NewResultCache(client *redis.Client, ttl time.Duration, log logger.Logger, tp *telemetry.Provider) *ResultCache {
	return &ResultCache{client: client, ttl: ttl, log: log, telemetry: tp}
}

// Get returns the cached result for urlHash, or nil on a miss.
func (c *ResultCache) Get(ctx context.Context, urlHash string) *domain.AggregatedResult {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, keyPrefix+urlHash).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("result cache read failed", logger.Error(err), logger.String("url_hash", urlHash))
		}
		c.telemetry.RecordCacheLookup(false)
		return nil
	}

	var result domain.AggregatedResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.log.Warn("result cache entry corrupt", logger.Error(err), logger.String("url_hash", urlHash))
		c.telemetry.RecordCacheLookup(false)
		return nil
	}

	c.telemetry.RecordCacheLookup(true)
	return &result
}

// Set stores a scan result under its URL hash.
func (c *ResultCache) Set(ctx context.Context, result *domain.AggregatedResult) {
	if c == nil || c.client == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.log.Warn("result cache encode failed", logger.Error(err), logger.String("url_hash", result.URLHash))
		return
	}

	if err := c.client.Set(ctx, keyPrefix+result.URLHash, data, c.ttl).Err(); err != nil {
		c.log.Warn("result cache write failed", logger.Error(err), logger.String("url_hash", result.URLHash))
	}
}

// Invalidate removes a cached result.
func (c *ResultCache) Invalidate(ctx context.Context, urlHash string) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, keyPrefix+urlHash).Err(); err != nil {
		c.log.Warn("result cache delete failed", logger.Error(err), logger.String("url_hash", urlHash))
	}
}
