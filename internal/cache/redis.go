// Package cache holds snapshot caches for loaded company hierarchies
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	models "vantage/internal/domain/models/orgtree"
)

// DefaultKeyPrefix namespaces snapshot keys. The table prefix is appended so
// dev and prod can share one Redis.
const DefaultKeyPrefix = "vantage:orgtree:snapshot:v1"

// RedisSnapshotCache stores one JSON document per company with a TTL
type RedisSnapshotCache struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewRedisSnapshotCache(client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns (nil, nil) on a miss
func (c *RedisSnapshotCache) Get(ctx context.Context, companyID int64) (*models.Company, error) {
	result, err := c.redis.Get(ctx, c.key(companyID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot %d: %w", companyID, err)
	}

	var company models.Company
	if err := json.Unmarshal([]byte(result), &company); err != nil {
		// A snapshot written by an older build; drop it and reload
		c.logger.Warn("discarding unreadable snapshot", "company_id", companyID, "error", err)
		_ = c.redis.Del(ctx, c.key(companyID)).Err()
		return nil, nil
	}
	return &company, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, company *models.Company) error {
	data, err := json.Marshal(company)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(company.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot %d: %w", company.ID, err)
	}
	return nil
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context, companyID int64) error {
	if err := c.redis.Del(ctx, c.key(companyID)).Err(); err != nil {
		return fmt.Errorf("invalidate snapshot %d: %w", companyID, err)
	}
	return nil
}

// Ping checks the connection, used at startup
func (c *RedisSnapshotCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

func (c *RedisSnapshotCache) key(companyID int64) string {
	return fmt.Sprintf("%s:{%d}", c.prefix, companyID)
}
