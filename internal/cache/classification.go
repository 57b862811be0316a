// Package cache provides a Redis-backed cache for classification results so
// repeated submissions of the same complaint text skip the LLM round trip.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/janvedha/triage/internal/domain"
	"github.com/janvedha/triage/pkg/logger"
)

const keyPrefix = "triage:classification:"

// ClassificationCache caches ClassificationResults by description hash.
// All failures degrade to cache misses; the cache never fails a pipeline run.
type ClassificationCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// New creates a classification cache over an existing Redis client.
func New(rdb *redis.Client, ttl time.Duration, log logger.Logger) *ClassificationCache {
	return &ClassificationCache{rdb: rdb, ttl: ttl, logger: log}
}

// Key derives the cache key for a complaint.
func Key(description, photoRef string) string {
	sum := sha256.Sum256([]byte(description + "\x00" + photoRef))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached result for the key, or (nil, false) on miss.
func (c *ClassificationCache) Get(ctx context.Context, key string) (*domain.ClassificationResult, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("classification cache read failed", logger.Error(err))
		}
		return nil, false
	}

	var result domain.ClassificationResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("classification cache entry corrupt", logger.Error(err))
		return nil, false
	}
	return &result, true
}

// Set stores the result under the key with the configured TTL.
func (c *ClassificationCache) Set(ctx context.Context, key string, result *domain.ClassificationResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("classification cache marshal failed", logger.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("classification cache write failed", logger.Error(err))
	}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
