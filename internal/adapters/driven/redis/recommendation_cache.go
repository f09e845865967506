package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RecommendationCache = (*RecommendationCache)(nil)

// RecommendationCache caches query results per artifact generation. Keys
// embed the generation, so a retrain never serves stale results.
type RecommendationCache struct {
	client *redis.Client
	keys   keyspace
}

// NewRecommendationCache creates a Redis-backed RecommendationCache
func NewRecommendationCache(client *redis.Client) *RecommendationCache {
	return &RecommendationCache{client: client, keys: keyspace(DefaultNamespace + ":recs")}
}

func (c *RecommendationCache) key(generation, title string) string {
	return c.keys.key(generation, title)
}

// Get returns the cached recommendations for title, if present
func (c *RecommendationCache) Get(ctx context.Context, generation, title string) ([]domain.Recommendation, bool, error) {
	data, err := c.client.Get(ctx, c.key(generation, title)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached recommendations: %w", err)
	}
	var recs []domain.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false, fmt.Errorf("decode cached recommendations: %w", err)
	}
	return recs, true, nil
}

// Set stores recs for title under generation for ttl
func (c *RecommendationCache) Set(ctx context.Context, generation, title string, recs []domain.Recommendation, ttl time.Duration) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	if err := c.client.Set(ctx, c.key(generation, title), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache recommendations: %w", err)
	}
	return nil
}
