package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository"
)

type matchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchCache keeps each user's last successfully assembled match list
// so the retriever can fall back to it when the primary store is down.
func NewMatchCache(client *redis.Client, ttl time.Duration) repository.MatchCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &matchCache{client: client, ttl: ttl}
}

func matchCacheKey(userID string) string {
	return "compat:matches:" + userID
}

func (c *matchCache) Get(ctx context.Context, userID string) ([]*domain.MatchResult, error) {
	raw, err := c.client.Get(ctx, matchCacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read match cache: %w", err)
	}
	var results []*domain.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("failed to decode cached matches: %w", err)
	}
	return results, nil
}

func (c *matchCache) Set(ctx context.Context, userID string, results []*domain.MatchResult) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode matches for cache: %w", err)
	}
	if err := c.client.Set(ctx, matchCacheKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write match cache: %w", err)
	}
	return nil
}
