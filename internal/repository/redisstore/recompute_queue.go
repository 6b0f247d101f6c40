package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lusohub/lusohub-backend/internal/repository"
)

const recomputeQueueKey = "compat:recompute"

type recomputeQueue struct {
	client      *redis.Client
	popInterval time.Duration
}

// NewRecomputeQueue builds the fire-and-forget trigger queue on a Redis
// list. Enqueue is LPUSH; workers consume with a blocking BRPOP.
func NewRecomputeQueue(client *redis.Client, popInterval time.Duration) repository.RecomputeQueue {
	if popInterval <= 0 {
		popInterval = time.Second
	}
	return &recomputeQueue{client: client, popInterval: popInterval}
}

func (q *recomputeQueue) Enqueue(ctx context.Context, userID string) error {
	if err := q.client.LPush(ctx, recomputeQueueKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue recompute for %s: %w", userID, err)
	}
	return nil
}

func (q *recomputeQueue) Dequeue(ctx context.Context) (string, error) {
	vals, err := q.client.BRPop(ctx, q.popInterval, recomputeQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to dequeue recompute item: %w", err)
	}
	// BRPOP returns [key, value].
	if len(vals) != 2 {
		return "", nil
	}
	return vals[1], nil
}
