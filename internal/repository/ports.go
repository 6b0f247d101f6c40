package repository

import (
	"context"

	"github.com/lusohub/lusohub-backend/internal/domain"
)

// ProfileDirectory resolves display profiles owned by the surrounding
// application. Callers bound each resolution with a per-call timeout; a
// timed-out or missing profile is treated the same as not found.
type ProfileDirectory interface {
	ResolveProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

// RecomputeQueue is the fire-and-forget trigger contract: one work item
// per user whose preferences changed, consumed by the recompute workers.
type RecomputeQueue interface {
	Enqueue(ctx context.Context, userID string) error
	// Dequeue blocks up to the implementation's poll interval and returns
	// "" with a nil error when no work is available.
	Dequeue(ctx context.Context) (string, error)
}

// MatchCache holds the last successfully assembled match list per user so
// the retriever can serve a stale-but-usable result when the store is down.
type MatchCache interface {
	Get(ctx context.Context, userID string) ([]*domain.MatchResult, error)
	Set(ctx context.Context, userID string, results []*domain.MatchResult) error
}
