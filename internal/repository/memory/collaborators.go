package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lusohub/lusohub-backend/internal/domain"
)

// ProfileDirectory is a map-backed profile resolver. Delay simulates a
// slow upstream so retriever timeout behavior can be exercised.
type ProfileDirectory struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile
	Delay    time.Duration
}

func NewProfileDirectory() *ProfileDirectory {
	return &ProfileDirectory{profiles: make(map[string]*domain.Profile)}
}

func (d *ProfileDirectory) Put(profile *domain.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[profile.UserID] = profile
}

func (d *ProfileDirectory) Remove(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.profiles, userID)
}

func (d *ProfileDirectory) ResolveProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	profile, ok := d.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *profile
	return &clone, nil
}

// RecomputeQueue is a channel-backed queue with the same blocking
// semantics as the redis list implementation.
type RecomputeQueue struct {
	items       chan string
	popInterval time.Duration
}

func NewRecomputeQueue(capacity int) *RecomputeQueue {
	if capacity <= 0 {
		capacity = 128
	}
	return &RecomputeQueue{items: make(chan string, capacity), popInterval: 50 * time.Millisecond}
}

func (q *RecomputeQueue) Enqueue(ctx context.Context, userID string) error {
	select {
	case q.items <- userID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *RecomputeQueue) Dequeue(ctx context.Context) (string, error) {
	select {
	case userID := <-q.items:
		return userID, nil
	case <-time.After(q.popInterval):
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Len reports queued items; test-only convenience.
func (q *RecomputeQueue) Len() int {
	return len(q.items)
}

// MatchCache is a map-backed last-known-good match store.
type MatchCache struct {
	mu      sync.RWMutex
	entries map[string][]*domain.MatchResult
}

func NewMatchCache() *MatchCache {
	return &MatchCache{entries: make(map[string][]*domain.MatchResult)}
}

func (c *MatchCache) Get(ctx context.Context, userID string) ([]*domain.MatchResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[userID], nil
}

func (c *MatchCache) Set(ctx context.Context, userID string, results []*domain.MatchResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = results
	return nil
}
