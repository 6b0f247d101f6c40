package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lusohub/lusohub-backend/internal/domain"
)

type CompatibilityRepository struct {
	mu     sync.RWMutex
	edges  map[string]*domain.CompatibilityEdge
	nextID int

	failMu   sync.Mutex
	failLeft int
	failWith error
}

func NewCompatibilityRepository() *CompatibilityRepository {
	return &CompatibilityRepository{edges: make(map[string]*domain.CompatibilityEdge)}
}

func (r *CompatibilityRepository) FailNext(n int, err error) {
	r.failMu.Lock()
	defer r.failMu.Unlock()
	r.failLeft = n
	r.failWith = err
}

func (r *CompatibilityRepository) injectedFailure() error {
	r.failMu.Lock()
	defer r.failMu.Unlock()
	if r.failLeft > 0 {
		r.failLeft--
		return r.failWith
	}
	return nil
}

func (r *CompatibilityRepository) Upsert(ctx context.Context, edge *domain.CompatibilityEdge) error {
	if err := r.injectedFailure(); err != nil {
		return err
	}
	edge.UserAID, edge.UserBID = domain.OrderPair(edge.UserAID, edge.UserBID)
	key := domain.PairKey(edge.UserAID, edge.UserBID)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.edges[key]; ok {
		if existing.SourceUpdatedAt.After(edge.SourceUpdatedAt) {
			return domain.ErrStaleEdge
		}
		edge.ID = existing.ID
	} else {
		r.nextID++
		edge.ID = r.nextID
	}
	edge.CalculatedAt = now
	edge.LastUpdated = now

	clone := cloneEdge(edge)
	r.edges[key] = clone
	return nil
}

func (r *CompatibilityRepository) GetByUsers(ctx context.Context, userAID, userBID string) (*domain.CompatibilityEdge, error) {
	if err := r.injectedFailure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	edge, ok := r.edges[domain.PairKey(userAID, userBID)]
	if !ok {
		return nil, domain.ErrEdgeNotFound
	}
	return cloneEdge(edge), nil
}

func (r *CompatibilityRepository) ListForUser(ctx context.Context, userID string, minScore float64, limit int) ([]*domain.CompatibilityEdge, error) {
	if err := r.injectedFailure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var matched []*domain.CompatibilityEdge
	for _, edge := range r.edges {
		if edge.HasUser(userID) && edge.OverallCompatibility >= minScore {
			matched = append(matched, cloneEdge(edge))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].OverallCompatibility != matched[j].OverallCompatibility {
			return matched[i].OverallCompatibility > matched[j].OverallCompatibility
		}
		return matched[i].CalculatedAt.After(matched[j].CalculatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *CompatibilityRepository) DeleteForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, edge := range r.edges {
		if edge.HasUser(userID) {
			delete(r.edges, key)
		}
	}
	return nil
}

func cloneEdge(edge *domain.CompatibilityEdge) *domain.CompatibilityEdge {
	clone := *edge
	clone.SharedElements = append([]string(nil), edge.SharedElements...)
	clone.CompatibilityInsights = append([]string(nil), edge.CompatibilityInsights...)
	return &clone
}
