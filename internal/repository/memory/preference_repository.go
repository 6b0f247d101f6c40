// Package memory provides in-memory repository implementations with the
// same semantics as the postgres ones (atomic upsert, stale-write guard,
// cascade on delete). They back the test suites and local development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lusohub/lusohub-backend/internal/domain"
)

type PreferenceRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.PreferenceRecord
	nextID  int

	cascade *CompatibilityRepository

	failMu   sync.Mutex
	failLeft int
	failWith error
}

func NewPreferenceRepository() *PreferenceRepository {
	return &PreferenceRepository{records: make(map[string]*domain.PreferenceRecord)}
}

// CascadeTo wires edge deletion on record deletion, mirroring the FK.
func (r *PreferenceRepository) CascadeTo(edges *CompatibilityRepository) {
	r.cascade = edges
}

// FailNext makes the next n calls return err, for transient-failure tests.
func (r *PreferenceRepository) FailNext(n int, err error) {
	r.failMu.Lock()
	defer r.failMu.Unlock()
	r.failLeft = n
	r.failWith = err
}

func (r *PreferenceRepository) injectedFailure() error {
	r.failMu.Lock()
	defer r.failMu.Unlock()
	if r.failLeft > 0 {
		r.failLeft--
		return r.failWith
	}
	return nil
}

func (r *PreferenceRepository) Upsert(ctx context.Context, record *domain.PreferenceRecord) error {
	if err := r.injectedFailure(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.records[record.UserID]; ok {
		record.ID = existing.ID
		record.CompletedAt = existing.CompletedAt
	} else {
		r.nextID++
		record.ID = r.nextID
		record.CompletedAt = now
	}
	record.LastUpdated = now

	clone := cloneRecord(record)
	r.records[record.UserID] = clone
	return nil
}

func (r *PreferenceRepository) GetByUserID(ctx context.Context, userID string) (*domain.PreferenceRecord, error) {
	if err := r.injectedFailure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[userID]
	if !ok {
		return nil, domain.ErrPreferencesNotFound
	}
	return cloneRecord(record), nil
}

func (r *PreferenceRepository) ListUserIDs(ctx context.Context, excludeUserID string) ([]string, error) {
	if err := r.injectedFailure(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		if id != excludeUserID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *PreferenceRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	_, ok := r.records[userID]
	delete(r.records, userID)
	r.mu.Unlock()
	if !ok {
		return domain.ErrPreferencesNotFound
	}
	if r.cascade != nil {
		if err := r.cascade.DeleteForUser(ctx, userID); err != nil {
			return fmt.Errorf("cascade delete failed: %w", err)
		}
	}
	return nil
}

func cloneRecord(record *domain.PreferenceRecord) *domain.PreferenceRecord {
	clone := *record
	clone.Origins = append([]string(nil), record.Origins...)
	clone.CulturalCelebrations = append([]string(nil), record.CulturalCelebrations...)
	clone.ProfessionalGoals = append([]string(nil), record.ProfessionalGoals...)
	clone.LifestylePreferences = append([]string(nil), record.LifestylePreferences...)
	clone.CulturalValues = make(domain.RatingMap, len(record.CulturalValues))
	for k, v := range record.CulturalValues {
		clone.CulturalValues[k] = v
	}
	return &clone
}
