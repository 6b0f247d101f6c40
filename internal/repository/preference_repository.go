package repository

import (
	"context"

	"github.com/lusohub/lusohub-backend/internal/domain"
)

type PreferenceRepository interface {
	// Upsert atomically creates or fully replaces the record keyed by
	// UserID, refreshing LastUpdated (and CompletedAt on first insert).
	Upsert(ctx context.Context, record *domain.PreferenceRecord) error
	GetByUserID(ctx context.Context, userID string) (*domain.PreferenceRecord, error)
	// ListUserIDs returns every user with a preference record except the
	// given one, for fan-out recomputation.
	ListUserIDs(ctx context.Context, excludeUserID string) ([]string, error)
	// Delete removes the record and cascades to compatibility edges.
	Delete(ctx context.Context, userID string) error
}
