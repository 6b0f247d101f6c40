package repository

import (
	"context"

	"github.com/lusohub/lusohub-backend/internal/domain"
)

type CompatibilityRepository interface {
	// Upsert creates or wholly replaces the edge for the pair. The write
	// is rejected with domain.ErrStaleEdge when the stored edge carries a
	// newer SourceUpdatedAt than the incoming one.
	Upsert(ctx context.Context, edge *domain.CompatibilityEdge) error
	GetByUsers(ctx context.Context, userAID, userBID string) (*domain.CompatibilityEdge, error)
	// ListForUser returns edges touching userID with overall compatibility
	// at or above minScore, ordered by (overall desc, calculated_at desc).
	ListForUser(ctx context.Context, userID string, minScore float64, limit int) ([]*domain.CompatibilityEdge, error)
	DeleteForUser(ctx context.Context, userID string) error
}
