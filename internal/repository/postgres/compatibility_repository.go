package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository"
)

type compatibilityRepository struct {
	db *sqlx.DB
}

func NewCompatibilityRepository(db *sqlx.DB) repository.CompatibilityRepository {
	return &compatibilityRepository{db: db}
}

const edgeColumns = `
	id, user_a_id, user_b_id,
	origin_compatibility, language_compatibility, cultural_compatibility,
	professional_compatibility, values_compatibility, lifestyle_compatibility,
	overall_compatibility, shared_elements, compatibility_insights,
	source_updated_at, calculated_at, last_updated
`

func (r *compatibilityRepository) Upsert(ctx context.Context, edge *domain.CompatibilityEdge) error {
	// Canonical ordering for the unique constraint.
	userA, userB := domain.OrderPair(edge.UserAID, edge.UserBID)
	edge.UserAID, edge.UserBID = userA, userB

	// The conditional update is the stale-write guard: a recomputation
	// from an older preference snapshot must not clobber a fresher edge.
	query := `
		INSERT INTO cultural_compatibility (
			user_a_id, user_b_id,
			origin_compatibility, language_compatibility, cultural_compatibility,
			professional_compatibility, values_compatibility, lifestyle_compatibility,
			overall_compatibility, shared_elements, compatibility_insights,
			source_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_a_id, user_b_id) DO UPDATE SET
			origin_compatibility = EXCLUDED.origin_compatibility,
			language_compatibility = EXCLUDED.language_compatibility,
			cultural_compatibility = EXCLUDED.cultural_compatibility,
			professional_compatibility = EXCLUDED.professional_compatibility,
			values_compatibility = EXCLUDED.values_compatibility,
			lifestyle_compatibility = EXCLUDED.lifestyle_compatibility,
			overall_compatibility = EXCLUDED.overall_compatibility,
			shared_elements = EXCLUDED.shared_elements,
			compatibility_insights = EXCLUDED.compatibility_insights,
			source_updated_at = EXCLUDED.source_updated_at,
			calculated_at = CURRENT_TIMESTAMP,
			last_updated = CURRENT_TIMESTAMP
		WHERE cultural_compatibility.source_updated_at <= EXCLUDED.source_updated_at
		RETURNING id, calculated_at, last_updated
	`
	err := r.db.QueryRowContext(
		ctx, query,
		userA, userB,
		edge.OriginCompatibility, edge.LanguageCompatibility, edge.CulturalCompatibility,
		edge.ProfessionalCompatibility, edge.ValuesCompatibility, edge.LifestyleCompatibility,
		edge.OverallCompatibility, pq.Array(edge.SharedElements), pq.Array(edge.CompatibilityInsights),
		edge.SourceUpdatedAt,
	).Scan(&edge.ID, &edge.CalculatedAt, &edge.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Guard fired: the stored edge is newer.
			return domain.ErrStaleEdge
		}
		return wrapStoreErr(err)
	}
	return nil
}

func (r *compatibilityRepository) GetByUsers(ctx context.Context, userAID, userBID string) (*domain.CompatibilityEdge, error) {
	userA, userB := domain.OrderPair(userAID, userBID)
	query := fmt.Sprintf(`SELECT %s FROM cultural_compatibility WHERE user_a_id = $1 AND user_b_id = $2`, edgeColumns)
	edge, err := r.scanEdge(r.db.QueryRowContext(ctx, query, userA, userB))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEdgeNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return edge, nil
}

func (r *compatibilityRepository) ListForUser(ctx context.Context, userID string, minScore float64, limit int) ([]*domain.CompatibilityEdge, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cultural_compatibility
		WHERE (user_a_id = $1 OR user_b_id = $1) AND overall_compatibility >= $2
		ORDER BY overall_compatibility DESC, calculated_at DESC
		LIMIT $3
	`, edgeColumns)

	rows, err := r.db.QueryContext(ctx, query, userID, minScore, limit)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer rows.Close()

	var edges []*domain.CompatibilityEdge
	for rows.Next() {
		edge, err := r.scanEdge(rows)
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr(err)
	}
	return edges, nil
}

func (r *compatibilityRepository) DeleteForUser(ctx context.Context, userID string) error {
	query := `DELETE FROM cultural_compatibility WHERE user_a_id = $1 OR user_b_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *compatibilityRepository) scanEdge(row rowScanner) (*domain.CompatibilityEdge, error) {
	var edge domain.CompatibilityEdge
	err := row.Scan(
		&edge.ID, &edge.UserAID, &edge.UserBID,
		&edge.OriginCompatibility, &edge.LanguageCompatibility, &edge.CulturalCompatibility,
		&edge.ProfessionalCompatibility, &edge.ValuesCompatibility, &edge.LifestyleCompatibility,
		&edge.OverallCompatibility, pq.Array(&edge.SharedElements), pq.Array(&edge.CompatibilityInsights),
		&edge.SourceUpdatedAt, &edge.CalculatedAt, &edge.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}
