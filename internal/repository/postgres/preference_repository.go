package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository"
)

type preferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) repository.PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Upsert(ctx context.Context, record *domain.PreferenceRecord) error {
	query := `
		INSERT INTO cultural_preferences (
			user_id, origins, language_preference, cultural_celebrations,
			professional_goals, cultural_values, lifestyle_preferences,
			cultural_depth_score, community_engagement_score, quiz_version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			origins = EXCLUDED.origins,
			language_preference = EXCLUDED.language_preference,
			cultural_celebrations = EXCLUDED.cultural_celebrations,
			professional_goals = EXCLUDED.professional_goals,
			cultural_values = EXCLUDED.cultural_values,
			lifestyle_preferences = EXCLUDED.lifestyle_preferences,
			cultural_depth_score = EXCLUDED.cultural_depth_score,
			community_engagement_score = EXCLUDED.community_engagement_score,
			quiz_version = EXCLUDED.quiz_version,
			last_updated = CURRENT_TIMESTAMP
		RETURNING id, completed_at, last_updated
	`
	err := r.db.QueryRowContext(
		ctx, query,
		record.UserID, pq.Array(record.Origins), record.LanguagePreference,
		pq.Array(record.CulturalCelebrations), pq.Array(record.ProfessionalGoals),
		record.CulturalValues, pq.Array(record.LifestylePreferences),
		record.CulturalDepthScore, record.CommunityEngagementScore, record.QuizVersion,
	).Scan(&record.ID, &record.CompletedAt, &record.LastUpdated)
	if err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

func (r *preferenceRepository) GetByUserID(ctx context.Context, userID string) (*domain.PreferenceRecord, error) {
	var record domain.PreferenceRecord
	query := `
		SELECT id, user_id, origins, language_preference, cultural_celebrations,
		       professional_goals, cultural_values, lifestyle_preferences,
		       cultural_depth_score, community_engagement_score, quiz_version,
		       completed_at, last_updated
		FROM cultural_preferences WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&record.ID, &record.UserID, pq.Array(&record.Origins), &record.LanguagePreference,
		pq.Array(&record.CulturalCelebrations), pq.Array(&record.ProfessionalGoals),
		&record.CulturalValues, pq.Array(&record.LifestylePreferences),
		&record.CulturalDepthScore, &record.CommunityEngagementScore, &record.QuizVersion,
		&record.CompletedAt, &record.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPreferencesNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &record, nil
}

func (r *preferenceRepository) ListUserIDs(ctx context.Context, excludeUserID string) ([]string, error) {
	var ids []string
	query := `SELECT user_id FROM cultural_preferences WHERE user_id <> $1`
	if err := r.db.SelectContext(ctx, &ids, query, excludeUserID); err != nil {
		return nil, wrapStoreErr(err)
	}
	return ids, nil
}

func (r *preferenceRepository) Delete(ctx context.Context, userID string) error {
	// Edges cascade via the FK on cultural_compatibility.
	query := `DELETE FROM cultural_preferences WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return wrapStoreErr(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStoreErr(err)
	}
	if rows == 0 {
		return domain.ErrPreferencesNotFound
	}
	return nil
}
