package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/repository"
)

// profileDirectory resolves display profiles from the application's
// profiles table. The table is owned by the surrounding application; this
// service only reads it.
type profileDirectory struct {
	db *sqlx.DB
}

func NewProfileDirectory(db *sqlx.DB) repository.ProfileDirectory {
	return &profileDirectory{db: db}
}

func (d *profileDirectory) ResolveProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	query := `
		SELECT user_id, name, age, location, bio, photo_url
		FROM profiles WHERE user_id = $1
	`
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID, &profile.Name, &profile.Age,
		&profile.Location, &profile.Bio, &profile.PhotoURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, wrapStoreErr(err)
	}
	return &profile, nil
}
