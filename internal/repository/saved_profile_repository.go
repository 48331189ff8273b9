package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
)

// SavedProfileRepository persists employer bookmark lists with set semantics.
type SavedProfileRepository struct {
	db *sqlx.DB
}

// NewSavedProfileRepository constructs a SavedProfileRepository.
func NewSavedProfileRepository(db *sqlx.DB) *SavedProfileRepository {
	return &SavedProfileRepository{db: db}
}

// Toggle adds the profile to the employer's save list, or removes it when
// already present. Returns true when the profile ends up saved.
func (r *SavedProfileRepository) Toggle(ctx context.Context, employerID, profileID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_profiles WHERE employer_id = $1 AND profile_id = $2`,
		employerID, profileID)
	if err != nil {
		return false, fmt.Errorf("unsave profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unsave rows affected: %w", err)
	}
	if affected > 0 {
		return false, nil
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO saved_profiles (employer_id, profile_id, created_at) VALUES ($1, $2, $3)`,
		employerID, profileID, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("save profile: %w", err)
	}
	return true, nil
}

// List returns the employer's saved profile ids, oldest first.
func (r *SavedProfileRepository) List(ctx context.Context, employerID string) ([]models.SavedProfile, error) {
	const query = `SELECT employer_id, profile_id, created_at FROM saved_profiles WHERE employer_id = $1 ORDER BY created_at ASC, profile_id ASC`
	var saved []models.SavedProfile
	if err := r.db.SelectContext(ctx, &saved, query, employerID); err != nil {
		return nil, fmt.Errorf("list saved profiles: %w", err)
	}
	return saved, nil
}
