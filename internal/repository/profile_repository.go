package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
)

// ProfileRepository manages persistence for student profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, name, email, major, year, gpa, university, location, graduation_date, preferred_roles, available, rating, profile_views, last_active_at, created_at, updated_at`

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.LastActiveAt.IsZero() {
		profile.LastActiveAt = now
	}
	const query = `INSERT INTO profiles (id, user_id, name, email, major, year, gpa, university, location, graduation_date, preferred_roles, available, rating, profile_views, last_active_at, created_at, updated_at)
        VALUES (:id, :user_id, :name, :email, :major, :year, :gpa, :university, :location, :graduation_date, :preferred_roles, :available, :rating, :profile_views, :last_active_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// FindByID fetches a profile by ID.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUserID fetches the profile owned by the given user account.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = $1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update modifies an existing profile.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET name = :name, email = :email, major = :major, year = :year, gpa = :gpa, university = :university, location = :location, graduation_date = :graduation_date, preferred_roles = :preferred_roles, available = :available, rating = :rating, last_active_at = :last_active_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// IncrementViews adds one profile view. Repeated views count repeatedly.
func (r *ProfileRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET profile_views = profile_views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment profile views: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("view rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}

// ListTalent loads the point-in-time search snapshot: every profile joined
// with its approved achievements. Read-only; the search engine derives
// skills and counts from this snapshot at query time.
func (r *ProfileRepository) ListTalent(ctx context.Context) ([]models.TalentProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles ORDER BY id ASC`, profileColumns)
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	const approvedQuery = `SELECT id, owner_id AS profile_id, title, category, date_achieved, skills
        FROM achievements WHERE status = $1 ORDER BY owner_id ASC, date_achieved DESC, id ASC`
	var approved []models.ApprovedAchievement
	if err := r.db.SelectContext(ctx, &approved, approvedQuery, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("list approved achievements: %w", err)
	}

	byProfile := make(map[string][]models.ApprovedAchievement, len(profiles))
	for _, a := range approved {
		byProfile[a.ProfileID] = append(byProfile[a.ProfileID], a)
	}

	talent := make([]models.TalentProfile, 0, len(profiles))
	for _, p := range profiles {
		talent = append(talent, models.TalentProfile{Profile: p, Achievements: byProfile[p.ID]})
	}
	return talent, nil
}

// DistinctMajors returns the majors across profiles in lexicographic order.
func (r *ProfileRepository) DistinctMajors(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "major")
}

// DistinctLocations returns the locations across profiles in lexicographic order.
func (r *ProfileRepository) DistinctLocations(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "location")
}

// DistinctYears returns the academic years across profiles in lexicographic order.
func (r *ProfileRepository) DistinctYears(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "year")
}

func (r *ProfileRepository) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM profiles WHERE %s <> '' ORDER BY %s ASC`, column, column, column)
	var values []string
	if err := r.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	return values, nil
}
