package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
)

// ErrNotPending signals that a guarded status update matched no row because
// the record already left PENDING (or CHANGES_REQUESTED for resubmission).
var ErrNotPending = errors.New("record is not in the expected review status")

// AchievementRepository manages persistence for achievement records and
// their append-only review history.
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository constructs an AchievementRepository.
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Create inserts a new achievement record.
func (r *AchievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	if achievement.ID == "" {
		achievement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	achievement.CreatedAt = now
	achievement.UpdatedAt = now
	const query = `INSERT INTO achievements (id, owner_id, title, description, category, date_achieved, institution, skills, attachments, status, priority, submitted_at, resubmission_count, created_at, updated_at)
        VALUES (:id, :owner_id, :title, :description, :category, :date_achieved, :institution, :skills, :attachments, :status, :priority, :submitted_at, :resubmission_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, achievement); err != nil {
		return fmt.Errorf("create achievement: %w", err)
	}
	return nil
}

// FindByID fetches a single achievement record.
func (r *AchievementRepository) FindByID(ctx context.Context, id string) (*models.Achievement, error) {
	const query = `SELECT id, owner_id, title, description, category, date_achieved, institution, skills, attachments, status, priority, submitted_at, resubmission_count, created_at, updated_at
        FROM achievements WHERE id = $1`
	var achievement models.Achievement
	if err := r.db.GetContext(ctx, &achievement, query, id); err != nil {
		return nil, err
	}
	return &achievement, nil
}

// ListByOwner returns a student's achievements, newest submission first.
func (r *AchievementRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Achievement, error) {
	const query = `SELECT id, owner_id, title, description, category, date_achieved, institution, skills, attachments, status, priority, submitted_at, resubmission_count, created_at, updated_at
        FROM achievements WHERE owner_id = $1 ORDER BY submitted_at DESC, id ASC`
	var achievements []models.Achievement
	if err := r.db.SelectContext(ctx, &achievements, query, ownerID); err != nil {
		return nil, fmt.Errorf("list achievements by owner: %w", err)
	}
	return achievements, nil
}

// ListPending returns the reviewer queue joined with submitter details.
func (r *AchievementRepository) ListPending(ctx context.Context, filter models.PendingFilter) ([]models.PendingAchievement, int, error) {
	base := `FROM achievements a JOIN profiles p ON p.id = a.owner_id`
	args := []interface{}{models.StatusPending}
	conditions := []string{"a.status = $1"}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("a.category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Priority != "" {
		conditions = append(conditions, fmt.Sprintf("a.priority = $%d", len(args)+1))
		args = append(args, filter.Priority)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(a.title) LIKE $%d OR LOWER(p.name) LIKE $%d)", idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	order := "a.submitted_at DESC, a.id ASC"
	switch filter.SortBy {
	case "oldest":
		order = "a.submitted_at ASC, a.id ASC"
	case "priority":
		order = "CASE a.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, a.id ASC"
	case "student":
		order = "p.name ASC, a.id ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.owner_id, a.title, a.description, a.category, a.date_achieved, a.institution, a.skills, a.attachments, a.status, a.priority, a.submitted_at, a.resubmission_count, a.created_at, a.updated_at,
        p.name AS student_name, p.email AS student_email, p.major AS student_major, p.year AS student_year, p.gpa AS student_gpa
        %s ORDER BY %s LIMIT %d OFFSET %d`, base, order, size, offset)

	var pending []models.PendingAchievement
	if err := r.db.SelectContext(ctx, &pending, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list pending achievements: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count pending achievements: %w", err)
	}
	return pending, total, nil
}

// ListEvents returns a record's review history in decision order.
func (r *AchievementRepository) ListEvents(ctx context.Context, achievementID string) ([]models.ReviewEvent, error) {
	const query = `SELECT id, achievement_id, reviewer_id, decision, feedback, created_at
        FROM review_events WHERE achievement_id = $1 ORDER BY created_at ASC, id ASC`
	var events []models.ReviewEvent
	if err := r.db.SelectContext(ctx, &events, query, achievementID); err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	return events, nil
}

// ApplyDecision atomically moves a PENDING record to the decided status and
// appends the review event. The status update is guarded on the current
// status so a losing concurrent reviewer matches zero rows and gets
// ErrNotPending instead of overwriting the earlier decision.
func (r *AchievementRepository) ApplyDecision(ctx context.Context, event *models.ReviewEvent, newStatus models.ReviewStatus) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE achievements SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		newStatus, now, event.AchievementID, models.StatusPending)
	if err != nil {
		return fmt.Errorf("update achievement status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decision rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotPending
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = now
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO review_events (id, achievement_id, reviewer_id, decision, feedback, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.AchievementID, event.ReviewerID, event.Decision, event.Feedback, event.CreatedAt); err != nil {
		return fmt.Errorf("append review event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision tx: %w", err)
	}
	return nil
}

// Resubmit moves a CHANGES_REQUESTED record back to PENDING, bumping the
// resubmission counter and resetting the submission timestamp. The guard on
// the current status makes resubmission from any other state a no-op
// reported as ErrNotPending.
func (r *AchievementRepository) Resubmit(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE achievements SET status = $1, resubmission_count = resubmission_count + 1, submitted_at = $2, updated_at = $2 WHERE id = $3 AND status = $4`,
		models.StatusPending, now, id, models.StatusChangesRequested)
	if err != nil {
		return fmt.Errorf("resubmit achievement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resubmit rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotPending
	}
	return nil
}

// SetPriority updates reviewer-assigned queue priority.
func (r *AchievementRepository) SetPriority(ctx context.Context, id string, priority models.Priority) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE achievements SET priority = $1, updated_at = $2 WHERE id = $3`,
		priority, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set achievement priority: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("priority rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a record and its review history. Owner-initiated only;
// independent of review state.
func (r *AchievementRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM review_events WHERE achievement_id = $1`, id); err != nil {
		return fmt.Errorf("delete review events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM achievements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete achievement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

// DistinctCategories returns the categories present on approved records in
// lexicographic order.
func (r *AchievementRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT category FROM achievements WHERE status = $1 ORDER BY category ASC`
	var values []string
	if err := r.db.SelectContext(ctx, &values, query, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	return values, nil
}

// DistinctSkills returns the skills present on approved records in
// lexicographic order.
func (r *AchievementRepository) DistinctSkills(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT unnest(skills) AS skill FROM achievements WHERE status = $1 ORDER BY skill ASC`
	var values []string
	if err := r.db.SelectContext(ctx, &values, query, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("distinct skills: %w", err)
	}
	return values, nil
}
