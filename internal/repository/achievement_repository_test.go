package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func achievementRows(id, owner string, status models.ReviewStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "owner_id", "title", "description", "category", "date_achieved", "institution",
		"skills", "attachments", "status", "priority", "submitted_at", "resubmission_count",
		"created_at", "updated_at",
	}).AddRow(id, owner, "Dean's List", "Fall", "Academic Excellence", now, "MIT",
		"{Go,SQL}", []byte(`[]`), string(status), "medium", now, 0, now, now)
}

func TestAchievementCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectExec("INSERT INTO achievements").WillReturnResult(sqlmock.NewResult(1, 1))

	achievement := &models.Achievement{
		OwnerID:     "p1",
		Title:       "Dean's List",
		Category:    "Academic Excellence",
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		SubmittedAt: time.Now().UTC(),
	}
	err := repo.Create(context.Background(), achievement)
	require.NoError(t, err)
	assert.NotEmpty(t, achievement.ID)
	assert.False(t, achievement.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectQuery("SELECT id, owner_id, title").
		WithArgs("a1").
		WillReturnRows(achievementRows("a1", "p1", models.StatusPending))

	achievement, err := repo.FindByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", achievement.ID)
	assert.Equal(t, models.StatusPending, achievement.Status)
	assert.Equal(t, []string{"Go", "SQL"}, []string(achievement.Skills))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyDecisionGuardedUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE achievements SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(string(models.StatusApproved), sqlmock.AnyArg(), "a1", string(models.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO review_events (id, achievement_id, reviewer_id, decision, feedback, created_at)")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	event := &models.ReviewEvent{AchievementID: "a1", ReviewerID: "f1", Decision: models.DecisionApprove}
	err := repo.ApplyDecision(context.Background(), event, models.StatusApproved)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyDecisionLosesRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	// The guarded update matches no row: another reviewer got there first.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE achievements SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	event := &models.ReviewEvent{AchievementID: "a1", ReviewerID: "f2", Decision: models.DecisionReject, Feedback: "late"}
	err := repo.ApplyDecision(context.Background(), event, models.StatusRejected)
	require.ErrorIs(t, err, ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResubmitGuardedUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE achievements SET status = $1, resubmission_count = resubmission_count + 1, submitted_at = $2, updated_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(string(models.StatusPending), sqlmock.AnyArg(), "a1", string(models.StatusChangesRequested)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Resubmit(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResubmitWrongState(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectExec("UPDATE achievements SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Resubmit(context.Background(), "a1")
	require.ErrorIs(t, err, ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPriorityMissingRecord(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectExec("UPDATE achievements SET priority").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetPriority(context.Background(), "missing", models.PriorityHigh)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPendingFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "title", "description", "category", "date_achieved", "institution",
		"skills", "attachments", "status", "priority", "submitted_at", "resubmission_count",
		"created_at", "updated_at", "student_name", "student_email", "student_major", "student_year", "student_gpa",
	}).AddRow("a1", "p1", "Dean's List", "", "Academic Excellence", now, "",
		"{}", []byte(`[]`), "PENDING", "high", now, 0, now, now, "Alice", "alice@uni.edu", "CS", "Senior", 3.8)

	mock.ExpectQuery("SELECT a.id, a.owner_id").
		WithArgs(string(models.StatusPending), "Academic Excellence", "%alice%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(string(models.StatusPending), "Academic Excellence", "%alice%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	pending, total, err := repo.ListPending(context.Background(), models.PendingFilter{
		Search:   "Alice",
		Category: "Academic Excellence",
		SortBy:   "priority",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, "Alice", pending[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRemovesEventsFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM review_events WHERE achievement_id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM achievements WHERE id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistinctSkillsUnnests(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT unnest(skills) AS skill FROM achievements WHERE status = $1 ORDER BY skill ASC")).
		WithArgs(string(models.StatusApproved)).
		WillReturnRows(sqlmock.NewRows([]string{"skill"}).AddRow("Go").AddRow("SQL"))

	skills, err := repo.DistinctSkills(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}
