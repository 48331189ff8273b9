package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
)

func profileRows(ids ...string) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "name", "email", "major", "year", "gpa", "university", "location",
		"graduation_date", "preferred_roles", "available", "rating", "profile_views",
		"last_active_at", "created_at", "updated_at",
	})
	for _, id := range ids {
		rows.AddRow(id, "user-"+id, "Student "+id, id+"@uni.edu", "CS", "Senior", 3.5, "MIT", "Boston",
			now, "{}", true, 4.5, 10, now, now, now)
	}
	return rows
}

func TestProfileFindByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery("SELECT id, user_id, name").
		WithArgs("user-p1").
		WillReturnRows(profileRows("p1"))

	profile, err := repo.FindByUserID(context.Background(), "user-p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("INSERT INTO profiles").WillReturnResult(sqlmock.NewResult(1, 1))

	profile := &models.Profile{UserID: "u1", Name: "Alice", Email: "alice@uni.edu"}
	err := repo.Create(context.Background(), profile)
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.False(t, profile.LastActiveAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementViewsMissingProfile(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET profile_views = profile_views + 1 WHERE id = $1")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementViews(context.Background(), "ghost")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTalentStitchesApprovedRecords(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery("SELECT id, user_id, name").
		WillReturnRows(profileRows("p1", "p2"))

	now := time.Now()
	approved := sqlmock.NewRows([]string{"id", "profile_id", "title", "category", "date_achieved", "skills"}).
		AddRow("a1", "p1", "Dean's List", "Academic Excellence", now, "{Go}").
		AddRow("a2", "p1", "Hackathon", "Competitions & Awards", now, "{React}")
	mock.ExpectQuery("SELECT id, owner_id AS profile_id").
		WithArgs(string(models.StatusApproved)).
		WillReturnRows(approved)

	talent, err := repo.ListTalent(context.Background())
	require.NoError(t, err)
	require.Len(t, talent, 2)
	assert.Equal(t, "p1", talent[0].ID)
	assert.Len(t, talent[0].Achievements, 2)
	// Profiles with no approved records still appear in the snapshot; the
	// search layer decides discoverability.
	assert.Empty(t, talent[1].Achievements)
	assert.Equal(t, []string{"Go", "React"}, talent[0].SkillSet())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistinctMajorsSkipsBlank(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT major FROM profiles WHERE major <> '' ORDER BY major ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"major"}).AddRow("Computer Science").AddRow("Data Science"))

	majors, err := repo.DistinctMajors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Computer Science", "Data Science"}, majors)
	assert.NoError(t, mock.ExpectationsWereMet())
}
