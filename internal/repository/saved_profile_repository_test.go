package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSavesWhenAbsent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSavedProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM saved_profiles WHERE employer_id = $1 AND profile_id = $2")).
		WithArgs("e1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO saved_profiles (employer_id, profile_id, created_at) VALUES ($1, $2, $3)")).
		WithArgs("e1", "p1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	saved, err := repo.Toggle(context.Background(), "e1", "p1")
	require.NoError(t, err)
	assert.True(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleUnsavesWhenPresent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSavedProfileRepository(db)

	mock.ExpectExec("DELETE FROM saved_profiles").
		WithArgs("e1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := repo.Toggle(context.Background(), "e1", "p1")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSavedProfileRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"employer_id", "profile_id", "created_at"}).
		AddRow("e1", "p1", now).
		AddRow("e1", "p2", now)
	mock.ExpectQuery("SELECT employer_id, profile_id, created_at FROM saved_profiles").
		WithArgs("e1").
		WillReturnRows(rows)

	saved, err := repo.List(context.Background(), "e1")
	require.NoError(t, err)
	assert.Len(t, saved, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
