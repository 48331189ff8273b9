package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
)

type mockProfileStore struct {
	profiles map[string]models.Profile // keyed by profile id
	byUser   map[string]string         // user id -> profile id
	views    map[string]int
}

func (m *mockProfileStore) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileStore) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if id, ok := m.byUser[userID]; ok {
		return m.FindByID(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileStore) Update(ctx context.Context, profile *models.Profile) error {
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *mockProfileStore) IncrementViews(ctx context.Context, id string) error {
	if _, ok := m.profiles[id]; !ok {
		return sql.ErrNoRows
	}
	if m.views == nil {
		m.views = make(map[string]int)
	}
	m.views[id]++
	return nil
}

type mockSavedStore struct {
	saved map[string]map[string]bool // employer -> profile -> saved
}

func (m *mockSavedStore) Toggle(ctx context.Context, employerID, profileID string) (bool, error) {
	if m.saved == nil {
		m.saved = make(map[string]map[string]bool)
	}
	if m.saved[employerID] == nil {
		m.saved[employerID] = make(map[string]bool)
	}
	m.saved[employerID][profileID] = !m.saved[employerID][profileID]
	return m.saved[employerID][profileID], nil
}

func (m *mockSavedStore) List(ctx context.Context, employerID string) ([]models.SavedProfile, error) {
	var out []models.SavedProfile
	for profileID, saved := range m.saved[employerID] {
		if saved {
			out = append(out, models.SavedProfile{EmployerID: employerID, ProfileID: profileID})
		}
	}
	return out, nil
}

type mockOwnerRecords struct {
	records map[string][]models.Achievement
}

func (m *mockOwnerRecords) ListByOwner(ctx context.Context, ownerID string) ([]models.Achievement, error) {
	return m.records[ownerID], nil
}

func newTestProfileService() (*ProfileService, *mockProfileStore, *mockSavedStore) {
	profiles := &mockProfileStore{
		profiles: map[string]models.Profile{
			"p1": {ID: "p1", UserID: "u1", Name: "Alice", GPA: 3.5},
		},
		byUser: map[string]string{"u1": "p1"},
	}
	saved := &mockSavedStore{}
	records := &mockOwnerRecords{records: map[string][]models.Achievement{
		"p1": {
			{ID: "a1", OwnerID: "p1", Status: models.StatusApproved, Skills: []string{"Go", "SQL"}},
			{ID: "a2", OwnerID: "p1", Status: models.StatusPending, Skills: []string{"Rust"}},
		},
	}}
	return NewProfileService(profiles, saved, records, validator.New(), zap.NewNop()), profiles, saved
}

func TestProfileGetEmployerSeesApprovedOnly(t *testing.T) {
	svc, _, _ := newTestProfileService()

	detail, err := svc.Get(context.Background(), "p1", &models.JWTClaims{UserID: "e1", Role: models.RoleEmployer})
	require.NoError(t, err)
	require.Len(t, detail.Achievements, 1)
	assert.Equal(t, "a1", detail.Achievements[0].ID)
	// The skill union only carries approved skills either way.
	assert.Equal(t, []string{"Go", "SQL"}, detail.Skills)
}

func TestProfileGetFacultySeesEverything(t *testing.T) {
	svc, _, _ := newTestProfileService()

	detail, err := svc.Get(context.Background(), "p1", &models.JWTClaims{UserID: "f1", Role: models.RoleFaculty})
	require.NoError(t, err)
	assert.Len(t, detail.Achievements, 2)
	assert.Equal(t, []string{"Go", "SQL"}, detail.Skills)
}

func TestProfileGetNotFound(t *testing.T) {
	svc, _, _ := newTestProfileService()

	_, err := svc.Get(context.Background(), "missing", &models.JWTClaims{UserID: "f1", Role: models.RoleFaculty})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateMine(t *testing.T) {
	svc, profiles, _ := newTestProfileService()

	updated, err := svc.UpdateMine(context.Background(), "u1", UpdateProfileRequest{
		Name:      "Alice Chen",
		Major:     "Data Science",
		GPA:       3.9,
		Location:  "Remote",
		Available: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Chen", updated.Name)
	assert.Equal(t, 3.9, updated.GPA)
	assert.False(t, updated.LastActiveAt.IsZero())
	assert.Equal(t, "Data Science", profiles.profiles["p1"].Major)
}

func TestUpdateMineRejectsOutOfRangeGPA(t *testing.T) {
	svc, _, _ := newTestProfileService()

	_, err := svc.UpdateMine(context.Background(), "u1", UpdateProfileRequest{Name: "Alice", GPA: 4.5})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordViewIncrements(t *testing.T) {
	svc, profiles, _ := newTestProfileService()

	require.NoError(t, svc.RecordView(context.Background(), "p1"))
	require.NoError(t, svc.RecordView(context.Background(), "p1"))
	assert.Equal(t, 2, profiles.views["p1"])
}

func TestToggleSaveFlips(t *testing.T) {
	svc, _, _ := newTestProfileService()
	employer := "e1"

	saved, err := svc.ToggleSave(context.Background(), employer, "p1")
	require.NoError(t, err)
	assert.True(t, saved)

	list, err := svc.ListSaved(context.Background(), employer)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	saved, err = svc.ToggleSave(context.Background(), employer, "p1")
	require.NoError(t, err)
	assert.False(t, saved)

	list, err = svc.ListSaved(context.Background(), employer)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestToggleSaveUnknownProfile(t *testing.T) {
	svc, _, _ := newTestProfileService()

	_, err := svc.ToggleSave(context.Background(), "e1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
