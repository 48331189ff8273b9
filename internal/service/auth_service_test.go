package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
)

type mockUserStore struct {
	users     map[string]models.User // keyed by email
	lastLogin []string
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	m.users[user.Email] = *user
	return nil
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.users[email]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.users[email]
	return ok, nil
}

func (m *mockUserStore) TouchLastLogin(ctx context.Context, id string) error {
	m.lastLogin = append(m.lastLogin, id)
	return nil
}

type mockProfileCreator struct {
	created []models.Profile
}

func (m *mockProfileCreator) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = "profile-1"
	}
	m.created = append(m.created, *profile)
	return nil
}

func newTestAuthService(users *mockUserStore, profiles *mockProfileCreator) *AuthService {
	return NewAuthService(users, profiles, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
	})
}

func TestRegisterStudentCreatesProfile(t *testing.T) {
	users := &mockUserStore{}
	profiles := &mockProfileCreator{}
	svc := newTestAuthService(users, profiles)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@uni.edu",
		Password: "correct-horse",
		FullName: "Alice Chen",
		Role:     models.RoleStudent,
		Major:    "Computer Science",
	})
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	require.Len(t, profiles.created, 1)
	assert.Equal(t, user.ID, profiles.created[0].UserID)
	assert.Equal(t, "Computer Science", profiles.created[0].Major)
}

func TestRegisterEmployerSkipsProfile(t *testing.T) {
	users := &mockUserStore{}
	profiles := &mockProfileCreator{}
	svc := newTestAuthService(users, profiles)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "hr@corp.com",
		Password: "correct-horse",
		FullName: "HR Person",
		Role:     models.RoleEmployer,
	})
	require.NoError(t, err)
	assert.Empty(t, profiles.created)
}

func TestRegisterAdminRoleRejected(t *testing.T) {
	svc := newTestAuthService(&mockUserStore{}, &mockProfileCreator{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "root@uni.edu",
		Password: "correct-horse",
		FullName: "Root",
		Role:     models.RoleAdmin,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &mockUserStore{}
	svc := newTestAuthService(users, &mockProfileCreator{})

	req := RegisterRequest{Email: "alice@uni.edu", Password: "correct-horse", FullName: "Alice", Role: models.RoleStudent}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLoginAndValidateToken(t *testing.T) {
	users := &mockUserStore{}
	svc := newTestAuthService(users, &mockProfileCreator{})

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@uni.edu",
		Password: "correct-horse",
		FullName: "Alice",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "alice@uni.edu", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, []string{user.ID}, users.lastLogin)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "alice@uni.edu", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(&mockUserStore{}, &mockProfileCreator{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@uni.edu",
		Password: "correct-horse",
		FullName: "Alice",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "alice@uni.edu", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@uni.edu", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := newTestAuthService(&mockUserStore{}, &mockProfileCreator{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)

	other := NewAuthService(&mockUserStore{}, &mockProfileCreator{}, validator.New(), zap.NewNop(), AuthConfig{Secret: "other-secret", Expiration: time.Hour})
	user := &models.User{ID: "u1", Email: "a@b.c", Role: models.RoleStudent}
	token, _, err := other.generateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
