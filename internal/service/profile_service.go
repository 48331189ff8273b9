package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
)

type profileStore interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	IncrementViews(ctx context.Context, id string) error
}

type savedProfileStore interface {
	Toggle(ctx context.Context, employerID, profileID string) (bool, error)
	List(ctx context.Context, employerID string) ([]models.SavedProfile, error)
}

type ownerRecordStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Achievement, error)
}

// UpdateProfileRequest holds owner-editable profile fields.
type UpdateProfileRequest struct {
	Name           string    `json:"name" validate:"required"`
	Major          string    `json:"major"`
	Year           string    `json:"year"`
	GPA            float64   `json:"gpa" validate:"gte=0,lte=4"`
	University     string    `json:"university"`
	Location       string    `json:"location"`
	GraduationDate time.Time `json:"graduation_date"`
	PreferredRoles []string  `json:"preferred_roles"`
	Available      bool      `json:"available"`
}

// ProfileDetail is the discoverer-facing profile view: the profile plus its
// approved achievements and derived skill union.
type ProfileDetail struct {
	models.Profile
	Skills       []string             `json:"skills"`
	Achievements []models.Achievement `json:"achievements"`
}

// ProfileService covers profile reads, owner edits, view counting and the
// employer save-list.
type ProfileService struct {
	profiles  profileStore
	saved     savedProfileStore
	records   ownerRecordStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(profiles profileStore, saved savedProfileStore, records ownerRecordStore, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, saved: saved, records: records, validator: validate, logger: logger}
}

// Get returns a profile detail. Employers see only approved achievements;
// the owner and faculty see every record.
func (s *ProfileService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*ProfileDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	achievements, err := s.records.ListByOwner(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievements")
	}

	approvedOnly := actor.Role == models.RoleEmployer
	filtered := make([]models.Achievement, 0, len(achievements))
	skills := make([]string, 0)
	seen := make(map[string]struct{})
	for _, a := range achievements {
		if a.Status == models.StatusApproved {
			for _, skill := range a.Skills {
				if _, ok := seen[skill]; !ok {
					seen[skill] = struct{}{}
					skills = append(skills, skill)
				}
			}
		}
		if approvedOnly && a.Status != models.StatusApproved {
			continue
		}
		filtered = append(filtered, a)
	}

	return &ProfileDetail{Profile: *profile, Skills: skills, Achievements: filtered}, nil
}

// GetMine returns the caller's own profile detail.
func (s *ProfileService) GetMine(ctx context.Context, userID string) (*ProfileDetail, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return s.Get(ctx, profile.ID, &models.JWTClaims{UserID: userID, Role: models.RoleStudent})
}

// UpdateMine modifies the caller's profile. Derived search attributes
// (skills, achievement counts) are never edited here.
func (s *ProfileService) UpdateMine(ctx context.Context, userID string, req UpdateProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	profile.Name = req.Name
	profile.Major = req.Major
	profile.Year = req.Year
	profile.GPA = req.GPA
	profile.University = req.University
	profile.Location = req.Location
	profile.GraduationDate = req.GraduationDate
	profile.PreferredRoles = append([]string(nil), req.PreferredRoles...)
	profile.Available = req.Available
	profile.LastActiveAt = time.Now().UTC()

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return profile, nil
}

// RecordView counts one profile view. Not idempotent: repeated views
// increment repeatedly.
func (s *ProfileService) RecordView(ctx context.Context, profileID string) error {
	if err := s.profiles.IncrementViews(ctx, profileID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record profile view")
	}
	return nil
}

// ToggleSave flips the presence of a profile on the employer's save list
// and reports whether the profile is now saved.
func (s *ProfileService) ToggleSave(ctx context.Context, employerID, profileID string) (bool, error) {
	if _, err := s.profiles.FindByID(ctx, profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	saved, err := s.saved.Toggle(ctx, employerID, profileID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle saved profile")
	}
	return saved, nil
}

// ListSaved returns the employer's saved profile ids.
func (s *ProfileService) ListSaved(ctx context.Context, employerID string) ([]models.SavedProfile, error) {
	saved, err := s.saved.List(ctx, employerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list saved profiles")
	}
	return saved, nil
}
