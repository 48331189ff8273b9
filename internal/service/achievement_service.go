package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/config"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
)

type achievementStore interface {
	Create(ctx context.Context, achievement *models.Achievement) error
	FindByID(ctx context.Context, id string) (*models.Achievement, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Achievement, error)
	ListEvents(ctx context.Context, achievementID string) ([]models.ReviewEvent, error)
	Delete(ctx context.Context, id string) error
}

type ownerProfileStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

// AttachmentInput describes one uploaded file descriptor.
type AttachmentInput struct {
	Name      string `json:"name" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"gt=0"`
	MediaType string `json:"media_type" validate:"required"`
}

// SubmitAchievementRequest holds the payload for a new submission.
type SubmitAchievementRequest struct {
	Title        string            `json:"title" validate:"required"`
	Description  string            `json:"description"`
	Category     string            `json:"category" validate:"required"`
	DateAchieved time.Time         `json:"date_achieved" validate:"required"`
	Institution  string            `json:"institution"`
	Skills       []string          `json:"skills"`
	Attachments  []AttachmentInput `json:"attachments" validate:"dive"`
}

// AchievementService covers the submitter side of the record lifecycle:
// creation, portfolio listing and owner-initiated deletion. Review status is
// never touched here; that belongs to ReviewService.
type AchievementService struct {
	repo      achievementStore
	profiles  ownerProfileStore
	facets    facetInvalidator
	validator *validator.Validate
	uploads   config.UploadConfig
	logger    *zap.Logger
}

// NewAchievementService constructs the achievement service.
func NewAchievementService(repo achievementStore, profiles ownerProfileStore, facets facetInvalidator, validate *validator.Validate, uploads config.UploadConfig, logger *zap.Logger) *AchievementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AchievementService{repo: repo, profiles: profiles, facets: facets, validator: validate, uploads: uploads, logger: logger}
}

// Submit validates and stores a new achievement. Status is forced to
// PENDING and submitted_at is set server-side.
func (s *AchievementService) Submit(ctx context.Context, userID string, req SubmitAchievementRequest) (*models.Achievement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid achievement payload")
	}
	if !models.ValidCategory(req.Category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}
	if err := s.validateAttachments(req.Attachments); err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found for user")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve profile")
	}

	attachments := make(models.AttachmentList, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, models.Attachment{Name: a.Name, SizeBytes: a.SizeBytes, MediaType: a.MediaType})
	}

	achievement := &models.Achievement{
		OwnerID:      profile.ID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		DateAchieved: req.DateAchieved,
		Institution:  req.Institution,
		Skills:       append([]string(nil), req.Skills...),
		Attachments:  attachments,
		Status:       models.StatusPending,
		Priority:     models.PriorityMedium,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, achievement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create achievement")
	}

	s.logger.Sugar().Infow("achievement submitted", "achievement_id", achievement.ID, "owner_id", profile.ID, "category", achievement.Category)
	return achievement, nil
}

// Get returns a record with its review history, enforcing visibility:
// owners, faculty and admins see everything; employers only approved records.
func (s *AchievementService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.AchievementDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievement")
	}

	switch actor.Role {
	case models.RoleFaculty, models.RoleAdmin:
	case models.RoleEmployer:
		if achievement.Status != models.StatusApproved {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
	default:
		owner, err := s.ownsRecord(ctx, actor.UserID, achievement)
		if err != nil {
			return nil, err
		}
		if !owner {
			return nil, appErrors.ErrForbidden
		}
	}

	events, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review history")
	}
	return &models.AchievementDetail{Achievement: *achievement, ReviewHistory: events}, nil
}

// OwnerProfileID resolves the profile owned by the given user account.
func (s *AchievementService) OwnerProfileID(ctx context.Context, userID string) (string, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "profile not found for user")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve profile")
	}
	return profile.ID, nil
}

// ListMine returns the caller's portfolio, all statuses included.
func (s *AchievementService) ListMine(ctx context.Context, userID string) ([]models.Achievement, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found for user")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve profile")
	}
	achievements, err := s.repo.ListByOwner(ctx, profile.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list achievements")
	}
	return achievements, nil
}

// Delete removes an owner's record regardless of review state.
func (s *AchievementService) Delete(ctx context.Context, id, userID string) error {
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievement")
	}
	owner, err := s.ownsRecord(ctx, userID, achievement)
	if err != nil {
		return err
	}
	if !owner {
		return appErrors.Clone(appErrors.ErrForbidden, "only the record owner may delete")
	}

	wasApproved := achievement.Status == models.StatusApproved
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete achievement")
	}
	if wasApproved && s.facets != nil {
		s.facets.Invalidate(ctx)
	}
	return nil
}

func (s *AchievementService) ownsRecord(ctx context.Context, userID string, achievement *models.Achievement) (bool, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve profile")
	}
	return profile.ID == achievement.OwnerID, nil
}

func (s *AchievementService) validateAttachments(attachments []AttachmentInput) error {
	max := s.uploads.MaxAttachments
	if max > 0 && len(attachments) > max {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d attachments allowed", max))
	}
	for _, a := range attachments {
		if s.uploads.MaxFileSizeBytes > 0 && a.SizeBytes > s.uploads.MaxFileSizeBytes {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attachment %s exceeds the size limit", a.Name))
		}
		if len(s.uploads.AllowedMIMEs) > 0 && !containsString(s.uploads.AllowedMIMEs, a.MediaType) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attachment type %s is not allowed", a.MediaType))
		}
	}
	return nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
