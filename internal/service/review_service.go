package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/repository"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
)

type reviewStore interface {
	FindByID(ctx context.Context, id string) (*models.Achievement, error)
	ListEvents(ctx context.Context, achievementID string) ([]models.ReviewEvent, error)
	ListPending(ctx context.Context, filter models.PendingFilter) ([]models.PendingAchievement, int, error)
	ApplyDecision(ctx context.Context, event *models.ReviewEvent, newStatus models.ReviewStatus) error
	Resubmit(ctx context.Context, id string) error
	SetPriority(ctx context.Context, id string, priority models.Priority) error
}

// DecisionNotifier delivers review outcomes to record owners. Best effort:
// delivery failures are logged and never roll back a transition.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, achievement *models.Achievement, decision models.Decision, feedback string)
}

type facetInvalidator interface {
	Invalidate(ctx context.Context)
}

type decisionObserver interface {
	ObserveDecision(decision string)
}

// ReviewService is the only mutator of a record's review status. It enforces
// the approval state machine: PENDING is the sole decidable state, APPROVED
// and REJECTED are terminal, and CHANGES_REQUESTED can only return to PENDING
// through an owner resubmission.
type ReviewService struct {
	repo     reviewStore
	notifier DecisionNotifier
	facets   facetInvalidator
	metrics  decisionObserver
	logger   *zap.Logger
}

// ReviewServiceOption configures the service.
type ReviewServiceOption func(*ReviewService)

// WithDecisionMetrics attaches decision instrumentation.
func WithDecisionMetrics(metrics decisionObserver) ReviewServiceOption {
	return func(s *ReviewService) {
		s.metrics = metrics
	}
}

// NewReviewService constructs the review service.
func NewReviewService(repo reviewStore, notifier DecisionNotifier, facets facetInvalidator, logger *zap.Logger, opts ...ReviewServiceOption) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ReviewService{repo: repo, notifier: notifier, facets: facets, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Queue returns the pending review queue for faculty.
func (s *ReviewService) Queue(ctx context.Context, filter models.PendingFilter) ([]models.PendingAchievement, *models.Pagination, error) {
	pending, total, err := s.repo.ListPending(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending achievements")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return pending, pagination, nil
}

// Decide applies a reviewer verdict to a pending record. Exactly one review
// event is appended on success; on any failure the record is left untouched.
func (s *ReviewService) Decide(ctx context.Context, id, reviewerID string, decision models.Decision, feedback string) (*models.AchievementDetail, error) {
	feedback = strings.TrimSpace(feedback)

	var newStatus models.ReviewStatus
	switch decision {
	case models.DecisionApprove:
		newStatus = models.StatusApproved
	case models.DecisionReject:
		newStatus = models.StatusRejected
	case models.DecisionRequestChanges:
		newStatus = models.StatusChangesRequested
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown decision %q", decision))
	}

	// Feedback is the only signal the owner receives, so reject and
	// request-changes refuse blank feedback outright.
	if feedback == "" && decision != models.DecisionApprove {
		return nil, appErrors.ErrMissingFeedback
	}

	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievement")
	}
	if achievement.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot decide a %s achievement", achievement.Status))
	}

	event := &models.ReviewEvent{
		AchievementID: id,
		ReviewerID:    reviewerID,
		Decision:      decision,
		Feedback:      feedback,
	}
	if err := s.repo.ApplyDecision(ctx, event, newStatus); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			// A concurrent reviewer decided first.
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "achievement was already decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply decision")
	}

	achievement.Status = newStatus
	if s.notifier != nil {
		s.notifier.NotifyDecision(ctx, achievement, decision, feedback)
	}
	if newStatus == models.StatusApproved && s.facets != nil {
		s.facets.Invalidate(ctx)
	}
	if s.metrics != nil {
		s.metrics.ObserveDecision(string(decision))
	}

	s.logger.Sugar().Infow("review decision applied",
		"achievement_id", id, "reviewer_id", reviewerID, "decision", decision, "status", newStatus)

	return s.detail(ctx, achievement)
}

// Resubmit returns a CHANGES_REQUESTED record to PENDING on behalf of its
// owner, bumping the resubmission counter and resetting submitted_at.
func (s *ReviewService) Resubmit(ctx context.Context, id, ownerID string) (*models.AchievementDetail, error) {
	achievement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load achievement")
	}
	if achievement.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the record owner may resubmit")
	}
	if achievement.Status != models.StatusChangesRequested {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot resubmit a %s achievement", achievement.Status))
	}

	if err := s.repo.Resubmit(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "achievement is no longer awaiting changes")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resubmit achievement")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload achievement")
	}
	return s.detail(ctx, updated)
}

// SetPriority updates reviewer-assigned queue priority. Pure queue metadata;
// does not touch workflow state.
func (s *ReviewService) SetPriority(ctx context.Context, id string, priority models.Priority) error {
	switch priority {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown priority %q", priority))
	}
	if err := s.repo.SetPriority(ctx, id, priority); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "achievement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set priority")
	}
	return nil
}

func (s *ReviewService) detail(ctx context.Context, achievement *models.Achievement) (*models.AchievementDetail, error) {
	events, err := s.repo.ListEvents(ctx, achievement.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review history")
	}
	return &models.AchievementDetail{Achievement: *achievement, ReviewHistory: events}, nil
}
