package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type profileUserResolver interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// NotificationService delivers review outcomes to record owners through an
// in-process worker queue. Delivery is fire-and-forget: enqueue and store
// failures are logged, never surfaced to the workflow.
type NotificationService struct {
	repo     notificationStore
	profiles profileUserResolver
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewNotificationService constructs the service and its dispatch queue.
func NewNotificationService(repo notificationStore, profiles profileUserResolver, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, profiles: profiles, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, cfg)
	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyDecision implements DecisionNotifier.
func (s *NotificationService) NotifyDecision(ctx context.Context, achievement *models.Achievement, decision models.Decision, feedback string) {
	var kind models.NotificationKind
	var message string
	switch decision {
	case models.DecisionApprove:
		kind = models.NotificationApproved
		message = fmt.Sprintf("%q has been approved.", achievement.Title)
	case models.DecisionReject:
		kind = models.NotificationRejected
		message = fmt.Sprintf("%q has been rejected: %s", achievement.Title, feedback)
	case models.DecisionRequestChanges:
		kind = models.NotificationChangesRequested
		message = fmt.Sprintf("Changes requested for %q: %s", achievement.Title, feedback)
	default:
		return
	}

	notification := models.Notification{
		ID:            uuid.NewString(),
		Kind:          kind,
		AchievementID: achievement.ID,
		Message:       message,
	}

	// Resolve the owning user account before enqueueing so the worker does
	// not depend on the record still existing.
	profile, err := s.profiles.FindByID(ctx, achievement.OwnerID)
	if err != nil {
		s.logger.Sugar().Warnw("notification owner lookup failed", "achievement_id", achievement.ID, "error", err)
		return
	}
	notification.UserID = profile.UserID

	if err := s.queue.Enqueue(jobs.Job{ID: notification.ID, Type: string(kind), Payload: notification}); err != nil {
		s.logger.Sugar().Warnw("notification enqueue failed", "achievement_id", achievement.ID, "error", err)
	}
}

// ListMine returns the caller's notifications.
func (s *NotificationService) ListMine(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.Notification)
	if !ok {
		s.logger.Sugar().Errorw("unexpected notification payload", "job_id", job.ID)
		return nil
	}
	if err := s.repo.Create(ctx, &notification); err != nil {
		return fmt.Errorf("store notification %s: %w", notification.ID, err)
	}
	return nil
}
