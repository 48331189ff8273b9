package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/repository"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
)

type mockReviewStore struct {
	achievements map[string]models.Achievement
	events       []models.ReviewEvent
	pending      []models.PendingAchievement
	pendingTotal int
	applyErr     error
	resubmitErr  error
	priorities   map[string]models.Priority
}

func (m *mockReviewStore) FindByID(ctx context.Context, id string) (*models.Achievement, error) {
	if a, ok := m.achievements[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReviewStore) ListEvents(ctx context.Context, achievementID string) ([]models.ReviewEvent, error) {
	var events []models.ReviewEvent
	for _, e := range m.events {
		if e.AchievementID == achievementID {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *mockReviewStore) ListPending(ctx context.Context, filter models.PendingFilter) ([]models.PendingAchievement, int, error) {
	return m.pending, m.pendingTotal, nil
}

func (m *mockReviewStore) ApplyDecision(ctx context.Context, event *models.ReviewEvent, newStatus models.ReviewStatus) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	a, ok := m.achievements[event.AchievementID]
	if !ok || a.Status != models.StatusPending {
		return repository.ErrNotPending
	}
	a.Status = newStatus
	m.achievements[event.AchievementID] = a
	m.events = append(m.events, *event)
	return nil
}

func (m *mockReviewStore) Resubmit(ctx context.Context, id string) error {
	if m.resubmitErr != nil {
		return m.resubmitErr
	}
	a, ok := m.achievements[id]
	if !ok || a.Status != models.StatusChangesRequested {
		return repository.ErrNotPending
	}
	a.Status = models.StatusPending
	a.ResubmissionCount++
	a.SubmittedAt = time.Now().UTC()
	m.achievements[id] = a
	return nil
}

func (m *mockReviewStore) SetPriority(ctx context.Context, id string, priority models.Priority) error {
	if _, ok := m.achievements[id]; !ok {
		return sql.ErrNoRows
	}
	if m.priorities == nil {
		m.priorities = make(map[string]models.Priority)
	}
	m.priorities[id] = priority
	return nil
}

type mockNotifier struct {
	notified []models.Decision
}

func (m *mockNotifier) NotifyDecision(ctx context.Context, achievement *models.Achievement, decision models.Decision, feedback string) {
	m.notified = append(m.notified, decision)
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) Invalidate(ctx context.Context) {
	m.calls++
}

type mockDecisionObserver struct {
	decisions []string
}

func (m *mockDecisionObserver) ObserveDecision(decision string) {
	m.decisions = append(m.decisions, decision)
}

func pendingAchievement(id, owner string) models.Achievement {
	return models.Achievement{
		ID:          id,
		OwnerID:     owner,
		Title:       "Dean's List",
		Category:    "Academic Excellence",
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		SubmittedAt: time.Now().UTC(),
	}
}

func TestDecideApprove(t *testing.T) {
	repo := &mockReviewStore{achievements: map[string]models.Achievement{"a1": pendingAchievement("a1", "p1")}}
	notifier := &mockNotifier{}
	facets := &mockInvalidator{}
	metrics := &mockDecisionObserver{}
	svc := NewReviewService(repo, notifier, facets, zap.NewNop(), WithDecisionMetrics(metrics))

	detail, err := svc.Decide(context.Background(), "a1", "faculty-1", models.DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, detail.Status)
	assert.Len(t, detail.ReviewHistory, 1)
	assert.Equal(t, models.DecisionApprove, detail.ReviewHistory[0].Decision)
	assert.Equal(t, []models.Decision{models.DecisionApprove}, notifier.notified)
	assert.Equal(t, 1, facets.calls)
	assert.Equal(t, []string{"APPROVE"}, metrics.decisions)
}

func TestDecideRejectRequiresFeedback(t *testing.T) {
	repo := &mockReviewStore{achievements: map[string]models.Achievement{"a1": pendingAchievement("a1", "p1")}}
	svc := NewReviewService(repo, nil, nil, zap.NewNop())

	for _, decision := range []models.Decision{models.DecisionReject, models.DecisionRequestChanges} {
		_, err := svc.Decide(context.Background(), "a1", "faculty-1", decision, "   ")
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrMissingFeedback.Code, appErr.Code)
	}
	// No event was appended and the record stayed pending.
	assert.Empty(t, repo.events)
	assert.Equal(t, models.StatusPending, repo.achievements["a1"].Status)
}

func TestDecideRejectIsTerminal(t *testing.T) {
	repo := &mockReviewStore{achievements: map[string]models.Achievement{"a1": pendingAchievement("a1", "p1")}}
	facets := &mockInvalidator{}
	svc := NewReviewService(repo, nil, facets, zap.NewNop())

	detail, err := svc.Decide(context.Background(), "a1", "faculty-1", models.DecisionReject, "insufficient evidence")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, detail.Status)
	assert.True(t, detail.Status.IsTerminal())
	// Rejection does not change the approved projection.
	assert.Equal(t, 0, facets.calls)

	_, err = svc.Decide(context.Background(), "a1", "faculty-2", models.DecisionApprove, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestDecideUnknownDecision(t *testing.T) {
	repo := &mockReviewStore{achievements: map[string]models.Achievement{"a1": pendingAchievement("a1", "p1")}}
	svc := NewReviewService(repo, nil, nil, zap.NewNop())

	_, err := svc.Decide(context.Background(), "a1", "faculty-1", models.Decision("ESCALATE"), "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDecideNotFound(t *testing.T) {
	svc := NewReviewService(&mockReviewStore{achievements: map[string]models.Achievement{}}, nil, nil, zap.NewNop())

	_, err := svc.Decide(context.Background(), "missing", "faculty-1", models.DecisionApprove, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDecideConcurrentLoser(t *testing.T) {
	// The record still reads PENDING, but the guarded update loses the race.
	repo := &mockReviewStore{
		achievements: map[string]models.Achievement{"a1": pendingAchievement("a1", "p1")},
		applyErr:     repository.ErrNotPending,
	}
	notifier := &mockNotifier{}
	svc := NewReviewService(repo, notifier, nil, zap.NewNop())

	_, err := svc.Decide(context.Background(), "a1", "faculty-2", models.DecisionApprove, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	assert.Empty(t, notifier.notified)
}

func TestResubmitFromChangesRequested(t *testing.T) {
	a := pendingAchievement("a1", "p1")
	a.Status = models.StatusChangesRequested
	repo := &mockReviewStore{achievements: map[string]models.Achievement{"a1": a}}
	svc := NewReviewService(repo, nil, nil, zap.NewNop())

	detail, err := svc.Resubmit(context.Background(), "a1", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, detail.Status)
	assert.Equal(t, 1, detail.ResubmissionCount)
}

func TestResubmitOwnerOnly(t *testing.T) {
	a := pendingAchievement("a1", "p1")
	a.Status = models.StatusChangesRequested
	repo := &mockReviewStore{achievements: map[string]models.Achievement{"a1": a}}
	svc := NewReviewService(repo, nil, nil, zap.NewNop())

	_, err := svc.Resubmit(context.Background(), "a1", "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestResubmitOnlyAfterChangesRequested(t *testing.T) {
	for _, status := range []models.ReviewStatus{models.StatusPending, models.StatusApproved, models.StatusRejected} {
		a := pendingAchievement("a1", "p1")
		a.Status = status
		repo := &mockReviewStore{achievements: map[string]models.Achievement{"a1": a}}
		svc := NewReviewService(repo, nil, nil, zap.NewNop())

		_, err := svc.Resubmit(context.Background(), "a1", "p1")
		require.Error(t, err, "status %s", status)
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	}
}

func TestSetPriorityUnknownValue(t *testing.T) {
	repo := &mockReviewStore{achievements: map[string]models.Achievement{"a1": pendingAchievement("a1", "p1")}}
	svc := NewReviewService(repo, nil, nil, zap.NewNop())

	err := svc.SetPriority(context.Background(), "a1", models.Priority("urgent"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.SetPriority(context.Background(), "a1", models.PriorityHigh))
	assert.Equal(t, models.PriorityHigh, repo.priorities["a1"])
}

func TestQueuePaginationDefaults(t *testing.T) {
	repo := &mockReviewStore{pendingTotal: 42}
	svc := NewReviewService(repo, nil, nil, zap.NewNop())

	_, pagination, err := svc.Queue(context.Background(), models.PendingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 42, pagination.TotalCount)
}
