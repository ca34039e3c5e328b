package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/cse-council-api/internal/constants"
	"github.com/yukikurage/cse-council-api/internal/logging"
	"github.com/yukikurage/cse-council-api/internal/metrics"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/permissions"
	"github.com/yukikurage/cse-council-api/internal/repository"
)

// FeedbackService collects staff feedback ahead of a meeting. Submission
// closes at the meeting's feedback deadline; owners may edit or delete
// until then, managers at any time.
type FeedbackService struct {
	feedbackRepo repository.FeedbackRepository
	meetingRepo  repository.MeetingRepository
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(feedbackRepo repository.FeedbackRepository, meetingRepo repository.MeetingRepository, m *metrics.Metrics, now func() time.Time) *FeedbackService {
	if now == nil {
		now = systemNow
	}
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		meetingRepo:  meetingRepo,
		metrics:      m,
		now:          now,
	}
}

// ListFeedbacksInput represents filters for listing feedback
type ListFeedbacksInput struct {
	MeetingID *uint64
	Status    *models.FeedbackStatus
	Category  *models.FeedbackCategory
	Limit     int
	Offset    int
}

// CreateFeedbackInput represents input for submitting feedback
type CreateFeedbackInput struct {
	MeetingID   uint64
	Subject     string
	Description string
	Category    models.FeedbackCategory
}

// UpdateFeedbackInput represents input for editing feedback. Status and
// Response are only honoured for managers.
type UpdateFeedbackInput struct {
	Subject     *string
	Description *string
	Category    *models.FeedbackCategory
	Status      *models.FeedbackStatus
	Response    *string
}

// ListFeedbacks returns everything to managers and only the actor's own
// feedback to members
func (s *FeedbackService) ListFeedbacks(actor Actor, input ListFeedbacksInput) ([]models.Feedback, int64, error) {
	filter := repository.FeedbackFilter{
		MeetingID: input.MeetingID,
		Status:    input.Status,
		Category:  input.Category,
		Limit:     input.Limit,
		Offset:    input.Offset,
	}
	if !actor.Can(permissions.ViewAllFeedbacks) {
		filter.SubmittedByID = &actor.ID
	}

	feedbacks, total, err := s.feedbackRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}
	return feedbacks, total, nil
}

// GetFeedback returns one feedback visible to the actor
func (s *FeedbackService) GetFeedback(actor Actor, id uint64) (*models.Feedback, error) {
	feedback, err := s.feedbackRepo.FindByID(id, "Meeting", "SubmittedBy")
	if err != nil {
		return nil, lookupError(err, ErrFeedbackNotFound, "feedback")
	}
	if feedback.SubmittedByID != actor.ID && !actor.Can(permissions.ViewAllFeedbacks) {
		return nil, ErrNotFeedbackOwner
	}
	return feedback, nil
}

// CreateFeedback submits feedback while the meeting's deadline is open
func (s *FeedbackService) CreateFeedback(ctx context.Context, actor Actor, input CreateFeedbackInput) (*models.Feedback, error) {
	if err := authorize(actor, permissions.SubmitFeedback); err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if err := validateFeedbackText(subject, description); err != nil {
		return nil, err
	}
	if !input.Category.Valid() {
		return nil, invalid("category", "unknown category %q", input.Category)
	}

	meeting, err := s.meetingRepo.FindByID(input.MeetingID)
	if err != nil {
		return nil, lookupError(err, ErrMeetingNotFound, "meeting")
	}

	now := s.now()
	if !meeting.FeedbackOpen(now) {
		return nil, &DeadlinePassedError{Deadline: *meeting.FeedbackDeadline}
	}

	feedback := &models.Feedback{
		MeetingID:     meeting.ID,
		SubmittedByID: actor.ID,
		Subject:       subject,
		Description:   description,
		Category:      input.Category,
		Status:        models.FeedbackStatusPending,
		SubmittedAt:   now,
	}
	if err := s.feedbackRepo.Create(feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	s.metrics.FeedbackSubmitted(string(feedback.Category))
	logging.FromContext(ctx).Info("feedback submitted",
		slog.Uint64("feedback_id", feedback.ID),
		slog.Uint64("meeting_id", meeting.ID),
		slog.String("category", string(feedback.Category)),
	)

	return s.feedbackRepo.FindByID(feedback.ID, "Meeting", "SubmittedBy")
}

// UpdateFeedback edits feedback. Members may only touch their own content
// before the deadline; their status and response fields are dropped.
func (s *FeedbackService) UpdateFeedback(ctx context.Context, actor Actor, id uint64, input UpdateFeedbackInput) (*models.Feedback, error) {
	feedback, meeting, err := s.loadForModification(actor, id, permissions.EditOwnFeedback)
	if err != nil {
		return nil, err
	}

	if !actor.IsManager() {
		input.Status = nil
		input.Response = nil
	}

	if input.Subject != nil {
		feedback.Subject = strings.TrimSpace(*input.Subject)
	}
	if input.Description != nil {
		feedback.Description = strings.TrimSpace(*input.Description)
	}
	if err := validateFeedbackText(feedback.Subject, feedback.Description); err != nil {
		return nil, err
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return nil, invalid("category", "unknown category %q", *input.Category)
		}
		feedback.Category = *input.Category
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, invalid("status", "unknown feedback status %q", *input.Status)
		}
		feedback.Status = *input.Status
	}
	if input.Response != nil {
		feedback.Response = trimmedPtr(input.Response)
	}

	feedback.Meeting = nil
	feedback.SubmittedBy = nil
	if err := s.feedbackRepo.Update(feedback); err != nil {
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}

	logging.FromContext(ctx).Info("feedback updated",
		slog.Uint64("feedback_id", feedback.ID),
		slog.Uint64("meeting_id", meeting.ID),
		slog.Uint64("actor_id", actor.ID),
	)

	return s.feedbackRepo.FindByID(feedback.ID, "Meeting", "SubmittedBy")
}

// DeleteFeedback removes feedback under the same rules as UpdateFeedback
func (s *FeedbackService) DeleteFeedback(ctx context.Context, actor Actor, id uint64) error {
	feedback, _, err := s.loadForModification(actor, id, permissions.DeleteOwnFeedback)
	if err != nil {
		return err
	}

	if err := s.feedbackRepo.Delete(feedback.ID); err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	logging.FromContext(ctx).Info("feedback deleted", slog.Uint64("feedback_id", id), slog.Uint64("actor_id", actor.ID))
	return nil
}

func (s *FeedbackService) loadForModification(actor Actor, id uint64, ownAction permissions.Action) (*models.Feedback, *models.Meeting, error) {
	feedback, err := s.feedbackRepo.FindByID(id)
	if err != nil {
		return nil, nil, lookupError(err, ErrFeedbackNotFound, "feedback")
	}

	isOwner := feedback.SubmittedByID == actor.ID
	isManager := actor.IsManager()
	if !isManager && !(isOwner && actor.Can(ownAction)) {
		return nil, nil, ErrNotFeedbackOwner
	}

	meeting, err := s.meetingRepo.FindByID(feedback.MeetingID)
	if err != nil {
		return nil, nil, lookupError(err, ErrMeetingNotFound, "meeting")
	}

	if !meeting.CanOwnerModifyFeedback(s.now(), isManager) {
		return nil, nil, &DeadlinePassedError{Deadline: *meeting.FeedbackDeadline}
	}

	return feedback, meeting, nil
}

func validateFeedbackText(subject, description string) error {
	if runeLen(subject) < constants.MinFeedbackSubjectLength {
		return invalid("subject", "must be at least %d characters", constants.MinFeedbackSubjectLength)
	}
	if runeLen(description) < constants.MinFeedbackDescriptionLength {
		return invalid("description", "must be at least %d characters", constants.MinFeedbackDescriptionLength)
	}
	return nil
}
