package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/cse-council-api/internal/logging"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/permissions"
	"github.com/yukikurage/cse-council-api/internal/repository"
)

// meetingDetailPreloads are the relations returned with a single meeting.
var meetingDetailPreloads = []string{
	"CreatedBy",
	"Participants",
	"Participants.User",
	"AgendaItems",
	"Feedbacks",
	"Feedbacks.SubmittedBy",
	"Minute",
}

// MeetingService handles meeting scheduling, participants and agenda replacement.
type MeetingService struct {
	meetingRepo repository.MeetingRepository
	userRepo    repository.UserRepository
	loc         *time.Location
}

// NewMeetingService creates a new MeetingService. loc is the timezone
// meeting dates and times are expressed in.
func NewMeetingService(meetingRepo repository.MeetingRepository, userRepo repository.UserRepository, loc *time.Location) *MeetingService {
	if loc == nil {
		loc = time.UTC
	}
	return &MeetingService{
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
		loc:         loc,
	}
}

// AgendaItemInput describes one agenda entry. Order is 1-based; zero means
// "after the others".
type AgendaItemInput struct {
	Title       string
	Description *string
	Duration    *int
	Order       int
}

// ListMeetingsInput represents filters for listing meetings
type ListMeetingsInput struct {
	Status *models.MeetingStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// CreateMeetingInput represents input for creating a meeting
type CreateMeetingInput struct {
	Date             time.Time
	Time             string
	Type             models.MeetingType
	Location         string
	FeedbackDeadline *time.Time
	ParticipantIDs   []uint64
	AgendaItems      []AgendaItemInput
}

// UpdateMeetingInput represents input for updating a meeting. A non-nil
// AgendaItems replaces the whole agenda.
type UpdateMeetingInput struct {
	Date             *time.Time
	Time             *string
	Type             *models.MeetingType
	Location         *string
	Status           *models.MeetingStatus
	FeedbackDeadline *time.Time
	AgendaItems      *[]AgendaItemInput
}

// ListMeetings returns meetings latest first
func (s *MeetingService) ListMeetings(input ListMeetingsInput) ([]models.Meeting, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, invalid("status", "unknown meeting status %q", *input.Status)
	}

	meetings, total, err := s.meetingRepo.List(repository.MeetingFilter{
		Status: input.Status,
		From:   input.From,
		To:     input.To,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, total, nil
}

// GetMeeting returns a meeting with participants, agenda, feedback and minute
func (s *MeetingService) GetMeeting(id uint64) (*models.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(id, meetingDetailPreloads...)
	if err != nil {
		return nil, lookupError(err, ErrMeetingNotFound, "meeting")
	}
	return meeting, nil
}

// CreateMeeting schedules a meeting with its participants and initial agenda
func (s *MeetingService) CreateMeeting(ctx context.Context, actor Actor, input CreateMeetingInput) (*models.Meeting, error) {
	if err := authorize(actor, permissions.CreateMeeting); err != nil {
		return nil, err
	}

	if input.Date.IsZero() {
		return nil, invalid("date", "is required")
	}
	if _, _, err := models.ParseClock(input.Time); err != nil {
		return nil, invalid("time", "must use the HH:MM format")
	}
	if !input.Type.Valid() {
		return nil, invalid("type", "must be ORDINARY or EXTRAORDINARY")
	}
	location := strings.TrimSpace(input.Location)
	if location == "" {
		return nil, invalid("location", "is required")
	}

	participantIDs := uniqueUint64(input.ParticipantIDs)
	if len(participantIDs) == 0 {
		return nil, invalid("participant_ids", "at least one participant is required")
	}
	if err := s.ensureActiveUsers(participantIDs); err != nil {
		return nil, err
	}

	agenda, err := buildAgenda(input.AgendaItems)
	if err != nil {
		return nil, err
	}

	meeting := &models.Meeting{
		Date:        dateOnly(input.Date),
		Time:        input.Time,
		Type:        input.Type,
		Status:      models.MeetingStatusPlanned,
		Location:    &location,
		CreatedByID: actor.ID,
		AgendaItems: agenda,
	}

	deadline := input.FeedbackDeadline
	if deadline == nil {
		d := models.DefaultFeedbackDeadline(meeting.StartsAt(s.loc)).UTC()
		deadline = &d
	}
	meeting.FeedbackDeadline = deadline

	for _, id := range participantIDs {
		meeting.Participants = append(meeting.Participants, models.Participant{
			UserID: id,
			Status: models.ParticipantStatusInvited,
		})
	}

	if err := s.meetingRepo.Create(meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	logging.FromContext(ctx).Info("meeting created",
		slog.Uint64("meeting_id", meeting.ID),
		slog.Int("participants", len(participantIDs)),
		slog.Int("agenda_items", len(agenda)),
	)

	return s.GetMeeting(meeting.ID)
}

// UpdateMeeting edits a meeting. The dispatch marker cannot be written and
// CONVOCATION_SENT is only reachable through dispatch.
func (s *MeetingService) UpdateMeeting(ctx context.Context, actor Actor, id uint64, input UpdateMeetingInput) (*models.Meeting, error) {
	if err := authorize(actor, permissions.EditMeeting); err != nil {
		return nil, err
	}

	meeting, err := s.meetingRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, ErrMeetingNotFound, "meeting")
	}

	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, invalid("date", "is required")
		}
		meeting.Date = dateOnly(*input.Date)
	}
	if input.Time != nil {
		if _, _, err := models.ParseClock(*input.Time); err != nil {
			return nil, invalid("time", "must use the HH:MM format")
		}
		meeting.Time = *input.Time
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, invalid("type", "must be ORDINARY or EXTRAORDINARY")
		}
		meeting.Type = *input.Type
	}
	if input.Location != nil {
		meeting.Location = trimmedPtr(input.Location)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, invalid("status", "unknown meeting status %q", *input.Status)
		}
		if *input.Status == models.MeetingStatusConvocationSent && meeting.Status != models.MeetingStatusConvocationSent {
			return nil, invalid("status", "CONVOCATION_SENT is set by sending the convocation")
		}
		meeting.Status = *input.Status
	}
	if input.FeedbackDeadline != nil {
		d := input.FeedbackDeadline.UTC()
		meeting.FeedbackDeadline = &d
	}

	var agenda []models.AgendaItem
	if input.AgendaItems != nil {
		if meeting.ConvocationSent() {
			return nil, ErrAgendaLocked
		}
		agenda, err = buildAgenda(*input.AgendaItems)
		if err != nil {
			return nil, err
		}
		if agenda == nil {
			agenda = []models.AgendaItem{}
		}
	}

	if err := s.meetingRepo.Update(meeting, agenda); err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}

	logging.FromContext(ctx).Info("meeting updated",
		slog.Uint64("meeting_id", meeting.ID),
		slog.Bool("agenda_replaced", input.AgendaItems != nil),
	)

	return s.GetMeeting(meeting.ID)
}

// DeleteMeeting removes a meeting that has no minute and has not started
func (s *MeetingService) DeleteMeeting(ctx context.Context, actor Actor, id uint64) error {
	if err := authorize(actor, permissions.DeleteMeeting); err != nil {
		return err
	}

	meeting, err := s.meetingRepo.FindByID(id)
	if err != nil {
		return lookupError(err, ErrMeetingNotFound, "meeting")
	}

	hasMinute, err := s.meetingRepo.HasMinute(id)
	if err != nil {
		return fmt.Errorf("failed to check minute: %w", err)
	}
	if !meeting.Deletable(hasMinute) {
		return ErrMeetingNotDeletable
	}

	if err := s.meetingRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	logging.FromContext(ctx).Info("meeting deleted", slog.Uint64("meeting_id", id), slog.Uint64("actor_id", actor.ID))
	return nil
}

// UpdateParticipantStatus records attendance for one participant
func (s *MeetingService) UpdateParticipantStatus(actor Actor, meetingID, userID uint64, status models.ParticipantStatus) (*models.Participant, error) {
	if err := authorize(actor, permissions.EditMeeting); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("status", "must be one of INVITED, CONFIRMED, PRESENT, ABSENT, EXCUSED")
	}

	if _, err := s.meetingRepo.FindByID(meetingID); err != nil {
		return nil, lookupError(err, ErrMeetingNotFound, "meeting")
	}
	if _, err := s.meetingRepo.FindParticipant(meetingID, userID); err != nil {
		return nil, lookupError(err, ErrParticipantNotFound, "participant")
	}

	if err := s.meetingRepo.UpdateParticipantStatus(meetingID, userID, status); err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}

	participant, err := s.meetingRepo.FindParticipant(meetingID, userID)
	if err != nil {
		return nil, lookupError(err, ErrParticipantNotFound, "participant")
	}
	return participant, nil
}

func (s *MeetingService) ensureActiveUsers(ids []uint64) error {
	users, err := s.userRepo.FindActiveByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to verify participants: %w", err)
	}
	if len(users) != len(ids) {
		return invalid("participant_ids", "one or more users do not exist or are deactivated")
	}
	return nil
}

// buildAgenda validates items and numbers them 1..n. Items with an explicit
// order are sorted by it; ties and unnumbered items keep input order.
func buildAgenda(inputs []AgendaItemInput) ([]models.AgendaItem, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	sorted := make([]AgendaItemInput, len(inputs))
	copy(sorted, inputs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return orderKey(sorted[i].Order) < orderKey(sorted[j].Order)
	})

	items := make([]models.AgendaItem, 0, len(sorted))
	for i, in := range sorted {
		item, err := newAgendaItem(in)
		if err != nil {
			return nil, err
		}
		item.Order = i + 1
		items = append(items, *item)
	}
	return items, nil
}

func orderKey(order int) int {
	if order < 1 {
		return int(^uint(0) >> 1)
	}
	return order
}

func newAgendaItem(in AgendaItemInput) (*models.AgendaItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("agenda_items.title", "is required")
	}
	if in.Duration != nil && *in.Duration <= 0 {
		return nil, invalid("agenda_items.duration", "must be a positive number of minutes")
	}
	if in.Order < 0 {
		return nil, invalid("agenda_items.order", "must be positive")
	}
	return &models.AgendaItem{
		Title:       title,
		Description: trimmedPtr(in.Description),
		Duration:    in.Duration,
		Order:       in.Order,
	}, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
