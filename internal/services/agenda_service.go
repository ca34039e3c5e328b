package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/cse-council-api/internal/logging"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/permissions"
	"github.com/yukikurage/cse-council-api/internal/repository"
)

// AgendaService edits a meeting's agenda item by item. Every mutation is
// refused once the convocation has been sent.
type AgendaService struct {
	agendaRepo  repository.AgendaItemRepository
	meetingRepo repository.MeetingRepository
}

// NewAgendaService creates a new AgendaService
func NewAgendaService(agendaRepo repository.AgendaItemRepository, meetingRepo repository.MeetingRepository) *AgendaService {
	return &AgendaService{
		agendaRepo:  agendaRepo,
		meetingRepo: meetingRepo,
	}
}

// UpdateAgendaItemInput represents input for editing an agenda item
type UpdateAgendaItemInput struct {
	Title         *string
	Description   *string
	Duration      *int
	ClearDuration bool
}

// AddItem inserts an item at input.Order, or appends when Order is zero
func (s *AgendaService) AddItem(ctx context.Context, actor Actor, meetingID uint64, input AgendaItemInput) (*models.AgendaItem, error) {
	if err := s.ensureEditable(actor, meetingID); err != nil {
		return nil, err
	}

	item, err := newAgendaItem(input)
	if err != nil {
		return nil, err
	}
	item.MeetingID = meetingID

	if err := s.agendaRepo.Insert(item); err != nil {
		return nil, fmt.Errorf("failed to add agenda item: %w", err)
	}

	logging.FromContext(ctx).Info("agenda item added",
		slog.Uint64("meeting_id", meetingID),
		slog.Uint64("agenda_item_id", item.ID),
		slog.Int("order", item.Order),
	)
	return item, nil
}

// UpdateItem edits title, description or duration
func (s *AgendaService) UpdateItem(actor Actor, id uint64, input UpdateAgendaItemInput) (*models.AgendaItem, error) {
	item, err := s.agendaRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, ErrAgendaNotFound, "agenda item")
	}
	if err := s.ensureEditable(actor, item.MeetingID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, invalid("title", "is required")
		}
		item.Title = title
	}
	if input.Description != nil {
		item.Description = trimmedPtr(input.Description)
	}
	if input.ClearDuration {
		item.Duration = nil
	} else if input.Duration != nil {
		if *input.Duration <= 0 {
			return nil, invalid("duration", "must be a positive number of minutes")
		}
		item.Duration = input.Duration
	}

	if err := s.agendaRepo.Update(item); err != nil {
		return nil, fmt.Errorf("failed to update agenda item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item and renumbers the rest
func (s *AgendaService) DeleteItem(ctx context.Context, actor Actor, id uint64) error {
	item, err := s.agendaRepo.FindByID(id)
	if err != nil {
		return lookupError(err, ErrAgendaNotFound, "agenda item")
	}
	if err := s.ensureEditable(actor, item.MeetingID); err != nil {
		return err
	}

	if err := s.agendaRepo.Delete(item); err != nil {
		return fmt.Errorf("failed to delete agenda item: %w", err)
	}

	logging.FromContext(ctx).Info("agenda item deleted", slog.Uint64("meeting_id", item.MeetingID), slog.Uint64("agenda_item_id", id))
	return nil
}

// Reorder sets the agenda order. orderedIDs must list every item of the
// meeting exactly once.
func (s *AgendaService) Reorder(actor Actor, meetingID uint64, orderedIDs []uint64) ([]models.AgendaItem, error) {
	if err := s.ensureEditable(actor, meetingID); err != nil {
		return nil, err
	}

	current, err := s.agendaRepo.ListByMeeting(meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load agenda: %w", err)
	}

	if len(uniqueUint64(orderedIDs)) != len(orderedIDs) || len(orderedIDs) != len(current) {
		return nil, invalid("item_ids", "must list every agenda item of the meeting exactly once")
	}
	known := make(map[uint64]struct{}, len(current))
	for _, item := range current {
		known[item.ID] = struct{}{}
	}
	for _, id := range orderedIDs {
		if _, ok := known[id]; !ok {
			return nil, invalid("item_ids", "agenda item %d does not belong to this meeting", id)
		}
	}

	if err := s.agendaRepo.Reorder(meetingID, orderedIDs); err != nil {
		return nil, fmt.Errorf("failed to reorder agenda: %w", err)
	}

	return s.agendaRepo.ListByMeeting(meetingID)
}

// ListItems returns a meeting's agenda by position
func (s *AgendaService) ListItems(meetingID uint64) ([]models.AgendaItem, error) {
	if _, err := s.meetingRepo.FindByID(meetingID); err != nil {
		return nil, lookupError(err, ErrMeetingNotFound, "meeting")
	}
	return s.agendaRepo.ListByMeeting(meetingID)
}

func (s *AgendaService) ensureEditable(actor Actor, meetingID uint64) error {
	if err := authorize(actor, permissions.EditMeeting); err != nil {
		return err
	}

	meeting, err := s.meetingRepo.FindByID(meetingID)
	if err != nil {
		return lookupError(err, ErrMeetingNotFound, "meeting")
	}
	if meeting.ConvocationSent() {
		return ErrAgendaLocked
	}
	return nil
}
