package dto

import (
	"time"

	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/services"
	"github.com/yukikurage/cse-council-api/internal/utils"
)

// DateLayout is the wire format of meeting dates.
const DateLayout = "2006-01-02"

// AgendaItemRequest describes one agenda entry. Order is 1-based; zero
// appends the item.
type AgendaItemRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
	Duration    *int    `json:"duration" binding:"omitempty,gte=0"`
	Order       int     `json:"order" binding:"gte=0"`
}

// CreateMeetingRequest is the body of POST /api/meetings
type CreateMeetingRequest struct {
	Date             string              `json:"date" binding:"required,datetime=2006-01-02"`
	Time             string              `json:"time" binding:"required,datetime=15:04"`
	Type             models.MeetingType  `json:"type" binding:"required,oneof=ORDINARY EXTRAORDINARY"`
	Location         string              `json:"location" binding:"required,max=255"`
	FeedbackDeadline *time.Time          `json:"feedback_deadline"`
	ParticipantIDs   []uint64            `json:"participant_ids" binding:"required,min=1,dive,gt=0"`
	AgendaItems      []AgendaItemRequest `json:"agenda_items" binding:"omitempty,dive"`
}

// UpdateMeetingRequest is the body of PUT /api/meetings/:id. A present
// agenda_items replaces the whole agenda.
type UpdateMeetingRequest struct {
	Date             *string               `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time             *string               `json:"time" binding:"omitempty,datetime=15:04"`
	Type             *models.MeetingType   `json:"type" binding:"omitempty,oneof=ORDINARY EXTRAORDINARY"`
	Location         *string               `json:"location" binding:"omitempty,max=255"`
	Status           *models.MeetingStatus `json:"status"`
	FeedbackDeadline *time.Time            `json:"feedback_deadline"`
	AgendaItems      *[]AgendaItemRequest  `json:"agenda_items" binding:"omitempty,dive"`
}

// ParticipantStatusRequest is the body of PUT /api/meetings/:id/participants/:user_id
type ParticipantStatusRequest struct {
	Status models.ParticipantStatus `json:"status" binding:"required"`
}

// UpdateAgendaItemRequest is the body of PUT /api/agenda-items/:id
type UpdateAgendaItemRequest struct {
	Title         *string `json:"title" binding:"omitempty,max=255"`
	Description   *string `json:"description"`
	Duration      *int    `json:"duration" binding:"omitempty,gte=0"`
	ClearDuration bool    `json:"clear_duration"`
}

// ReorderAgendaRequest lists every agenda item id of a meeting in the new order
type ReorderAgendaRequest struct {
	ItemIDs []uint64 `json:"item_ids" binding:"required,min=1,dive,gt=0"`
}

// MeetingListResponse represents a paginated list of meetings
type MeetingListResponse struct {
	Meetings   []models.Meeting         `json:"meetings"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToInput converts the request to the service input
func (r AgendaItemRequest) ToInput() services.AgendaItemInput {
	return services.AgendaItemInput{
		Title:       r.Title,
		Description: r.Description,
		Duration:    r.Duration,
		Order:       r.Order,
	}
}

func agendaInputs(items []AgendaItemRequest) []services.AgendaItemInput {
	out := make([]services.AgendaItemInput, len(items))
	for i, item := range items {
		out[i] = item.ToInput()
	}
	return out
}

// ToInput converts the request to the service input. Date has already been
// checked by binding.
func (r CreateMeetingRequest) ToInput() (services.CreateMeetingInput, error) {
	date, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return services.CreateMeetingInput{}, err
	}
	return services.CreateMeetingInput{
		Date:             date,
		Time:             r.Time,
		Type:             r.Type,
		Location:         r.Location,
		FeedbackDeadline: r.FeedbackDeadline,
		ParticipantIDs:   r.ParticipantIDs,
		AgendaItems:      agendaInputs(r.AgendaItems),
	}, nil
}

// ToInput converts the request to the service input
func (r UpdateMeetingRequest) ToInput() (services.UpdateMeetingInput, error) {
	in := services.UpdateMeetingInput{
		Time:             r.Time,
		Type:             r.Type,
		Location:         r.Location,
		Status:           r.Status,
		FeedbackDeadline: r.FeedbackDeadline,
	}
	if r.Date != nil {
		date, err := time.Parse(DateLayout, *r.Date)
		if err != nil {
			return services.UpdateMeetingInput{}, err
		}
		in.Date = &date
	}
	if r.AgendaItems != nil {
		items := agendaInputs(*r.AgendaItems)
		in.AgendaItems = &items
	}
	return in, nil
}

// ToInput converts the request to the service input
func (r UpdateAgendaItemRequest) ToInput() services.UpdateAgendaItemInput {
	return services.UpdateAgendaItemInput{
		Title:         r.Title,
		Description:   r.Description,
		Duration:      r.Duration,
		ClearDuration: r.ClearDuration,
	}
}
