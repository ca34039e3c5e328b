package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/cse-council-api/internal/dto"
	apierrors "github.com/yukikurage/cse-council-api/internal/errors"
	"github.com/yukikurage/cse-council-api/internal/middleware"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/services"
	"github.com/yukikurage/cse-council-api/internal/utils"
)

type MeetingHandler struct {
	meetingService *services.MeetingService
	agendaService  *services.AgendaService
}

func NewMeetingHandler(meetingService *services.MeetingService, agendaService *services.AgendaService) *MeetingHandler {
	return &MeetingHandler{
		meetingService: meetingService,
		agendaService:  agendaService,
	}
}

// ListMeetings returns meetings latest first, optionally filtered by status
func (h *MeetingHandler) ListMeetings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	meetings, total, err := h.meetingService.ListMeetings(services.ListMeetingsInput{
		Status: queryEnum[models.MeetingStatus](c, "status"),
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MeetingListResponse{
		Meetings:   meetings,
		Pagination: params.Response(total),
	})
}

// GetMeeting returns a meeting with participants, agenda, feedback and minute
func (h *MeetingHandler) GetMeeting(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	meeting, err := h.meetingService.GetMeeting(id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, meeting)
}

func (h *MeetingHandler) CreateMeeting(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}

	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}
	input, err := req.ToInput()
	if err != nil {
		apierrors.BadRequest(c, "Invalid date")
		return
	}

	meeting, err := h.meetingService.CreateMeeting(c.Request.Context(), actor, input)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, meeting)
}

func (h *MeetingHandler) UpdateMeeting(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}
	input, err := req.ToInput()
	if err != nil {
		apierrors.BadRequest(c, "Invalid date")
		return
	}

	meeting, err := h.meetingService.UpdateMeeting(c.Request.Context(), actor, id, input)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, meeting)
}

func (h *MeetingHandler) DeleteMeeting(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.meetingService.DeleteMeeting(c.Request.Context(), actor, id); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted successfully"})
}

// UpdateParticipantStatus records a participant's attendance
func (h *MeetingHandler) UpdateParticipantStatus(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	meetingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	var req dto.ParticipantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	participant, err := h.meetingService.UpdateParticipantStatus(actor, meetingID, userID, req.Status)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, participant)
}

func (h *MeetingHandler) ListAgendaItems(c *gin.Context) {
	meetingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.agendaService.ListItems(meetingID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"agenda_items": items})
}

// AddAgendaItem inserts an item at the requested position, or appends it
func (h *MeetingHandler) AddAgendaItem(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	meetingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AgendaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	item, err := h.agendaService.AddItem(c.Request.Context(), actor, meetingID, req.ToInput())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *MeetingHandler) ReorderAgenda(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	meetingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ReorderAgendaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	items, err := h.agendaService.Reorder(actor, meetingID, req.ItemIDs)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"agenda_items": items})
}

func (h *MeetingHandler) UpdateAgendaItem(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateAgendaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	item, err := h.agendaService.UpdateItem(actor, id, req.ToInput())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *MeetingHandler) DeleteAgendaItem(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.agendaService.DeleteItem(c.Request.Context(), actor, id); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Agenda item deleted successfully"})
}
