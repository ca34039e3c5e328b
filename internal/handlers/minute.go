package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/cse-council-api/internal/dto"
	apierrors "github.com/yukikurage/cse-council-api/internal/errors"
	"github.com/yukikurage/cse-council-api/internal/middleware"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/services"
	"github.com/yukikurage/cse-council-api/internal/utils"
)

type MinuteHandler struct {
	minuteService *services.MinuteService
}

func NewMinuteHandler(minuteService *services.MinuteService) *MinuteHandler {
	return &MinuteHandler{minuteService: minuteService}
}

func (h *MinuteHandler) ListMinutes(c *gin.Context) {
	meetingID, ok := queryID(c, "meeting_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	minutes, total, err := h.minuteService.ListMinutes(services.ListMinutesInput{
		MeetingID: meetingID,
		Status:    queryEnum[models.MinuteStatus](c, "status"),
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MinuteListResponse{
		Minutes:    minutes,
		Pagination: params.Response(total),
	})
}

// GetMinute returns a minute with its signatures and signing progress
func (h *MinuteHandler) GetMinute(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	minute, err := h.minuteService.GetMinute(id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, minute)
}

func (h *MinuteHandler) CreateMinute(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}

	var req dto.CreateMinuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	minute, err := h.minuteService.CreateMinute(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, minute)
}

// UpdateMinute edits content and/or status. Both are checked before anything is written.
func (h *MinuteHandler) UpdateMinute(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMinuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	minute, err := h.minuteService.UpdateMinute(c.Request.Context(), actor, id, req.ToInput())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, minute)
}

// SubmitMinute opens a draft for signatures
func (h *MinuteHandler) SubmitMinute(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	minute, err := h.minuteService.SubmitMinute(c.Request.Context(), actor, id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, minute)
}

func (h *MinuteHandler) PublishMinute(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	minute, err := h.minuteService.PublishMinute(c.Request.Context(), actor, id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, minute)
}

func (h *MinuteHandler) DeleteMinute(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.minuteService.DeleteMinute(c.Request.Context(), actor, id); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Minute deleted successfully"})
}

// ExportMinute downloads the minute as HTML (default) or PDF
func (h *MinuteHandler) ExportMinute(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	exported, err := h.minuteService.ExportMinute(id, c.DefaultQuery("format", services.ExportFormatHTML))
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exported.Filename))
	c.Data(http.StatusOK, exported.ContentType, exported.Body)
}
