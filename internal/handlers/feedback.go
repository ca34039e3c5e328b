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

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// ListFeedbacks returns the caller's feedback, or every feedback for
// members allowed to see them all
func (h *FeedbackHandler) ListFeedbacks(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	meetingID, ok := queryID(c, "meeting_id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	feedbacks, total, err := h.feedbackService.ListFeedbacks(actor, services.ListFeedbacksInput{
		MeetingID: meetingID,
		Status:    queryEnum[models.FeedbackStatus](c, "status"),
		Category:  queryEnum[models.FeedbackCategory](c, "category"),
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FeedbackListResponse{
		Feedbacks:  feedbacks,
		Pagination: params.Response(total),
	})
}

func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	feedback, err := h.feedbackService.GetFeedback(actor, id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}

	var req dto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	feedback, err := h.feedbackService.CreateFeedback(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	feedback, err := h.feedbackService.UpdateFeedback(c.Request.Context(), actor, id, req.ToInput())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.feedbackService.DeleteFeedback(c.Request.Context(), actor, id); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted successfully"})
}
