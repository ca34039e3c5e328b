package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/cse-council-api/internal/errors"
	"github.com/yukikurage/cse-council-api/internal/middleware"
	"github.com/yukikurage/cse-council-api/internal/services"
)

type ConvocationHandler struct {
	convocationService *services.ConvocationService
}

func NewConvocationHandler(convocationService *services.ConvocationService) *ConvocationHandler {
	return &ConvocationHandler{convocationService: convocationService}
}

// DownloadPDF renders the convocation without sending it
func (h *ConvocationHandler) DownloadPDF(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	meetingID, ok := pathID(c, "meeting_id")
	if !ok {
		return
	}

	document, err := h.convocationService.RenderPDF(actor, meetingID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.Filename))
	c.Data(http.StatusOK, "application/pdf", document.Body)
}

// Send emails the convocation to every participant
func (h *ConvocationHandler) Send(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	meetingID, ok := pathID(c, "meeting_id")
	if !ok {
		return
	}

	result, err := h.convocationService.Send(c.Request.Context(), actor, meetingID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
