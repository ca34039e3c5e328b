package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/cse-council-api/internal/dto"
	apierrors "github.com/yukikurage/cse-council-api/internal/errors"
	"github.com/yukikurage/cse-council-api/internal/middleware"
	"github.com/yukikurage/cse-council-api/internal/services"
)

type SignatureHandler struct {
	signatureService *services.SignatureService
}

func NewSignatureHandler(signatureService *services.SignatureService) *SignatureHandler {
	return &SignatureHandler{signatureService: signatureService}
}

// ListSignatures filters by minute_id and/or user_id
func (h *SignatureHandler) ListSignatures(c *gin.Context) {
	minuteID, ok := queryID(c, "minute_id")
	if !ok {
		return
	}
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}

	signatures, err := h.signatureService.ListSignatures(services.ListSignaturesInput{
		MinuteID: minuteID,
		UserID:   userID,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SignatureListResponse{Signatures: signatures})
}

// Sign records the caller's signature and promotes the minute once every
// manager has signed
func (h *SignatureHandler) Sign(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}

	var req dto.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	result, err := h.signatureService.Sign(c.Request.Context(), actor, services.SignInput{
		MinuteID: req.MinuteID,
		Comments: req.Comments,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *SignatureHandler) Unsign(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.signatureService.Unsign(c.Request.Context(), actor, id); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signature removed successfully"})
}
