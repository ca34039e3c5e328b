package dto

import (
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/services"
	"github.com/yukikurage/cse-council-api/internal/utils"
)

// CreateFeedbackRequest is the body of POST /api/feedbacks
type CreateFeedbackRequest struct {
	MeetingID   uint64                  `json:"meeting_id" binding:"required,gt=0"`
	Subject     string                  `json:"subject" binding:"required,max=255"`
	Description string                  `json:"description" binding:"required"`
	Category    models.FeedbackCategory `json:"category" binding:"required"`
}

// UpdateFeedbackRequest is the body of PUT /api/feedbacks/:id. Status and
// response are ignored unless the caller manages the council.
type UpdateFeedbackRequest struct {
	Subject     *string                  `json:"subject" binding:"omitempty,max=255"`
	Description *string                  `json:"description"`
	Category    *models.FeedbackCategory `json:"category"`
	Status      *models.FeedbackStatus   `json:"status"`
	Response    *string                  `json:"response"`
}

// FeedbackListResponse represents a paginated list of feedbacks
type FeedbackListResponse struct {
	Feedbacks  []models.Feedback        `json:"feedbacks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToInput converts the request to the service input
func (r CreateFeedbackRequest) ToInput() services.CreateFeedbackInput {
	return services.CreateFeedbackInput{
		MeetingID:   r.MeetingID,
		Subject:     r.Subject,
		Description: r.Description,
		Category:    r.Category,
	}
}

// ToInput converts the request to the service input
func (r UpdateFeedbackRequest) ToInput() services.UpdateFeedbackInput {
	return services.UpdateFeedbackInput{
		Subject:     r.Subject,
		Description: r.Description,
		Category:    r.Category,
		Status:      r.Status,
		Response:    r.Response,
	}
}
