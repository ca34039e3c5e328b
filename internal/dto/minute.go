package dto

import (
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/services"
	"github.com/yukikurage/cse-council-api/internal/utils"
)

// CreateMinuteRequest is the body of POST /api/minutes
type CreateMinuteRequest struct {
	MeetingID uint64 `json:"meeting_id" binding:"required,gt=0"`
	Content   string `json:"content" binding:"required"`
}

// UpdateMinuteRequest is the body of PUT /api/minutes/:id
type UpdateMinuteRequest struct {
	Content *string              `json:"content"`
	Status  *models.MinuteStatus `json:"status"`
}

// MinuteListResponse represents a paginated list of minutes
type MinuteListResponse struct {
	Minutes    []models.MeetingMinute   `json:"minutes"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToInput converts the request to the service input
func (r CreateMinuteRequest) ToInput() services.CreateMinuteInput {
	return services.CreateMinuteInput{MeetingID: r.MeetingID, Content: r.Content}
}

// ToInput converts the request to the service input
func (r UpdateMinuteRequest) ToInput() services.UpdateMinuteInput {
	return services.UpdateMinuteInput{Content: r.Content, Status: r.Status}
}
