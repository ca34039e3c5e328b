package dto

import "github.com/yukikurage/cse-council-api/internal/models"

// SignRequest is the body of POST /api/signatures
type SignRequest struct {
	MinuteID uint64  `json:"minute_id" binding:"required,gt=0"`
	Comments *string `json:"comments"`
}

// SignatureListResponse wraps a list of signatures
type SignatureListResponse struct {
	Signatures []models.Signature `json:"signatures"`
}
