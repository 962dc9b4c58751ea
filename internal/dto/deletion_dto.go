package dto

import (
	"time"

	"github.com/campushire/placement-api/internal/models"
)

// DeletionRequestCreate is the payload for requesting drive deletion.
type DeletionRequestCreate struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// DeletionReviewRequest resolves a pending deletion request.
type DeletionReviewRequest struct {
	Action   string `json:"action" validate:"required,oneof=approve reject"`
	Comments string `json:"comments" validate:"max=500"`
}

// DriveSnapshotResponse is the preserved drive summary on a deletion record.
type DriveSnapshotResponse struct {
	CompanyName string    `json:"company_name"`
	Role        string    `json:"role"`
	DriveDate   time.Time `json:"drive_date"`
	CreatedByID uint      `json:"created_by_id"`
}

// DeletionRequestResponse is the serialized deletion-request record.
type DeletionRequestResponse struct {
	ID              uint                  `json:"id"`
	JobDriveID      uint                  `json:"job_drive_id"`
	JobDriveDetails DriveSnapshotResponse `json:"job_drive_details"`
	RequestedByID   uint                  `json:"requested_by_id"`
	Reason          string                `json:"reason"`
	Status          string                `json:"status"`
	ReviewedByID    *uint                 `json:"reviewed_by_id,omitempty"`
	ReviewedAt      *time.Time            `json:"reviewed_at,omitempty"`
	ReviewComments  string                `json:"review_comments,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// NewDeletionRequestResponse converts a model into a DTO.
func NewDeletionRequestResponse(request models.DeletionRequest) DeletionRequestResponse {
	snapshot := request.Snapshot()
	return DeletionRequestResponse{
		ID:         request.ID,
		JobDriveID: request.JobDriveID,
		JobDriveDetails: DriveSnapshotResponse{
			CompanyName: snapshot.CompanyName,
			Role:        snapshot.Role,
			DriveDate:   snapshot.DriveDate,
			CreatedByID: snapshot.CreatedByID,
		},
		RequestedByID:  request.RequestedByID,
		Reason:         request.Reason,
		Status:         request.Status,
		ReviewedByID:   request.ReviewedByID,
		ReviewedAt:     request.ReviewedAt,
		ReviewComments: request.ReviewComments,
		CreatedAt:      request.CreatedAt,
	}
}

// NewDeletionRequestResponseSlice converts a slice of models into DTOs.
func NewDeletionRequestResponseSlice(requests []models.DeletionRequest) []DeletionRequestResponse {
	responses := make([]DeletionRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, NewDeletionRequestResponse(request))
	}
	return responses
}
