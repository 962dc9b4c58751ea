package dto

import (
	"time"

	"github.com/campushire/placement-api/internal/models"
)

// PlacedStudentUpdateRequest merges non-nil fields into a roster entry.
type PlacedStudentUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2"`
	RollNumber   *string `json:"roll_number" validate:"omitempty,min=1"`
	Department   *string `json:"department"`
	Email        *string `json:"email" validate:"omitempty,email"`
	MobileNumber *string `json:"mobile_number"`
}

// PlacedStudentResponse is one roster entry plus its positional index.
type PlacedStudentResponse struct {
	Index        int       `json:"index"`
	Name         string    `json:"name"`
	RollNumber   string    `json:"roll_number"`
	Department   string    `json:"department"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number,omitempty"`
	AddedByID    uint      `json:"added_by_id"`
	AddedAt      time.Time `json:"added_at"`
}

// FinalizePlacementResponse reports the outcome of finalize-placement.
type FinalizePlacementResponse struct {
	JobDriveID  uint `json:"job_drive_id"`
	PlacedCount int  `json:"placed_count"`
	Resynced    bool `json:"resynced"`
}

// NewPlacedStudentResponses converts a drive's roster.
func NewPlacedStudentResponses(placed []models.PlacedStudentSnapshot) []PlacedStudentResponse {
	responses := make([]PlacedStudentResponse, 0, len(placed))
	for i, snapshot := range placed {
		responses = append(responses, PlacedStudentResponse{
			Index:        i,
			Name:         snapshot.Name,
			RollNumber:   snapshot.RollNumber,
			Department:   snapshot.Department,
			Email:        snapshot.Email,
			MobileNumber: snapshot.MobileNumber,
			AddedByID:    snapshot.AddedByID,
			AddedAt:      snapshot.AddedAt,
		})
	}
	return responses
}
