package dto

import (
	"time"

	"github.com/campushire/placement-api/internal/models"
)

// ApplicationStatusUpdateRequest changes an application's review status.
type ApplicationStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=applied shortlisted rejected selected"`
}

// ApplicationResponse is the serialized application record.
type ApplicationResponse struct {
	ID            uint      `json:"id"`
	JobDriveID    uint      `json:"job_drive_id"`
	ApplicantID   uint      `json:"applicant_id"`
	ApplicantName string    `json:"applicant_name,omitempty"`
	RollNumber    string    `json:"roll_number,omitempty"`
	Department    string    `json:"department,omitempty"`
	Status        string    `json:"status"`
	AppliedAt     time.Time `json:"applied_at"`
}

// MyApplicationResponse pairs an application with a drive summary for the
// applicant's own listing.
type MyApplicationResponse struct {
	ApplicationResponse
	CompanyName string    `json:"company_name"`
	Role        string    `json:"role"`
	DriveDate   time.Time `json:"drive_date"`
}

// NewApplicationResponse converts a model into a DTO.
func NewApplicationResponse(application models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:            application.ID,
		JobDriveID:    application.JobDriveID,
		ApplicantID:   application.ApplicantID,
		ApplicantName: application.Applicant.Name,
		RollNumber:    application.Applicant.RollNumber,
		Department:    application.Applicant.Department,
		Status:        application.Status,
		AppliedAt:     application.AppliedAt,
	}
}

// NewApplicationResponseSlice converts a slice of models into DTOs.
func NewApplicationResponseSlice(applications []models.Application) []ApplicationResponse {
	responses := make([]ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		responses = append(responses, NewApplicationResponse(application))
	}
	return responses
}

// NewMyApplicationResponseSlice converts the applicant-facing listing.
func NewMyApplicationResponseSlice(applications []models.Application) []MyApplicationResponse {
	responses := make([]MyApplicationResponse, 0, len(applications))
	for _, application := range applications {
		responses = append(responses, MyApplicationResponse{
			ApplicationResponse: NewApplicationResponse(application),
			CompanyName:         application.JobDrive.CompanyName,
			Role:                application.JobDrive.Role,
			DriveDate:           application.JobDrive.DriveDate,
		})
	}
	return responses
}
