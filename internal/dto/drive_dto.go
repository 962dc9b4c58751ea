package dto

import (
	"time"

	"github.com/campushire/placement-api/internal/models"
)

// RoundPayload describes one selection round in a create/update payload.
// SelectedStudents being nil (the field omitted) means "leave the recorded
// selection untouched" on update; an empty array clears it.
type RoundPayload struct {
	Name             string     `json:"name" validate:"required,min=2"`
	Details          string     `json:"details"`
	ScheduledAt      *time.Time `json:"scheduled_at"`
	Status           string     `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	SelectedStudents []uint     `json:"selected_students"`
}

// DriveCreateRequest is the payload for posting a new job drive.
type DriveCreateRequest struct {
	CompanyName        string         `json:"company_name" validate:"required,min=2"`
	Role               string         `json:"role" validate:"required,min=2"`
	Description        string         `json:"description" validate:"required,min=10"`
	CTC                float64        `json:"ctc" validate:"gte=0"`
	MinCGPA            *float64       `json:"min_cgpa" validate:"omitempty,gte=0,lte=10"`
	MaxBacklogs        *int           `json:"max_backlogs" validate:"omitempty,gte=0"`
	AllowedDepartments []string       `json:"allowed_departments"`
	AllowedBatches     []string       `json:"allowed_batches"`
	NoCurrentBacklogs  bool           `json:"no_current_backlogs"`
	UnplacedOnly       bool           `json:"unplaced_only"`
	DriveDate          string         `json:"drive_date" validate:"required,datetime=2006-01-02"`
	Deadline           *string        `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	DriveTime          *string        `json:"drive_time" validate:"omitempty,datetime=15:04"`
	SelectionRounds    []RoundPayload `json:"selection_rounds" validate:"omitempty,dive"`
}

// DriveUpdateRequest is the partial-update payload; nil fields are untouched.
type DriveUpdateRequest struct {
	CompanyName        *string        `json:"company_name" validate:"omitempty,min=2"`
	Role               *string        `json:"role" validate:"omitempty,min=2"`
	Description        *string        `json:"description" validate:"omitempty,min=10"`
	CTC                *float64       `json:"ctc" validate:"omitempty,gte=0"`
	MinCGPA            *float64       `json:"min_cgpa" validate:"omitempty,gte=0,lte=10"`
	MaxBacklogs        *int           `json:"max_backlogs" validate:"omitempty,gte=0"`
	AllowedDepartments []string       `json:"allowed_departments"`
	AllowedBatches     []string       `json:"allowed_batches"`
	NoCurrentBacklogs  *bool          `json:"no_current_backlogs"`
	UnplacedOnly       *bool          `json:"unplaced_only"`
	DriveDate          *string        `json:"drive_date" validate:"omitempty,datetime=2006-01-02"`
	Deadline           *string        `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	DriveTime          *string        `json:"drive_time" validate:"omitempty,datetime=15:04"`
	IsActive           *bool          `json:"is_active"`
	SelectionRounds    []RoundPayload `json:"selection_rounds" validate:"omitempty,dive"`
}

// RoundStatusRequest updates a single round's status.
type RoundStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in-progress completed"`
}

// RoundSelectionRequest replaces a round's advancing-candidate set.
type RoundSelectionRequest struct {
	StudentIDs []uint `json:"student_ids" validate:"required"`
}

// RoundsReplaceRequest wholesale-replaces a drive's round sequence.
type RoundsReplaceRequest struct {
	Rounds []RoundPayload `json:"rounds" validate:"required,min=1,dive"`
}

// EligibilityResponse surfaces a drive's eligibility gate.
type EligibilityResponse struct {
	MinCGPA            *float64 `json:"min_cgpa,omitempty"`
	MaxBacklogs        *int     `json:"max_backlogs,omitempty"`
	AllowedDepartments []string `json:"allowed_departments,omitempty"`
	AllowedBatches     []string `json:"allowed_batches,omitempty"`
	NoCurrentBacklogs  bool     `json:"no_current_backlogs"`
	UnplacedOnly       bool     `json:"unplaced_only"`
}

// RoundResponse is the serialized selection round.
type RoundResponse struct {
	Index            int        `json:"index"`
	Name             string     `json:"name"`
	Details          string     `json:"details,omitempty"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	Status           string     `json:"status"`
	SelectedStudents []uint     `json:"selected_students"`
}

// DriveResponse is the serialized representation returned to API clients.
type DriveResponse struct {
	ID                 uint                `json:"id"`
	CompanyName        string              `json:"company_name"`
	Role               string              `json:"role"`
	Description        string              `json:"description"`
	CTC                float64             `json:"ctc"`
	Eligibility        EligibilityResponse `json:"eligibility"`
	DriveDate          time.Time           `json:"drive_date"`
	Deadline           *time.Time          `json:"deadline,omitempty"`
	DriveTime          string              `json:"drive_time,omitempty"`
	IsActive           bool                `json:"is_active"`
	SelectionRounds    []RoundResponse     `json:"selection_rounds"`
	PlacementFinalized bool                `json:"placement_finalized"`
	PlacedCount        int                 `json:"placed_count"`
	CreatedByID        uint                `json:"created_by_id"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// DriveListResponse wraps a paginated drive listing.
type DriveListResponse struct {
	Items      []DriveResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}

// PaginationMeta carries paging details for list endpoints.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewRoundResponses converts the stored round sequence.
func NewRoundResponses(rounds []models.SelectionRound) []RoundResponse {
	responses := make([]RoundResponse, 0, len(rounds))
	for i, round := range rounds {
		selected := round.SelectedStudents
		if selected == nil {
			selected = []uint{}
		}
		responses = append(responses, RoundResponse{
			Index:            i,
			Name:             round.Name,
			Details:          round.Details,
			ScheduledAt:      round.ScheduledAt,
			Status:           round.Status,
			SelectedStudents: selected,
		})
	}
	return responses
}

// NewDriveResponse converts a model into a DTO.
func NewDriveResponse(drive models.JobDrive) DriveResponse {
	return DriveResponse{
		ID:          drive.ID,
		CompanyName: drive.CompanyName,
		Role:        drive.Role,
		Description: drive.Description,
		CTC:         drive.CTC,
		Eligibility: EligibilityResponse{
			MinCGPA:            drive.MinCGPA,
			MaxBacklogs:        drive.MaxBacklogs,
			AllowedDepartments: drive.Departments(),
			AllowedBatches:     drive.Batches(),
			NoCurrentBacklogs:  drive.NoCurrentBacklogs,
			UnplacedOnly:       drive.UnplacedOnly,
		},
		DriveDate:          drive.DriveDate,
		Deadline:           drive.Deadline,
		DriveTime:          drive.DriveTime,
		IsActive:           drive.IsActive,
		SelectionRounds:    NewRoundResponses(drive.Rounds()),
		PlacementFinalized: drive.PlacementFinalized,
		PlacedCount:        len(drive.Placed()),
		CreatedByID:        drive.CreatedByID,
		CreatedAt:          drive.CreatedAt,
		UpdatedAt:          drive.UpdatedAt,
	}
}

// NewDriveResponseSlice converts a slice of models into DTOs.
func NewDriveResponseSlice(drives []models.JobDrive) []DriveResponse {
	responses := make([]DriveResponse, 0, len(drives))
	for _, drive := range drives {
		responses = append(responses, NewDriveResponse(drive))
	}
	return responses
}
