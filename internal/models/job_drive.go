package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Round statuses. Transitions are caller-driven; there are no timers.
const (
	RoundStatusPending    = "pending"
	RoundStatusInProgress = "in-progress"
	RoundStatusCompleted  = "completed"
)

// ValidRoundStatus reports whether the value is a recognised round status.
func ValidRoundStatus(status string) bool {
	return status == RoundStatusPending || status == RoundStatusInProgress || status == RoundStatusCompleted
}

// SelectionRound is one stage of a drive's selection pipeline. Rounds are
// stored inside the drive as an ordered JSON array; the last element is the
// final round.
type SelectionRound struct {
	Name             string     `json:"name"`
	Details          string     `json:"details,omitempty"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	Status           string     `json:"status"`
	SelectedStudents []uint     `json:"selected_students,omitempty"`
}

// PlacedStudentSnapshot is the drive-scoped denormalized record of a placed
// student. It deliberately duplicates user fields so the history survives
// later changes to the user record.
type PlacedStudentSnapshot struct {
	Name         string    `json:"name"`
	RollNumber   string    `json:"roll_number"`
	Department   string    `json:"department"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number,omitempty"`
	AddedByID    uint      `json:"added_by_id"`
	AddedAt      time.Time `json:"added_at"`
}

// JobDrive is one posted placement opportunity together with its eligibility
// gate, selection pipeline and placement roster.
type JobDrive struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	CompanyName string  `gorm:"size:255;not null" json:"company_name"`
	Role        string  `gorm:"size:255;not null" json:"role"`
	Description string  `gorm:"type:text;not null" json:"description"`
	CTC         float64 `json:"ctc"`

	MinCGPA            *float64       `json:"min_cgpa"`
	MaxBacklogs        *int           `json:"max_backlogs"`
	AllowedDepartments datatypes.JSON `gorm:"type:json" json:"-"`
	AllowedBatches     datatypes.JSON `gorm:"type:json" json:"-"`
	NoCurrentBacklogs  bool           `gorm:"default:false" json:"no_current_backlogs"`
	UnplacedOnly       bool           `gorm:"default:false" json:"unplaced_only"`

	DriveDate time.Time  `gorm:"not null" json:"drive_date"`
	Deadline  *time.Time `json:"deadline"`
	DriveTime string     `gorm:"size:8" json:"drive_time"`

	IsActive           bool           `gorm:"default:true" json:"is_active"`
	SelectionRounds    datatypes.JSON `gorm:"type:json" json:"-"`
	PlacedStudents     datatypes.JSON `gorm:"type:json" json:"-"`
	PlacementFinalized bool           `gorm:"default:false" json:"placement_finalized"`

	CreatedByID  uint          `gorm:"not null;index" json:"created_by_id"`
	CreatedBy    User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Applications []Application `gorm:"foreignKey:JobDriveID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetDepartments serializes the allowed department set.
func (d *JobDrive) SetDepartments(departments []string) {
	d.AllowedDepartments = marshalJSON(departments)
}

// Departments deserializes the allowed department set.
func (d JobDrive) Departments() []string {
	return unmarshalStrings(d.AllowedDepartments)
}

// SetBatches serializes the allowed batch set.
func (d *JobDrive) SetBatches(batches []string) {
	d.AllowedBatches = marshalJSON(batches)
}

// Batches deserializes the allowed batch set.
func (d JobDrive) Batches() []string {
	return unmarshalStrings(d.AllowedBatches)
}

// SetRounds serializes the ordered round sequence.
func (d *JobDrive) SetRounds(rounds []SelectionRound) {
	d.SelectionRounds = marshalJSON(rounds)
}

// Rounds deserializes the ordered round sequence.
func (d JobDrive) Rounds() []SelectionRound {
	if len(d.SelectionRounds) == 0 {
		return nil
	}
	var rounds []SelectionRound
	if err := json.Unmarshal(d.SelectionRounds, &rounds); err != nil {
		return nil
	}
	return rounds
}

// SetPlaced serializes the placed-student roster.
func (d *JobDrive) SetPlaced(placed []PlacedStudentSnapshot) {
	d.PlacedStudents = marshalJSON(placed)
}

// Placed deserializes the placed-student roster.
func (d JobDrive) Placed() []PlacedStudentSnapshot {
	if len(d.PlacedStudents) == 0 {
		return nil
	}
	var placed []PlacedStudentSnapshot
	if err := json.Unmarshal(d.PlacedStudents, &placed); err != nil {
		return nil
	}
	return placed
}

// ResolvedDeadline computes the application cutoff: the explicit deadline when
// present, otherwise the drive date. The clock time is applied only when both
// a deadline and a drive time exist; in every other case the cutoff is the
// end of the resolved day.
func (d JobDrive) ResolvedDeadline() (time.Time, bool) {
	base := d.DriveDate
	withTime := false
	if d.Deadline != nil {
		base = *d.Deadline
		withTime = d.DriveTime != ""
	}
	if base.IsZero() {
		return time.Time{}, false
	}

	if withTime {
		if clock, err := time.Parse("15:04", d.DriveTime); err == nil {
			return time.Date(base.Year(), base.Month(), base.Day(),
				clock.Hour(), clock.Minute(), 0, 0, base.Location()), true
		}
	}

	return time.Date(base.Year(), base.Month(), base.Day(), 23, 59, 59,
		int(999*time.Millisecond), base.Location()), true
}

// AcceptsApplicationsAt reports whether the drive is still open at the given
// instant. It does not consider IsActive; callers check that separately so the
// two failures stay distinguishable.
func (d JobDrive) AcceptsApplicationsAt(reference time.Time) bool {
	deadline, ok := d.ResolvedDeadline()
	if !ok {
		return false
	}
	return !reference.After(deadline)
}

func marshalJSON(value interface{}) datatypes.JSON {
	data, err := json.Marshal(value)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}

func unmarshalStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}
