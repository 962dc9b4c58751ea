package models

import "time"

const (
	// ApplicationStatusApplied indicates the application has been received.
	ApplicationStatusApplied = "applied"
	// ApplicationStatusShortlisted indicates the applicant advanced past screening.
	ApplicationStatusShortlisted = "shortlisted"
	// ApplicationStatusRejected indicates the applicant was turned down.
	ApplicationStatusRejected = "rejected"
	// ApplicationStatusSelected indicates the applicant received an offer.
	ApplicationStatusSelected = "selected"
)

// ValidApplicationStatus reports whether the value is a recognised status.
func ValidApplicationStatus(status string) bool {
	switch status {
	case ApplicationStatusApplied, ApplicationStatusShortlisted,
		ApplicationStatusRejected, ApplicationStatusSelected:
		return true
	default:
		return false
	}
}

// Application records one user's intent to be considered for a drive. The
// composite unique index closes the duplicate-application race: a second
// concurrent apply fails at the database rather than slipping past a stale
// read.
type Application struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	JobDriveID  uint      `gorm:"not null;uniqueIndex:idx_applications_drive_applicant" json:"job_drive_id"`
	JobDrive    JobDrive  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ApplicantID uint      `gorm:"not null;uniqueIndex:idx_applications_drive_applicant" json:"applicant_id"`
	Applicant   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"applicant"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
	Status      string    `gorm:"size:32;not null;default:applied" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
