package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	// DeletionStatusPending marks a request awaiting officer review.
	DeletionStatusPending = "pending"
	// DeletionStatusApproved marks an approved (and executed) deletion.
	DeletionStatusApproved = "approved"
	// DeletionStatusRejected marks a declined deletion.
	DeletionStatusRejected = "rejected"
)

// DriveSnapshot preserves the identifying details of a drive at the moment a
// deletion was requested, so the request record stays meaningful after the
// drive itself is removed.
type DriveSnapshot struct {
	CompanyName string    `json:"company_name"`
	Role        string    `json:"role"`
	DriveDate   time.Time `json:"drive_date"`
	CreatedByID uint      `json:"created_by_id"`
}

// DeletionRequest gates destructive removal of a JobDrive behind a
// two-party approval. It intentionally carries no foreign-key constraint on
// JobDriveID: approved requests outlive the drive they deleted.
type DeletionRequest struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	JobDriveID      uint           `gorm:"not null;index;index:idx_deletion_requests_one_pending,unique,where:status = 'pending'" json:"job_drive_id"`
	JobDriveDetails datatypes.JSON `gorm:"type:json" json:"-"`
	RequestedByID   uint           `gorm:"not null;index" json:"requested_by_id"`
	Reason          string         `gorm:"size:500;not null" json:"reason"`
	Status          string         `gorm:"size:16;not null;default:pending;index" json:"status"`
	ReviewedByID    *uint          `json:"reviewed_by_id"`
	ReviewedAt      *time.Time     `json:"reviewed_at"`
	ReviewComments  string         `gorm:"size:500" json:"review_comments"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// SetSnapshot serializes the drive details captured at request time.
func (r *DeletionRequest) SetSnapshot(snapshot DriveSnapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		r.JobDriveDetails = datatypes.JSON([]byte("{}"))
		return
	}
	r.JobDriveDetails = datatypes.JSON(data)
}

// Snapshot deserializes the captured drive details.
func (r DeletionRequest) Snapshot() DriveSnapshot {
	var snapshot DriveSnapshot
	if len(r.JobDriveDetails) == 0 {
		return snapshot
	}
	_ = json.Unmarshal(r.JobDriveDetails, &snapshot)
	return snapshot
}

// Resolved reports whether the request has left the pending state.
func (r DeletionRequest) Resolved() bool {
	return r.Status != DeletionStatusPending
}
