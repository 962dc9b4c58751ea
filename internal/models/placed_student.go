package models

import "time"

// PlacedStudent is the normalized side-table projection of a drive's placed
// roster, keyed by (job_drive_id, roll_number). It exists so placed records
// can be queried and updated without loading the whole drive aggregate.
type PlacedStudent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	JobDriveID   uint      `gorm:"not null;uniqueIndex:idx_placed_drive_roll" json:"job_drive_id"`
	RollNumber   string    `gorm:"size:64;not null;uniqueIndex:idx_placed_drive_roll" json:"roll_number"`
	Name         string    `gorm:"size:255" json:"name"`
	Department   string    `gorm:"size:128" json:"department"`
	Email        string    `gorm:"size:255;index" json:"email"`
	MobileNumber string    `gorm:"size:32" json:"mobile_number"`
	CompanyName  string    `gorm:"size:255" json:"company_name"`
	AddedByID    uint      `json:"added_by_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
