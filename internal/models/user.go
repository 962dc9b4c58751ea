package models

import (
	"strconv"
	"strings"
	"time"
)

// Role identifies the portal role an authenticated user acts under.
type Role string

const (
	// RoleStudent is the default role for enrolled students.
	RoleStudent Role = "student"
	// RoleRepresentative is the student-elected placement representative role.
	RoleRepresentative Role = "placement_representative"
	// RoleOfficer is the staff placement officer role.
	RoleOfficer Role = "placement_officer"
)

// NormalizeRole maps the role synonyms found in issued tokens onto the
// canonical Role values. Unknown inputs map to the empty Role.
func NormalizeRole(value string) Role {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "student":
		return RoleStudent
	case "pr", "placement_representative", "placement-representative", "representative":
		return RoleRepresentative
	case "po", "placement_officer", "placement-officer", "officer":
		return RoleOfficer
	default:
		return Role("")
	}
}

// Valid reports whether the role is one of the canonical portal roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleRepresentative || r == RoleOfficer
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

const (
	// PlacementStatusPlaced marks a user holding at least one placement offer.
	PlacementStatusPlaced = "placed"
	// PlacementStatusUnplaced marks a user without a placement offer.
	PlacementStatusUnplaced = "unplaced"
)

// User represents a portal account with its placement profile.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Email           string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	RollNumber      string    `gorm:"size:64;index" json:"roll_number"`
	MobileNumber    string    `gorm:"size:32" json:"mobile_number"`
	Role            Role      `gorm:"size:64;not null;default:student" json:"role"`
	Department      string    `gorm:"size:128" json:"department"`
	Batch           string    `gorm:"size:16" json:"batch"`
	GraduationYear  int       `json:"graduation_year"`
	CGPA            float64   `json:"cgpa"`
	CurrentBacklogs int       `json:"current_backlogs"`
	IsPlaced        bool      `gorm:"default:false" json:"is_placed"`
	PlacementStatus string    `gorm:"size:16;default:unplaced" json:"placement_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EffectiveBatch returns the user's batch, falling back to the graduation
// year when the batch field was never filled in.
func (u User) EffectiveBatch() string {
	if strings.TrimSpace(u.Batch) != "" {
		return strings.TrimSpace(u.Batch)
	}
	if u.GraduationYear > 0 {
		return strconv.Itoa(u.GraduationYear)
	}
	return ""
}
