package service

import (
	"strings"

	"github.com/campushire/placement-api/internal/models"
)

// Actor is the authenticated identity an operation runs as. The identity is
// supplied by the authentication collaborator; the services trust it.
type Actor struct {
	ID   uint
	Role models.Role
}

// IsOfficer reports whether the actor holds the placement officer role.
func (a Actor) IsOfficer() bool { return a.Role == models.RoleOfficer }

// IsRepresentative reports whether the actor is a placement representative.
func (a Actor) IsRepresentative() bool { return a.Role == models.RoleRepresentative }

// IsStudent reports whether the actor is a plain student.
func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }

// canManageDrive implements the shared management rule: officers manage any
// drive; representatives manage drives they created or drives created within
// their own department. The department comparison is case- and
// whitespace-insensitive.
func canManageDrive(actor Actor, actorDepartment string, drive models.JobDrive) bool {
	if actor.IsOfficer() {
		return true
	}
	if !actor.IsRepresentative() {
		return false
	}
	if drive.CreatedByID == actor.ID {
		return true
	}
	return sameDepartment(actorDepartment, drive.CreatedBy.Department)
}

func sameDepartment(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return a != "" && a == b
}
