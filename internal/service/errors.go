package service

import "errors"

// Sentinel errors surfaced by the placement services. Handlers translate
// these into HTTP statuses; messages name the unmet precondition so callers
// can act on them.
var (
	ErrDriveNotFound = errors.New("job drive not found")
	ErrUserNotFound  = errors.New("user not found")

	ErrForbidden = errors.New("actor is not authorized for this operation")

	ErrDriveInactive        = errors.New("drive is not accepting applications")
	ErrDeadlineUnresolvable = errors.New("drive has neither a deadline nor a drive date")
	ErrDeadlinePassed       = errors.New("application deadline has passed")
	ErrAlreadyApplied       = errors.New("an application for this drive already exists")

	ErrInvalidRoundIndex  = errors.New("selection round index out of bounds")
	ErrInvalidRoundStatus = errors.New("unknown selection round status")

	ErrNoSelectionRounds   = errors.New("drive has no selection rounds")
	ErrEmptyFinalRound     = errors.New("final round has no selected students")
	ErrNoPlacedResolved    = errors.New("no selected student matched an application on this drive")
	ErrInvalidPlacedIndex  = errors.New("placed student index out of bounds")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("unknown application status")

	ErrDeletionAlreadyPending  = errors.New("deletion request already pending for this drive")
	ErrDeletionRequestNotFound = errors.New("deletion request not found")
	ErrDeletionRequestResolved = errors.New("deletion request has already been reviewed")
)
