package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/events"
	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/repository"
)

const autoApproveComment = "Auto-approved (Placement Officer action)"

// DeletionService is the two-party approval workflow gating drive deletion.
// Representatives file a pending request for an officer to review; officers
// short-circuit straight to an approved record with the drive already gone.
type DeletionService interface {
	Request(ctx context.Context, driveID uint, payload dto.DeletionRequestCreate, actor Actor) (dto.DeletionRequestResponse, error)
	Review(ctx context.Context, requestID uint, payload dto.DeletionReviewRequest, actor Actor) (dto.DeletionRequestResponse, error)
	ListPending(ctx context.Context, actor Actor) ([]dto.DeletionRequestResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.DeletionRequestResponse, error)
}

type deletionService struct {
	requests  repository.DeletionRequestRepository
	drives    repository.DriveRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	bus       events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDeletionService builds the deletion approval workflow.
func NewDeletionService(
	requests repository.DeletionRequestRepository,
	drives repository.DriveRepository,
	validate *validator.Validate,
	bus events.Publisher,
	logger zerolog.Logger,
) DeletionService {
	return &deletionService{
		requests:  requests,
		drives:    drives,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		bus:       bus,
		logger:    logger.With().Str("component", "deletion_service").Logger(),
		now:       time.Now,
	}
}

func (s *deletionService) Request(ctx context.Context, driveID uint, payload dto.DeletionRequestCreate, actor Actor) (dto.DeletionRequestResponse, error) {
	if !actor.IsOfficer() && !actor.IsRepresentative() {
		return dto.DeletionRequestResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.DeletionRequestResponse{}, err
	}
	reason := strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
	if reason == "" {
		return dto.DeletionRequestResponse{}, errors.New("deletion reason empty after sanitization")
	}

	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DeletionRequestResponse{}, ErrDriveNotFound
		}
		return dto.DeletionRequestResponse{}, err
	}

	pending, err := s.requests.HasPendingForDrive(ctx, driveID)
	if err != nil {
		return dto.DeletionRequestResponse{}, err
	}
	if pending {
		return dto.DeletionRequestResponse{}, ErrDeletionAlreadyPending
	}

	// The snapshot is captured before any deletion can happen, so the
	// request record stays complete after the drive is gone.
	request := models.DeletionRequest{
		JobDriveID:    drive.ID,
		RequestedByID: actor.ID,
		Reason:        reason,
		Status:        models.DeletionStatusPending,
	}
	request.SetSnapshot(models.DriveSnapshot{
		CompanyName: drive.CompanyName,
		Role:        drive.Role,
		DriveDate:   drive.DriveDate,
		CreatedByID: drive.CreatedByID,
	})

	if actor.IsOfficer() {
		now := s.now()
		request.Status = models.DeletionStatusApproved
		request.ReviewedByID = &actor.ID
		request.ReviewedAt = &now
		request.ReviewComments = autoApproveComment

		if err := s.requests.SaveAndDeleteDrive(ctx, &request, drive.ID); err != nil {
			return dto.DeletionRequestResponse{}, err
		}

		s.publishDriveDeleted(ctx, drive)
		s.publishRequestEvent(ctx, events.DeletionRequestApproved, events.RoomBroadcast, request)
		s.logger.Info().Uint("job_drive_id", drive.ID).Uint("officer_id", actor.ID).Msg("drive deleted by officer")

		return dto.NewDeletionRequestResponse(request), nil
	}

	if err := s.requests.Create(ctx, &request); err != nil {
		return dto.DeletionRequestResponse{}, err
	}

	s.publishRequestEvent(ctx, events.DeletionRequestCreated, events.RoomOfficers, request)
	s.logger.Info().Uint("job_drive_id", drive.ID).Uint("requested_by", actor.ID).Msg("deletion requested")

	return dto.NewDeletionRequestResponse(request), nil
}

func (s *deletionService) Review(ctx context.Context, requestID uint, payload dto.DeletionReviewRequest, actor Actor) (dto.DeletionRequestResponse, error) {
	if !actor.IsOfficer() {
		return dto.DeletionRequestResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.DeletionRequestResponse{}, err
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DeletionRequestResponse{}, ErrDeletionRequestNotFound
		}
		return dto.DeletionRequestResponse{}, err
	}
	if request.Resolved() {
		return dto.DeletionRequestResponse{}, ErrDeletionRequestResolved
	}

	now := s.now()
	request.ReviewedByID = &actor.ID
	request.ReviewedAt = &now
	request.ReviewComments = strings.TrimSpace(s.sanitizer.Sanitize(payload.Comments))

	if payload.Action == "approve" {
		request.Status = models.DeletionStatusApproved

		// Deleting a drive that is already gone is tolerated.
		drive, driveErr := s.drives.GetByID(ctx, request.JobDriveID)
		if err := s.requests.SaveAndDeleteDrive(ctx, &request, request.JobDriveID); err != nil {
			return dto.DeletionRequestResponse{}, err
		}
		if driveErr == nil {
			s.publishDriveDeleted(ctx, drive)
		}
		s.publishRequestEvent(ctx, events.DeletionRequestApproved, events.RoomRepresentatives, request)
		s.logger.Info().Uint("request_id", request.ID).Uint("job_drive_id", request.JobDriveID).Msg("deletion approved")

		return dto.NewDeletionRequestResponse(request), nil
	}

	request.Status = models.DeletionStatusRejected
	if err := s.requests.Update(ctx, &request); err != nil {
		return dto.DeletionRequestResponse{}, err
	}

	s.publishRequestEvent(ctx, events.DeletionRequestRejected, events.RoomRepresentatives, request)
	s.logger.Info().Uint("request_id", request.ID).Uint("job_drive_id", request.JobDriveID).Msg("deletion rejected")

	return dto.NewDeletionRequestResponse(request), nil
}

func (s *deletionService) ListPending(ctx context.Context, actor Actor) ([]dto.DeletionRequestResponse, error) {
	if !actor.IsOfficer() {
		return nil, ErrForbidden
	}
	requests, err := s.requests.ListByStatus(ctx, models.DeletionStatusPending)
	if err != nil {
		return nil, err
	}
	return dto.NewDeletionRequestResponseSlice(requests), nil
}

func (s *deletionService) ListMine(ctx context.Context, actor Actor) ([]dto.DeletionRequestResponse, error) {
	requests, err := s.requests.ListByRequester(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewDeletionRequestResponseSlice(requests), nil
}

func (s *deletionService) publishDriveDeleted(ctx context.Context, drive models.JobDrive) {
	s.bus.Publish(ctx, events.Event{
		Name: events.DriveDeleted,
		Room: events.RoomBroadcast,
		Payload: map[string]interface{}{
			"job_drive_id": drive.ID,
			"company_name": drive.CompanyName,
		},
	})
}

func (s *deletionService) publishRequestEvent(ctx context.Context, name, room string, request models.DeletionRequest) {
	snapshot := request.Snapshot()
	s.bus.Publish(ctx, events.Event{
		Name: name,
		Room: room,
		Payload: map[string]interface{}{
			"request_id":   request.ID,
			"job_drive_id": request.JobDriveID,
			"company_name": snapshot.CompanyName,
			"status":       request.Status,
		},
	})
}
