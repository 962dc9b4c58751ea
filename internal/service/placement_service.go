package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/events"
	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/observability"
	"github.com/campushire/placement-api/internal/repository"
)

// PlacementService keeps the three projections of placed state consistent:
// the drive's embedded roster, the normalized placed_students table and the
// user profile flags. Consistency is maintained by an explicit propagation
// protocol, not by cross-table transactions.
type PlacementService interface {
	Finalize(ctx context.Context, driveID uint, actor Actor) (dto.FinalizePlacementResponse, error)
	ListPlaced(ctx context.Context, driveID uint) ([]dto.PlacedStudentResponse, error)
	RemovePlaced(ctx context.Context, driveID uint, index int, actor Actor) error
	UpdatePlaced(ctx context.Context, driveID uint, index int, patch dto.PlacedStudentUpdateRequest, actor Actor) (dto.PlacedStudentResponse, error)
}

type placementService struct {
	drives       repository.DriveRepository
	applications repository.ApplicationRepository
	placed       repository.PlacedStudentRepository
	users        repository.UserRepository
	bus          events.Publisher
	tracer       trace.Tracer
	logger       zerolog.Logger
	now          func() time.Time
}

// NewPlacementService builds the placement record store.
func NewPlacementService(
	drives repository.DriveRepository,
	applications repository.ApplicationRepository,
	placed repository.PlacedStudentRepository,
	users repository.UserRepository,
	bus events.Publisher,
	logger zerolog.Logger,
) PlacementService {
	return &placementService{
		drives:       drives,
		applications: applications,
		placed:       placed,
		users:        users,
		bus:          bus,
		tracer:       otel.Tracer("github.com/campushire/placement-api/internal/service"),
		logger:       logger.With().Str("component", "placement_service").Logger(),
		now:          time.Now,
	}
}

// Finalize converts the final round's selected candidates into durable placed
// records and propagates placed status across all three projections. On an
// already-finalized drive it becomes a resync: the existing roster is
// re-pushed onto the side table and user flags, making retries safe.
func (s *placementService) Finalize(ctx context.Context, driveID uint, actor Actor) (dto.FinalizePlacementResponse, error) {
	ctx, span := s.tracer.Start(ctx, "placement.finalize", trace.WithAttributes(
		attribute.Int("job_drive.id", int(driveID)),
	))
	defer span.End()

	drive, err := s.loadManaged(ctx, driveID, actor)
	if err != nil {
		return dto.FinalizePlacementResponse{}, err
	}

	rounds := drive.Rounds()
	if len(rounds) == 0 {
		return dto.FinalizePlacementResponse{}, ErrNoSelectionRounds
	}

	if drive.PlacementFinalized {
		placed := drive.Placed()
		s.propagate(ctx, drive, placed, nil)
		s.logger.Info().Uint("job_drive_id", drive.ID).Int("placed", len(placed)).Msg("placement resynced")
		return dto.FinalizePlacementResponse{JobDriveID: drive.ID, PlacedCount: len(placed), Resynced: true}, nil
	}

	finalRound := rounds[len(rounds)-1]
	if len(finalRound.SelectedStudents) == 0 {
		return dto.FinalizePlacementResponse{}, ErrEmptyFinalRound
	}

	driveApplications, err := s.applications.ListByDrive(ctx, drive.ID)
	if err != nil {
		return dto.FinalizePlacementResponse{}, err
	}
	applicants := make(map[uint]models.User, len(driveApplications))
	for _, application := range driveApplications {
		applicants[application.ApplicantID] = application.Applicant
	}

	now := s.now()
	var snapshots []models.PlacedStudentSnapshot
	var matchedIDs []uint
	for _, studentID := range finalRound.SelectedStudents {
		user, ok := applicants[studentID]
		if !ok {
			s.logger.Warn().Uint("job_drive_id", drive.ID).Uint("student_id", studentID).
				Msg("selected student has no application on this drive")
			continue
		}
		snapshots = append(snapshots, models.PlacedStudentSnapshot{
			Name:         user.Name,
			RollNumber:   user.RollNumber,
			Department:   user.Department,
			Email:        user.Email,
			MobileNumber: user.MobileNumber,
			AddedByID:    actor.ID,
			AddedAt:      now,
		})
		matchedIDs = append(matchedIDs, user.ID)
	}
	if len(snapshots) == 0 {
		return dto.FinalizePlacementResponse{}, ErrNoPlacedResolved
	}

	drive.SetPlaced(snapshots)
	drive.PlacementFinalized = true
	if err := s.drives.Update(ctx, &drive); err != nil {
		return dto.FinalizePlacementResponse{}, err
	}

	s.propagate(ctx, drive, snapshots, matchedIDs)

	observability.PlacementsFinalized().Inc()
	s.bus.Publish(ctx, events.Event{
		Name: events.PlacementFinalized,
		Room: events.RoomBroadcast,
		Payload: map[string]interface{}{
			"job_drive_id": drive.ID,
			"company_name": drive.CompanyName,
			"placed_count": len(snapshots),
		},
	})
	s.logger.Info().Uint("job_drive_id", drive.ID).Int("placed", len(snapshots)).Msg("placement finalized")

	return dto.FinalizePlacementResponse{JobDriveID: drive.ID, PlacedCount: len(snapshots)}, nil
}

func (s *placementService) ListPlaced(ctx context.Context, driveID uint) ([]dto.PlacedStudentResponse, error) {
	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriveNotFound
		}
		return nil, err
	}
	return dto.NewPlacedStudentResponses(drive.Placed()), nil
}

// RemovePlaced removes the roster entry at the index and propagates the
// removal. The user's placed flag is reset only when no other drive still
// lists the student as placed.
func (s *placementService) RemovePlaced(ctx context.Context, driveID uint, index int, actor Actor) error {
	drive, err := s.loadManaged(ctx, driveID, actor)
	if err != nil {
		return err
	}

	placed := drive.Placed()
	if index < 0 || index >= len(placed) {
		return ErrInvalidPlacedIndex
	}
	removed := placed[index]
	placed = append(placed[:index], placed[index+1:]...)
	drive.SetPlaced(placed)

	if err := s.drives.Update(ctx, &drive); err != nil {
		return err
	}

	if removed.RollNumber != "" {
		if err := s.placed.DeleteByDriveAndRoll(ctx, drive.ID, removed.RollNumber); err != nil {
			s.logger.Warn().Err(err).Msg("failed to remove normalized placed record")
		}
	} else if removed.Email != "" {
		if err := s.placed.DeleteByDriveAndEmail(ctx, drive.ID, removed.Email); err != nil {
			s.logger.Warn().Err(err).Msg("failed to remove normalized placed record")
		}
	}

	if removed.Email != "" {
		others, err := s.placed.CountOtherPlacements(ctx, drive.ID, removed.RollNumber, removed.Email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to check other placements; keeping placed flag")
		} else if others == 0 {
			if err := s.users.ResetPlacementByEmail(ctx, removed.Email); err != nil {
				s.logger.Warn().Err(err).Str("email", removed.Email).Msg("failed to reset placed flag")
			}
		}
	}

	s.bus.Publish(ctx, events.Event{
		Name: events.DriveUpdated,
		Room: events.RoomBroadcast,
		Payload: map[string]interface{}{
			"job_drive_id": drive.ID,
			"placed_count": len(placed),
		},
	})

	return nil
}

// UpdatePlaced merges the patch into the roster entry at the index and
// refreshes the normalized row, re-keying it when the roll number changes.
func (s *placementService) UpdatePlaced(ctx context.Context, driveID uint, index int, patch dto.PlacedStudentUpdateRequest, actor Actor) (dto.PlacedStudentResponse, error) {
	drive, err := s.loadManaged(ctx, driveID, actor)
	if err != nil {
		return dto.PlacedStudentResponse{}, err
	}

	placed := drive.Placed()
	if index < 0 || index >= len(placed) {
		return dto.PlacedStudentResponse{}, ErrInvalidPlacedIndex
	}

	previousRoll := placed[index].RollNumber
	if patch.Name != nil {
		placed[index].Name = *patch.Name
	}
	if patch.RollNumber != nil {
		placed[index].RollNumber = *patch.RollNumber
	}
	if patch.Department != nil {
		placed[index].Department = *patch.Department
	}
	if patch.Email != nil {
		placed[index].Email = *patch.Email
	}
	if patch.MobileNumber != nil {
		placed[index].MobileNumber = *patch.MobileNumber
	}

	drive.SetPlaced(placed)
	if err := s.drives.Update(ctx, &drive); err != nil {
		return dto.PlacedStudentResponse{}, err
	}

	if previousRoll != "" && previousRoll != placed[index].RollNumber {
		if err := s.placed.DeleteByDriveAndRoll(ctx, drive.ID, previousRoll); err != nil {
			s.logger.Warn().Err(err).Msg("failed to delete re-keyed placed record")
		}
	}
	s.upsertOne(ctx, drive, placed[index])

	return dto.NewPlacedStudentResponses(placed)[index], nil
}

// propagate runs the second and third projection writes: the normalized
// side-table upserts and the user profile flags. Every write is best-effort
// and independently retried by the resync path; one student's failure never
// aborts the batch.
func (s *placementService) propagate(ctx context.Context, drive models.JobDrive, snapshots []models.PlacedStudentSnapshot, matchedIDs []uint) {
	var emails, rolls []string
	for _, snapshot := range snapshots {
		s.upsertOne(ctx, drive, snapshot)
		if snapshot.Email != "" {
			emails = append(emails, snapshot.Email)
		}
		if snapshot.RollNumber != "" {
			rolls = append(rolls, snapshot.RollNumber)
		}
	}

	if len(matchedIDs) > 0 {
		if _, err := s.users.MarkPlacedByIDs(ctx, matchedIDs); err != nil {
			s.logger.Warn().Err(err).Msg("failed to flag placed users by id")
		}
	}
	// Defensive second pass: re-match by email/roll union to catch profiles
	// that drifted since application time.
	if _, err := s.users.MarkPlacedByEmailsOrRolls(ctx, emails, rolls); err != nil {
		s.logger.Warn().Err(err).Msg("failed to flag placed users by email/roll")
	}
}

func (s *placementService) upsertOne(ctx context.Context, drive models.JobDrive, snapshot models.PlacedStudentSnapshot) {
	if snapshot.RollNumber == "" {
		return
	}
	record := models.PlacedStudent{
		JobDriveID:   drive.ID,
		RollNumber:   snapshot.RollNumber,
		Name:         snapshot.Name,
		Department:   snapshot.Department,
		Email:        snapshot.Email,
		MobileNumber: snapshot.MobileNumber,
		CompanyName:  drive.CompanyName,
		AddedByID:    snapshot.AddedByID,
	}
	if err := s.placed.Upsert(ctx, &record); err != nil {
		s.logger.Warn().Err(err).Str("roll_number", snapshot.RollNumber).
			Msg("failed to upsert normalized placed record")
	}
}

func (s *placementService) loadManaged(ctx context.Context, driveID uint, actor Actor) (models.JobDrive, error) {
	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.JobDrive{}, ErrDriveNotFound
		}
		return models.JobDrive{}, err
	}

	department := ""
	if actor.IsRepresentative() {
		if user, err := s.users.GetByID(ctx, actor.ID); err == nil {
			department = user.Department
		}
	}
	if !canManageDrive(actor, department, drive) {
		return models.JobDrive{}, ErrForbidden
	}
	return drive, nil
}
