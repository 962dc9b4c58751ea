package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/events"
	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/repository"
)

// RoundService is the selection-round state machine. Status transitions are
// caller-driven and selections replace the previous set wholesale.
type RoundService interface {
	SetStatus(ctx context.Context, driveID uint, roundIndex int, status string, actor Actor) (dto.RoundResponse, error)
	SelectStudents(ctx context.Context, driveID uint, roundIndex int, studentIDs []uint, actor Actor) (dto.RoundResponse, error)
	ReplaceRounds(ctx context.Context, driveID uint, payloads []dto.RoundPayload, actor Actor) ([]dto.RoundResponse, error)
}

type roundService struct {
	drives repository.DriveRepository
	users  repository.UserRepository
	bus    events.Publisher
	logger zerolog.Logger
	now    func() time.Time
}

// NewRoundService builds the selection-round service.
func NewRoundService(drives repository.DriveRepository, users repository.UserRepository, bus events.Publisher, logger zerolog.Logger) RoundService {
	return &roundService{
		drives: drives,
		users:  users,
		bus:    bus,
		logger: logger.With().Str("component", "round_service").Logger(),
		now:    time.Now,
	}
}

func (s *roundService) SetStatus(ctx context.Context, driveID uint, roundIndex int, status string, actor Actor) (dto.RoundResponse, error) {
	if !models.ValidRoundStatus(status) {
		return dto.RoundResponse{}, ErrInvalidRoundStatus
	}

	drive, err := s.loadManaged(ctx, driveID, actor)
	if err != nil {
		return dto.RoundResponse{}, err
	}

	rounds := drive.Rounds()
	if roundIndex < 0 || roundIndex >= len(rounds) {
		return dto.RoundResponse{}, ErrInvalidRoundIndex
	}

	rounds[roundIndex].Status = status
	drive.SetRounds(rounds)
	if err := s.drives.Update(ctx, &drive); err != nil {
		return dto.RoundResponse{}, err
	}

	s.bus.Publish(ctx, events.Event{
		Name: events.RoundStatusUpdated,
		Room: events.RoomBroadcast,
		Payload: map[string]interface{}{
			"job_drive_id": drive.ID,
			"round_index":  roundIndex,
			"round_name":   rounds[roundIndex].Name,
			"status":       status,
		},
	})
	s.logger.Info().Uint("job_drive_id", drive.ID).Int("round", roundIndex).Str("status", status).Msg("round status updated")

	return dto.NewRoundResponses(rounds)[roundIndex], nil
}

// SelectStudents replaces the round's advancing set wholesale. Callers pass
// the full desired membership, not a delta.
func (s *roundService) SelectStudents(ctx context.Context, driveID uint, roundIndex int, studentIDs []uint, actor Actor) (dto.RoundResponse, error) {
	drive, err := s.loadManaged(ctx, driveID, actor)
	if err != nil {
		return dto.RoundResponse{}, err
	}

	rounds := drive.Rounds()
	if roundIndex < 0 || roundIndex >= len(rounds) {
		return dto.RoundResponse{}, ErrInvalidRoundIndex
	}

	if studentIDs == nil {
		studentIDs = []uint{}
	}
	rounds[roundIndex].SelectedStudents = studentIDs
	drive.SetRounds(rounds)
	if err := s.drives.Update(ctx, &drive); err != nil {
		return dto.RoundResponse{}, err
	}

	s.bus.Publish(ctx, events.Event{
		Name: events.StudentsSelected,
		Room: events.RoomBroadcast,
		Payload: map[string]interface{}{
			"job_drive_id":   drive.ID,
			"round_index":    roundIndex,
			"round_name":     rounds[roundIndex].Name,
			"selected_count": len(studentIDs),
		},
	})
	s.logger.Info().Uint("job_drive_id", drive.ID).Int("round", roundIndex).Int("selected", len(studentIDs)).Msg("round selection updated")

	return dto.NewRoundResponses(rounds)[roundIndex], nil
}

// ReplaceRounds wholesale-replaces the drive's round sequence. Callers adding
// rounds to a drive with recorded selections must send the full
// existing-plus-new sequence; preservation-by-index keeps selections whose
// payload entry omits them.
func (s *roundService) ReplaceRounds(ctx context.Context, driveID uint, payloads []dto.RoundPayload, actor Actor) ([]dto.RoundResponse, error) {
	drive, err := s.loadManaged(ctx, driveID, actor)
	if err != nil {
		return nil, err
	}

	rounds := roundsFromPayload(payloads, drive.Rounds())
	drive.SetRounds(rounds)
	if err := s.drives.Update(ctx, &drive); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.Event{
		Name: events.SelectionRoundsAdded,
		Room: events.RoomBroadcast,
		Payload: map[string]interface{}{
			"job_drive_id": drive.ID,
			"round_count":  len(rounds),
		},
	})
	s.logger.Info().Uint("job_drive_id", drive.ID).Int("rounds", len(rounds)).Msg("selection rounds replaced")

	return dto.NewRoundResponses(rounds), nil
}

func (s *roundService) loadManaged(ctx context.Context, driveID uint, actor Actor) (models.JobDrive, error) {
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
