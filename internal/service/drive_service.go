package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/eligibility"
	"github.com/campushire/placement-api/internal/events"
	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/observability"
	"github.com/campushire/placement-api/internal/repository"
)

const driveDateLayout = "2006-01-02"

// DriveService exposes the job-drive lifecycle use cases.
type DriveService interface {
	Create(ctx context.Context, payload dto.DriveCreateRequest, actor Actor) (dto.DriveResponse, error)
	List(ctx context.Context, filter repository.DriveFilter) (dto.DriveListResponse, error)
	Get(ctx context.Context, id uint) (dto.DriveResponse, error)
	ListEligible(ctx context.Context, actor Actor) ([]dto.DriveResponse, error)
	CheckEligibility(ctx context.Context, driveID uint, actor Actor) ([]string, error)
	Apply(ctx context.Context, driveID uint, actor Actor) (dto.ApplicationResponse, error)
	Update(ctx context.Context, driveID uint, patch dto.DriveUpdateRequest, actor Actor) (dto.DriveResponse, error)
	ListApplications(ctx context.Context, driveID uint, actor Actor) ([]dto.ApplicationResponse, error)
	ListMyApplications(ctx context.Context, actor Actor) ([]dto.MyApplicationResponse, error)
	UpdateApplicationStatus(ctx context.Context, driveID, applicationID uint, status string, actor Actor) (dto.ApplicationResponse, error)
}

type driveService struct {
	drives       repository.DriveRepository
	applications repository.ApplicationRepository
	users        repository.UserRepository
	redis        *redis.Client
	cacheTTL     time.Duration
	ctcThreshold float64
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	bus          events.Publisher
	logger       zerolog.Logger
	now          func() time.Time
}

// NewDriveService builds the drive lifecycle service. The redis client is
// optional; without it the eligible-drives listing is computed on every call.
func NewDriveService(
	drives repository.DriveRepository,
	applications repository.ApplicationRepository,
	users repository.UserRepository,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	ctcThresholdLPA float64,
	validate *validator.Validate,
	bus events.Publisher,
	logger zerolog.Logger,
) DriveService {
	return &driveService{
		drives:       drives,
		applications: applications,
		users:        users,
		redis:        redisClient,
		cacheTTL:     cacheTTL,
		ctcThreshold: ctcThresholdLPA,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		bus:          bus,
		logger:       logger.With().Str("component", "drive_service").Logger(),
		now:          time.Now,
	}
}

func (s *driveService) Create(ctx context.Context, payload dto.DriveCreateRequest, actor Actor) (dto.DriveResponse, error) {
	if !actor.IsOfficer() && !actor.IsRepresentative() {
		return dto.DriveResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.DriveResponse{}, err
	}

	driveDate, err := time.Parse(driveDateLayout, payload.DriveDate)
	if err != nil {
		return dto.DriveResponse{}, fmt.Errorf("invalid drive date: %w", err)
	}

	drive := models.JobDrive{
		CompanyName:       payload.CompanyName,
		Role:              payload.Role,
		Description:       s.sanitizer.Sanitize(payload.Description),
		CTC:               payload.CTC,
		MinCGPA:           payload.MinCGPA,
		MaxBacklogs:       payload.MaxBacklogs,
		NoCurrentBacklogs: payload.NoCurrentBacklogs,
		UnplacedOnly:      payload.UnplacedOnly,
		DriveDate:         driveDate,
		IsActive:          true,
		CreatedByID:       actor.ID,
	}
	drive.SetDepartments(payload.AllowedDepartments)
	drive.SetBatches(payload.AllowedBatches)
	drive.SetRounds(roundsFromPayload(payload.SelectionRounds, nil))
	drive.SetPlaced(nil)

	if payload.Deadline != nil {
		deadline, err := time.Parse(driveDateLayout, *payload.Deadline)
		if err != nil {
			return dto.DriveResponse{}, fmt.Errorf("invalid deadline: %w", err)
		}
		drive.Deadline = &deadline
	}
	if payload.DriveTime != nil {
		drive.DriveTime = *payload.DriveTime
	}

	if err := s.drives.Create(ctx, &drive); err != nil {
		return dto.DriveResponse{}, err
	}

	observability.DrivesCreated().Inc()
	s.bus.Publish(ctx, events.Event{
		Name: events.DriveCreated,
		Room: events.RoomBroadcast,
		Payload: map[string]interface{}{
			"job_drive_id": drive.ID,
			"company_name": drive.CompanyName,
			"role":         drive.Role,
		},
	})
	s.logger.Info().Uint("job_drive_id", drive.ID).Str("company", drive.CompanyName).Msg("drive created")

	return dto.NewDriveResponse(drive), nil
}

func (s *driveService) List(ctx context.Context, filter repository.DriveFilter) (dto.DriveListResponse, error) {
	drives, total, err := s.drives.ListWithFilter(ctx, filter)
	if err != nil {
		return dto.DriveListResponse{}, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	totalPages := 1
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}

	return dto.DriveListResponse{
		Items: dto.NewDriveResponseSlice(drives),
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *driveService) Get(ctx context.Context, id uint) (dto.DriveResponse, error) {
	drive, err := s.drives.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DriveResponse{}, ErrDriveNotFound
		}
		return dto.DriveResponse{}, err
	}
	return dto.NewDriveResponse(drive), nil
}

func (s *driveService) ListEligible(ctx context.Context, actor Actor) ([]dto.DriveResponse, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	cacheKey := fmt.Sprintf("placement:eligible:%d", actor.ID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var responses []dto.DriveResponse
			if err := json.Unmarshal([]byte(cached), &responses); err == nil {
				return responses, nil
			}
		}
	}

	drives, err := s.drives.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	profile := eligibility.ProfileFor(user)
	now := s.now()
	eligible := make([]models.JobDrive, 0, len(drives))
	for _, drive := range drives {
		if !drive.AcceptsApplicationsAt(now) {
			continue
		}
		if eligibility.IsEligible(profile, eligibility.RulesFor(drive, s.ctcThreshold)) {
			eligible = append(eligible, drive)
		}
	}

	responses := dto.NewDriveResponseSlice(eligible)

	if s.redis != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache eligible drives")
			}
		}
	}

	return responses, nil
}

func (s *driveService) CheckEligibility(ctx context.Context, driveID uint, actor Actor) ([]string, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriveNotFound
		}
		return nil, err
	}

	reasons := eligibility.Evaluate(eligibility.ProfileFor(user), eligibility.RulesFor(drive, s.ctcThreshold))
	if reasons == nil {
		reasons = []string{}
	}
	return reasons, nil
}

// Apply records an application. Eligibility is deliberately not enforced
// here: the gate applies to listing views only, while applying stays open to
// any student or representative before the deadline.
func (s *driveService) Apply(ctx context.Context, driveID uint, actor Actor) (dto.ApplicationResponse, error) {
	if !actor.IsStudent() && !actor.IsRepresentative() {
		return dto.ApplicationResponse{}, ErrForbidden
	}

	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApplicationResponse{}, ErrDriveNotFound
		}
		return dto.ApplicationResponse{}, err
	}

	if !drive.IsActive {
		return dto.ApplicationResponse{}, ErrDriveInactive
	}

	deadline, ok := drive.ResolvedDeadline()
	if !ok {
		return dto.ApplicationResponse{}, ErrDeadlineUnresolvable
	}
	now := s.now()
	if now.After(deadline) {
		return dto.ApplicationResponse{}, ErrDeadlinePassed
	}

	application := models.Application{
		JobDriveID:  drive.ID,
		ApplicantID: actor.ID,
		AppliedAt:   now,
		Status:      models.ApplicationStatusApplied,
	}
	if err := s.applications.Create(ctx, &application); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ApplicationResponse{}, ErrAlreadyApplied
		}
		return dto.ApplicationResponse{}, err
	}

	observability.ApplicationsSubmitted().Inc()
	s.bus.Publish(ctx, events.Event{
		Name: events.ApplicationSubmitted,
		Room: events.RoomBroadcast,
		Payload: map[string]interface{}{
			"job_drive_id": drive.ID,
			"company_name": drive.CompanyName,
			"applicant_id": actor.ID,
		},
	})
	s.logger.Info().Uint("job_drive_id", drive.ID).Uint("applicant_id", actor.ID).Msg("application submitted")

	return dto.NewApplicationResponse(application), nil
}

func (s *driveService) Update(ctx context.Context, driveID uint, patch dto.DriveUpdateRequest, actor Actor) (dto.DriveResponse, error) {
	if err := s.validator.Struct(patch); err != nil {
		return dto.DriveResponse{}, err
	}

	if err := s.authorizeManage(ctx, driveID, actor); err != nil {
		return dto.DriveResponse{}, err
	}

	// Re-fetch immediately before merging: the round-preservation merge must
	// run against the current stored rounds, not a snapshot held since the
	// start of the request.
	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DriveResponse{}, ErrDriveNotFound
		}
		return dto.DriveResponse{}, err
	}

	if patch.CompanyName != nil {
		drive.CompanyName = *patch.CompanyName
	}
	if patch.Role != nil {
		drive.Role = *patch.Role
	}
	if patch.Description != nil {
		drive.Description = s.sanitizer.Sanitize(*patch.Description)
	}
	if patch.CTC != nil {
		drive.CTC = *patch.CTC
	}
	if patch.MinCGPA != nil {
		drive.MinCGPA = patch.MinCGPA
	}
	if patch.MaxBacklogs != nil {
		drive.MaxBacklogs = patch.MaxBacklogs
	}
	if patch.AllowedDepartments != nil {
		drive.SetDepartments(patch.AllowedDepartments)
	}
	if patch.AllowedBatches != nil {
		drive.SetBatches(patch.AllowedBatches)
	}
	if patch.NoCurrentBacklogs != nil {
		drive.NoCurrentBacklogs = *patch.NoCurrentBacklogs
	}
	if patch.UnplacedOnly != nil {
		drive.UnplacedOnly = *patch.UnplacedOnly
	}
	if patch.DriveDate != nil {
		driveDate, err := time.Parse(driveDateLayout, *patch.DriveDate)
		if err != nil {
			return dto.DriveResponse{}, fmt.Errorf("invalid drive date: %w", err)
		}
		drive.DriveDate = driveDate
	}
	if patch.Deadline != nil {
		deadline, err := time.Parse(driveDateLayout, *patch.Deadline)
		if err != nil {
			return dto.DriveResponse{}, fmt.Errorf("invalid deadline: %w", err)
		}
		drive.Deadline = &deadline
	}
	if patch.DriveTime != nil {
		drive.DriveTime = *patch.DriveTime
	}
	if patch.IsActive != nil {
		drive.IsActive = *patch.IsActive
	}
	if patch.SelectionRounds != nil {
		drive.SetRounds(roundsFromPayload(patch.SelectionRounds, drive.Rounds()))
	}

	if err := s.drives.Update(ctx, &drive); err != nil {
		return dto.DriveResponse{}, err
	}

	s.bus.Publish(ctx, events.Event{
		Name: events.DriveUpdated,
		Room: events.RoomBroadcast,
		Payload: map[string]interface{}{
			"job_drive_id": drive.ID,
			"company_name": drive.CompanyName,
		},
	})
	s.logger.Info().Uint("job_drive_id", drive.ID).Msg("drive updated")

	return dto.NewDriveResponse(drive), nil
}

func (s *driveService) ListApplications(ctx context.Context, driveID uint, actor Actor) ([]dto.ApplicationResponse, error) {
	if err := s.authorizeManage(ctx, driveID, actor); err != nil {
		return nil, err
	}

	applications, err := s.applications.ListByDrive(ctx, driveID)
	if err != nil {
		return nil, err
	}
	return dto.NewApplicationResponseSlice(applications), nil
}

func (s *driveService) ListMyApplications(ctx context.Context, actor Actor) ([]dto.MyApplicationResponse, error) {
	applications, err := s.applications.ListByApplicant(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewMyApplicationResponseSlice(applications), nil
}

func (s *driveService) UpdateApplicationStatus(ctx context.Context, driveID, applicationID uint, status string, actor Actor) (dto.ApplicationResponse, error) {
	if !models.ValidApplicationStatus(status) {
		return dto.ApplicationResponse{}, ErrInvalidStatus
	}

	if err := s.authorizeManage(ctx, driveID, actor); err != nil {
		return dto.ApplicationResponse{}, err
	}

	application, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApplicationResponse{}, ErrApplicationNotFound
		}
		return dto.ApplicationResponse{}, err
	}
	if application.JobDriveID != driveID {
		return dto.ApplicationResponse{}, ErrApplicationNotFound
	}

	updated, err := s.applications.UpdateStatus(ctx, applicationID, status)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	updated.Applicant = application.Applicant

	s.bus.Publish(ctx, events.Event{
		Name: events.DriveUpdated,
		Room: events.UserRoom(application.ApplicantID),
		Payload: map[string]interface{}{
			"job_drive_id":   driveID,
			"application_id": applicationID,
			"status":         status,
		},
	})

	return dto.NewApplicationResponse(updated), nil
}

// authorizeManage applies the shared drive-management rule for the actor.
func (s *driveService) authorizeManage(ctx context.Context, driveID uint, actor Actor) error {
	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDriveNotFound
		}
		return err
	}

	department := ""
	if actor.IsRepresentative() {
		if user, err := s.users.GetByID(ctx, actor.ID); err == nil {
			department = user.Department
		}
	}

	if !canManageDrive(actor, department, drive) {
		return ErrForbidden
	}
	return nil
}

// roundsFromPayload converts incoming round payloads, preserving previously
// recorded selections by index when the payload omits them.
func roundsFromPayload(payloads []dto.RoundPayload, existing []models.SelectionRound) []models.SelectionRound {
	rounds := make([]models.SelectionRound, 0, len(payloads))
	for i, payload := range payloads {
		status := payload.Status
		if status == "" {
			status = models.RoundStatusPending
		}
		round := models.SelectionRound{
			Name:        payload.Name,
			Details:     payload.Details,
			ScheduledAt: payload.ScheduledAt,
			Status:      status,
		}
		if payload.SelectedStudents != nil {
			round.SelectedStudents = payload.SelectedStudents
		} else if i < len(existing) {
			round.SelectedStudents = existing[i].SelectedStudents
		}
		rounds = append(rounds, round)
	}
	return rounds
}
