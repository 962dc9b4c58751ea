package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campushire/placement-api/internal/events"
	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/repository"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) named(name string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []events.Event
	for _, event := range p.events {
		if event.Name == name {
			matched = append(matched, event)
		}
	}
	return matched
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.JobDrive{},
		&models.Application{},
		&models.PlacedStudent{},
		&models.DeletionRequest{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, user models.User) models.User {
	t.Helper()
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	if user.PlacementStatus == "" {
		user.PlacementStatus = models.PlacementStatusUnplaced
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedDrive(t *testing.T, db *gorm.DB, drive models.JobDrive) models.JobDrive {
	t.Helper()
	if drive.CompanyName == "" {
		drive.CompanyName = "Acme Corp"
	}
	if drive.Role == "" {
		drive.Role = "Software Engineer"
	}
	if drive.Description == "" {
		drive.Description = "Campus drive for the graduating batch"
	}
	if drive.DriveDate.IsZero() {
		drive.DriveDate = time.Now().AddDate(0, 1, 0)
	}
	require.NoError(t, db.Create(&drive).Error)
	return drive
}

type testEnv struct {
	db        *gorm.DB
	bus       *capturePublisher
	drives    repository.DriveRepository
	apps      repository.ApplicationRepository
	users     repository.UserRepository
	placed    repository.PlacedStudentRepository
	deletions repository.DeletionRequestRepository
	validate  *validator.Validate
	logger    zerolog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	return &testEnv{
		db:        db,
		bus:       &capturePublisher{},
		drives:    repository.NewDriveRepository(db),
		apps:      repository.NewApplicationRepository(db),
		users:     repository.NewUserRepository(db),
		placed:    repository.NewPlacedStudentRepository(db),
		deletions: repository.NewDeletionRequestRepository(db),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    zerolog.Nop(),
	}
}

func (e *testEnv) driveService() *driveService {
	svc := NewDriveService(e.drives, e.apps, e.users, nil, 0, 0, e.validate, e.bus, e.logger)
	return svc.(*driveService)
}

func (e *testEnv) roundService() *roundService {
	svc := NewRoundService(e.drives, e.users, e.bus, e.logger)
	return svc.(*roundService)
}

func (e *testEnv) placementService() *placementService {
	svc := NewPlacementService(e.drives, e.apps, e.placed, e.users, e.bus, e.logger)
	return svc.(*placementService)
}

func (e *testEnv) deletionService() *deletionService {
	svc := NewDeletionService(e.deletions, e.drives, e.validate, e.bus, e.logger)
	return svc.(*deletionService)
}
