package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushire/placement-api/internal/models"
)

// ApplicationRepository defines persistence operations for drive applications.
type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id uint) (models.Application, error)
	ListByDrive(ctx context.Context, driveID uint) ([]models.Application, error)
	ListByApplicant(ctx context.Context, applicantID uint) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id uint, status string) (models.Application, error)
	CountByDrive(ctx context.Context, driveID uint) (int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository instantiates a GORM-backed repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create inserts the application. The unique (job_drive_id, applicant_id)
// index makes a duplicate insert fail with gorm.ErrDuplicatedKey; the service
// layer translates that into its Conflict sentinel.
func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).Preload("Applicant").First(&application, id).Error; err != nil {
		return models.Application{}, err
	}
	return application, nil
}

func (r *applicationRepository) ListByDrive(ctx context.Context, driveID uint) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Where("job_drive_id = ?", driveID).
		Preload("Applicant").
		Order("applied_at ASC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID uint) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Preload("JobDrive").
		Order("applied_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, status string) (models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).First(&application, id).Error; err != nil {
		return models.Application{}, err
	}

	application.Status = status
	if err := r.db.WithContext(ctx).Save(&application).Error; err != nil {
		return models.Application{}, err
	}
	return application, nil
}

func (r *applicationRepository) CountByDrive(ctx context.Context, driveID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_drive_id = ?", driveID).
		Count(&total).Error
	return total, err
}
