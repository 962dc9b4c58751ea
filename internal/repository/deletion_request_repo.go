package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/campushire/placement-api/internal/models"
)

// DeletionRequestRepository persists drive-deletion approval records.
type DeletionRequestRepository interface {
	Create(ctx context.Context, request *models.DeletionRequest) error
	GetByID(ctx context.Context, id uint) (models.DeletionRequest, error)
	HasPendingForDrive(ctx context.Context, driveID uint) (bool, error)
	ListByStatus(ctx context.Context, status string) ([]models.DeletionRequest, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]models.DeletionRequest, error)
	Update(ctx context.Context, request *models.DeletionRequest) error
	// SaveAndDeleteDrive persists the request and removes the drive in one
	// transaction, so an approved record never exists without the drive being
	// gone (and vice versa). A drive already deleted is tolerated.
	SaveAndDeleteDrive(ctx context.Context, request *models.DeletionRequest, driveID uint) error
}

type deletionRequestRepository struct {
	db *gorm.DB
}

// NewDeletionRequestRepository instantiates a GORM-backed repository.
func NewDeletionRequestRepository(db *gorm.DB) DeletionRequestRepository {
	return &deletionRequestRepository{db: db}
}

func (r *deletionRequestRepository) Create(ctx context.Context, request *models.DeletionRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *deletionRequestRepository) GetByID(ctx context.Context, id uint) (models.DeletionRequest, error) {
	var request models.DeletionRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return models.DeletionRequest{}, err
	}
	return request, nil
}

func (r *deletionRequestRepository) HasPendingForDrive(ctx context.Context, driveID uint) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.DeletionRequest{}).
		Where("job_drive_id = ? AND status = ?", driveID, models.DeletionStatusPending).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *deletionRequestRepository) ListByStatus(ctx context.Context, status string) ([]models.DeletionRequest, error) {
	var requests []models.DeletionRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *deletionRequestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]models.DeletionRequest, error) {
	var requests []models.DeletionRequest
	err := r.db.WithContext(ctx).
		Where("requested_by_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *deletionRequestRepository) Update(ctx context.Context, request *models.DeletionRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *deletionRequestRepository) SaveAndDeleteDrive(ctx context.Context, request *models.DeletionRequest, driveID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.JobDrive{}, driveID)
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		return nil
	})
}
