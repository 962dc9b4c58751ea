package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/campushire/placement-api/internal/models"
)

// DriveFilter describes pagination & search options for drive listings.
type DriveFilter struct {
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// DriveRepository defines persistence operations for job drives.
type DriveRepository interface {
	ListWithFilter(ctx context.Context, filter DriveFilter) ([]models.JobDrive, int64, error)
	ListActive(ctx context.Context) ([]models.JobDrive, error)
	ListActiveBefore(ctx context.Context, cutoff time.Time) ([]models.JobDrive, error)
	GetByID(ctx context.Context, id uint) (models.JobDrive, error)
	Create(ctx context.Context, drive *models.JobDrive) error
	Update(ctx context.Context, drive *models.JobDrive) error
	Delete(ctx context.Context, id uint) error
}

type driveRepository struct {
	db *gorm.DB
}

// NewDriveRepository instantiates a GORM-backed repository.
func NewDriveRepository(db *gorm.DB) DriveRepository {
	return &driveRepository{db: db}
}

func (r *driveRepository) ListWithFilter(ctx context.Context, filter DriveFilter) ([]models.JobDrive, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.JobDrive{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(company_name) LIKE ? OR LOWER(role) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(normalizeDriveSort(filter.Sort))

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var drives []models.JobDrive
	if err := query.Preload("CreatedBy").Find(&drives).Error; err != nil {
		return nil, 0, err
	}

	return drives, total, nil
}

func (r *driveRepository) ListActive(ctx context.Context) ([]models.JobDrive, error) {
	var drives []models.JobDrive
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("drive_date ASC").
		Find(&drives).Error
	if err != nil {
		return nil, err
	}
	return drives, nil
}

func (r *driveRepository) ListActiveBefore(ctx context.Context, cutoff time.Time) ([]models.JobDrive, error) {
	var drives []models.JobDrive
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (deadline < ? OR (deadline IS NULL AND drive_date < ?))", true, cutoff, cutoff).
		Find(&drives).Error
	if err != nil {
		return nil, err
	}
	return drives, nil
}

func (r *driveRepository) GetByID(ctx context.Context, id uint) (models.JobDrive, error) {
	var drive models.JobDrive
	if err := r.db.WithContext(ctx).Preload("CreatedBy").First(&drive, id).Error; err != nil {
		return models.JobDrive{}, err
	}
	return drive, nil
}

func (r *driveRepository) Create(ctx context.Context, drive *models.JobDrive) error {
	return r.db.WithContext(ctx).Create(drive).Error
}

func (r *driveRepository) Update(ctx context.Context, drive *models.JobDrive) error {
	return r.db.WithContext(ctx).Save(drive).Error
}

func (r *driveRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.JobDrive{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizeDriveSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "drive_date", "drive_date:asc":
		return "drive_date ASC"
	case "-drive_date", "drive_date:desc":
		return "drive_date DESC"
	case "company", "company:asc":
		return "company_name ASC"
	case "-company", "company:desc":
		return "company_name DESC"
	case "ctc", "ctc:asc":
		return "ctc ASC"
	case "-ctc", "ctc:desc":
		return "ctc DESC"
	default:
		return "drive_date ASC"
	}
}
