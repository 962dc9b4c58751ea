package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campushire/placement-api/internal/models"
)

// PlacedStudentRepository maintains the normalized placed-student table.
type PlacedStudentRepository interface {
	Upsert(ctx context.Context, record *models.PlacedStudent) error
	ListByDrive(ctx context.Context, driveID uint) ([]models.PlacedStudent, error)
	DeleteByDriveAndRoll(ctx context.Context, driveID uint, rollNumber string) error
	DeleteByDriveAndEmail(ctx context.Context, driveID uint, email string) error
	DeleteByDrive(ctx context.Context, driveID uint) error
	CountOtherPlacements(ctx context.Context, excludeDriveID uint, rollNumber, email string) (int64, error)
}

type placedStudentRepository struct {
	db *gorm.DB
}

// NewPlacedStudentRepository instantiates a GORM-backed repository.
func NewPlacedStudentRepository(db *gorm.DB) PlacedStudentRepository {
	return &placedStudentRepository{db: db}
}

// Upsert inserts or refreshes the row keyed by (job_drive_id, roll_number).
func (r *placedStudentRepository) Upsert(ctx context.Context, record *models.PlacedStudent) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_drive_id"}, {Name: "roll_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "department", "email", "mobile_number", "company_name", "added_by_id", "updated_at",
		}),
	}).Create(record).Error
}

func (r *placedStudentRepository) ListByDrive(ctx context.Context, driveID uint) ([]models.PlacedStudent, error) {
	var records []models.PlacedStudent
	err := r.db.WithContext(ctx).
		Where("job_drive_id = ?", driveID).
		Order("roll_number ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *placedStudentRepository) DeleteByDriveAndRoll(ctx context.Context, driveID uint, rollNumber string) error {
	return r.db.WithContext(ctx).
		Where("job_drive_id = ? AND roll_number = ?", driveID, rollNumber).
		Delete(&models.PlacedStudent{}).Error
}

func (r *placedStudentRepository) DeleteByDriveAndEmail(ctx context.Context, driveID uint, email string) error {
	return r.db.WithContext(ctx).
		Where("job_drive_id = ? AND email = ?", driveID, email).
		Delete(&models.PlacedStudent{}).Error
}

func (r *placedStudentRepository) DeleteByDrive(ctx context.Context, driveID uint) error {
	return r.db.WithContext(ctx).
		Where("job_drive_id = ?", driveID).
		Delete(&models.PlacedStudent{}).Error
}

// CountOtherPlacements reports how many placements a student holds on drives
// other than the excluded one, matched by roll number or email.
func (r *placedStudentRepository) CountOtherPlacements(ctx context.Context, excludeDriveID uint, rollNumber, email string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PlacedStudent{}).
		Where("job_drive_id <> ?", excludeDriveID)

	switch {
	case rollNumber != "" && email != "":
		query = query.Where("roll_number = ? OR email = ?", rollNumber, email)
	case rollNumber != "":
		query = query.Where("roll_number = ?", rollNumber)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		return 0, nil
	}

	var total int64
	err := query.Count(&total).Error
	return total, err
}
