package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushire/placement-api/internal/models"
)

// UserRepository defines the user-profile operations the placement core needs.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	MarkPlacedByIDs(ctx context.Context, ids []uint) (int64, error)
	MarkPlacedByEmailsOrRolls(ctx context.Context, emails, rollNumbers []string) (int64, error)
	ResetPlacementByEmail(ctx context.Context, email string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) MarkPlacedByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"is_placed":        true,
			"placement_status": models.PlacementStatusPlaced,
		})
	return result.RowsAffected, result.Error
}

// MarkPlacedByEmailsOrRolls is the defensive second pass of placement
// propagation: it re-matches by the email/roll-number union so profiles that
// drifted since application time still get flagged.
func (r *userRepository) MarkPlacedByEmailsOrRolls(ctx context.Context, emails, rollNumbers []string) (int64, error) {
	if len(emails) == 0 && len(rollNumbers) == 0 {
		return 0, nil
	}

	query := r.db.WithContext(ctx).Model(&models.User{})
	switch {
	case len(emails) > 0 && len(rollNumbers) > 0:
		query = query.Where("email IN ? OR roll_number IN ?", emails, rollNumbers)
	case len(emails) > 0:
		query = query.Where("email IN ?", emails)
	default:
		query = query.Where("roll_number IN ?", rollNumbers)
	}

	result := query.Updates(map[string]interface{}{
		"is_placed":        true,
		"placement_status": models.PlacementStatusPlaced,
	})
	return result.RowsAffected, result.Error
}

func (r *userRepository) ResetPlacementByEmail(ctx context.Context, email string) error {
	if email == "" {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"is_placed":        false,
			"placement_status": models.PlacementStatusUnplaced,
		}).Error
}
