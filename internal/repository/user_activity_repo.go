package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// UserActivityRepository persists and queries per-user activity events.
type UserActivityRepository interface {
	Create(ctx context.Context, activity *models.UserActivity) error
	ListRecent(ctx context.Context, limit int) ([]models.UserActivity, error)
	ListForUser(ctx context.Context, userID uint, limit int) ([]models.UserActivity, error)
	CountForUser(ctx context.Context, userID uint, activityType string) (int64, error)
}

type userActivityRepository struct {
	db *gorm.DB
}

// NewUserActivityRepository constructs the user activity repository.
func NewUserActivityRepository(db *gorm.DB) UserActivityRepository {
	return &userActivityRepository{db: db}
}

func (r *userActivityRepository) Create(ctx context.Context, activity *models.UserActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *userActivityRepository) ListRecent(ctx context.Context, limit int) ([]models.UserActivity, error) {
	if limit <= 0 {
		limit = 20
	}

	var activities []models.UserActivity
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

func (r *userActivityRepository) ListForUser(ctx context.Context, userID uint, limit int) ([]models.UserActivity, error) {
	if limit <= 0 {
		limit = 20
	}

	var activities []models.UserActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

func (r *userActivityRepository) CountForUser(ctx context.Context, userID uint, activityType string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UserActivity{}).Where("user_id = ?", userID)
	if activityType != "" {
		query = query.Where("activity_type = ?", activityType)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
