package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// PermissionRepository exposes persistence helpers for the permission catalog.
type PermissionRepository interface {
	List(ctx context.Context) ([]models.Permission, error)
	ListActive(ctx context.Context) ([]models.Permission, error)
	CountActive(ctx context.Context) (int64, error)
	GetOrCreate(ctx context.Context, permission models.Permission) (models.Permission, bool, error)
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository constructs the permission repository.
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) List(ctx context.Context) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.db.WithContext(ctx).
		Order("category").
		Order("display_name").
		Find(&permissions).Error
	return permissions, err
}

func (r *permissionRepository) ListActive(ctx context.Context) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("category").
		Order("display_name").
		Find(&permissions).Error
	return permissions, err
}

func (r *permissionRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Permission{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// GetOrCreate returns the permission with the given code, creating it when
// missing. The second return value reports whether a row was created.
func (r *permissionRepository) GetOrCreate(ctx context.Context, permission models.Permission) (models.Permission, bool, error) {
	var existing models.Permission
	err := r.db.WithContext(ctx).Where("code = ?", permission.Code).First(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Permission{}, false, err
	}

	if err := r.db.WithContext(ctx).Create(&permission).Error; err != nil {
		return models.Permission{}, false, err
	}
	return permission, true, nil
}
