package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// RoleWithUsers pairs a role with the number of users assigned to it.
type RoleWithUsers struct {
	models.Role
	UsersCount int64 `json:"users_count"`
}

// RoleRepository exposes persistence helpers for roles and their permission sets.
type RoleRepository interface {
	List(ctx context.Context) ([]RoleWithUsers, error)
	GetByID(ctx context.Context, id uint) (models.Role, error)
	GetByCode(ctx context.Context, code string) (models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Role, error)
	Delete(ctx context.Context, id uint) error
	ReplacePermissions(ctx context.Context, roleID uint, permissionIDs []uint) error
	GrantPermission(ctx context.Context, roleID, permissionID uint) (bool, error)
	PermissionCodes(ctx context.Context, roleID uint) ([]string, error)
	PermissionIDs(ctx context.Context, roleID uint) ([]uint, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository constructs the role repository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) List(ctx context.Context) ([]RoleWithUsers, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).
		Order("is_system DESC").
		Order("display_name").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}

	result := make([]RoleWithUsers, 0, len(roles))
	for _, role := range roles {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.User{}).Where("role_id = ?", role.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		result = append(result, RoleWithUsers{Role: role, UsersCount: count})
	}

	return result, nil
}

func (r *roleRepository) GetByID(ctx context.Context, id uint) (models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		return models.Role{}, err
	}
	return role, nil
}

func (r *roleRepository) GetByCode(ctx context.Context, code string) (models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&role).Error; err != nil {
		return models.Role{}, err
	}
	return role, nil
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *roleRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Role, error) {
	result := r.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Role{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Role{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *roleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Role{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ReplacePermissions swaps the role's permission set for the submitted one.
// The old rows are deleted and the new set inserted within one transaction;
// an empty set leaves the role with zero permissions.
func (r *roleRepository) ReplacePermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		if len(permissionIDs) == 0 {
			return nil
		}

		rows := make([]models.RolePermission, 0, len(permissionIDs))
		for _, permissionID := range permissionIDs {
			rows = append(rows, models.RolePermission{RoleID: roleID, PermissionID: permissionID})
		}

		return tx.Create(&rows).Error
	})
}

// GrantPermission links a permission to a role if the link does not exist
// yet. It reports whether a new link was created.
func (r *roleRepository) GrantPermission(ctx context.Context, roleID, permissionID uint) (bool, error) {
	var existing models.RolePermission
	err := r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	link := models.RolePermission{RoleID: roleID, PermissionID: permissionID}
	if err := r.db.WithContext(ctx).Create(&link).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *roleRepository) PermissionCodes(ctx context.Context, roleID uint) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&models.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ?", roleID).
		Where("permissions.is_active = ?", true).
		Pluck("permissions.code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *roleRepository) PermissionIDs(ctx context.Context, roleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.RolePermission{}).
		Where("role_id = ?", roleID).
		Pluck("permission_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
