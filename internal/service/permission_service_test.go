package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

func TestResolveAdminIsUnrestricted(t *testing.T) {
	db := setupTestDB(t)
	roles := seedRoles(t, db)

	admin := models.User{AcademicID: "A-1", IDCardNumber: "C-1", RoleID: roles[models.RoleAdmin].ID, AccountStatus: models.AccountStatusActive}
	require.NoError(t, db.Create(&admin).Error)

	svc := NewPermissionService(repository.NewUserRepository(db), repository.NewRoleRepository(db), testLogger())

	set, err := svc.Resolve(context.Background(), admin.ID)
	require.NoError(t, err)
	require.True(t, set.IsUnrestricted())
	require.True(t, set.Allows("anything_at_all"))
}

func TestResolveRestrictedRoleCarriesOnlyAssignedCodes(t *testing.T) {
	db := setupTestDB(t)
	roles := seedRoles(t, db)

	permission := models.Permission{Code: "view_courses", DisplayName: "View Courses", Category: models.PermissionCategoryCourses, IsActive: true}
	require.NoError(t, db.Create(&permission).Error)
	require.NoError(t, db.Create(&models.RolePermission{RoleID: roles[models.RoleStudent].ID, PermissionID: permission.ID}).Error)

	student := models.User{AcademicID: "A-2", IDCardNumber: "C-2", RoleID: roles[models.RoleStudent].ID, AccountStatus: models.AccountStatusActive}
	require.NoError(t, db.Create(&student).Error)

	svc := NewPermissionService(repository.NewUserRepository(db), repository.NewRoleRepository(db), testLogger())

	set, err := svc.Resolve(context.Background(), student.ID)
	require.NoError(t, err)
	require.False(t, set.IsUnrestricted())
	require.True(t, set.Allows("view_courses"))
	require.False(t, set.Allows("manage_roles"))
}

func TestResolveInactivePermissionIsExcluded(t *testing.T) {
	db := setupTestDB(t)
	roles := seedRoles(t, db)

	disabled := models.Permission{Code: "retired_feature", DisplayName: "Retired", Category: models.PermissionCategorySystem, IsActive: false}
	require.NoError(t, db.Create(&disabled).Error)
	require.NoError(t, db.Create(&models.RolePermission{RoleID: roles[models.RoleStudent].ID, PermissionID: disabled.ID}).Error)

	student := models.User{AcademicID: "A-3", IDCardNumber: "C-3", RoleID: roles[models.RoleStudent].ID, AccountStatus: models.AccountStatusActive}
	require.NoError(t, db.Create(&student).Error)

	svc := NewPermissionService(repository.NewUserRepository(db), repository.NewRoleRepository(db), testLogger())

	set, err := svc.Resolve(context.Background(), student.ID)
	require.NoError(t, err)
	require.False(t, set.Allows("retired_feature"))
}

func TestResolveUnknownUserIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	seedRoles(t, db)

	svc := NewPermissionService(repository.NewUserRepository(db), repository.NewRoleRepository(db), testLogger())

	set, err := svc.Resolve(context.Background(), 9999)
	require.NoError(t, err)
	require.False(t, set.IsUnrestricted())
	require.False(t, set.Allows("view_courses"))

	set, err = svc.Resolve(context.Background(), 0)
	require.NoError(t, err)
	require.False(t, set.Allows("view_courses"))
}
