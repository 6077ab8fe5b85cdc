package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

func TestSeedGuards(t *testing.T) {
	db := setupTestDB(t)
	roles := repository.NewRoleRepository(db)
	permissions := repository.NewPermissionRepository(db)

	disabled := NewSeedService(roles, permissions, false, "secret", testLogger())
	_, err := disabled.Seed(context.Background(), "secret")
	require.ErrorIs(t, err, ErrSeedDisabled)

	enabled := NewSeedService(roles, permissions, true, "secret", testLogger())
	_, err = enabled.Seed(context.Background(), "wrong")
	require.ErrorIs(t, err, ErrSeedTokenMismatch)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	roles := repository.NewRoleRepository(db)
	svc := NewSeedService(roles, repository.NewPermissionRepository(db), true, "secret", testLogger())
	ctx := context.Background()

	first, err := svc.Seed(ctx, "secret")
	require.NoError(t, err)
	require.Equal(t, 3, first.RolesCreated)
	require.Greater(t, first.PermissionsCreated, 0)
	require.Greater(t, first.GrantsCreated, 0)

	second, err := svc.Seed(ctx, "secret")
	require.NoError(t, err)
	require.Equal(t, 0, second.RolesCreated)
	require.Equal(t, 0, second.PermissionsCreated)
	require.Equal(t, 0, second.GrantsCreated)

	var systemCount int64
	require.NoError(t, db.Model(&models.Role{}).Where("is_system = ?", true).Count(&systemCount).Error)
	require.Equal(t, int64(3), systemCount)
}

func TestSeedGrantsDefaultRolePermissions(t *testing.T) {
	db := setupTestDB(t)
	roles := repository.NewRoleRepository(db)
	svc := NewSeedService(roles, repository.NewPermissionRepository(db), true, "secret", testLogger())
	ctx := context.Background()

	_, err := svc.Seed(ctx, "secret")
	require.NoError(t, err)

	student, err := roles.GetByCode(ctx, models.RoleStudent)
	require.NoError(t, err)
	studentCodes, err := roles.PermissionCodes(ctx, student.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"view_courses", "download_files"}, studentCodes)

	instructor, err := roles.GetByCode(ctx, models.RoleInstructor)
	require.NoError(t, err)
	instructorCodes, err := roles.PermissionCodes(ctx, instructor.ID)
	require.NoError(t, err)
	require.Contains(t, instructorCodes, "upload_files")
	require.Contains(t, instructorCodes, "manage_files")
	require.NotContains(t, instructorCodes, "manage_courses")
}
