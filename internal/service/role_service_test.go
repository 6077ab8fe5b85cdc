package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

func newRoleFixture(t *testing.T) (RoleService, repository.RoleRepository, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	seedRoles(t, db)

	roleRepo := repository.NewRoleRepository(db)
	svc := NewRoleService(
		roleRepo,
		repository.NewPermissionRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		&auditRecorderStub{},
		testLogger(),
	)
	return svc, roleRepo, db
}

func seedPermissions(t *testing.T, db *gorm.DB, codes ...string) map[string]models.Permission {
	t.Helper()
	result := map[string]models.Permission{}
	for _, code := range codes {
		permission := models.Permission{Code: code, DisplayName: code, Category: models.PermissionCategorySystem, IsActive: true}
		require.NoError(t, db.Create(&permission).Error)
		result[code] = permission
	}
	return result
}

func TestReplacePermissionsIsTotal(t *testing.T) {
	svc, roleRepo, db := newRoleFixture(t)
	ctx := context.Background()

	permissions := seedPermissions(t, db, "alpha", "beta", "gamma")

	role, err := svc.Create(ctx, dto.RoleCreateRequest{Code: "auditor", DisplayName: "Auditor"}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	_, err = svc.ReplacePermissions(ctx, role.ID, dto.RolePermissionsRequest{
		PermissionIDs: []uint{permissions["alpha"].ID, permissions["beta"].ID},
	}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	codes, err := roleRepo.PermissionCodes(ctx, role.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alpha", "beta"}, codes)

	// Ids absent from the next request are revoked, not merged.
	_, err = svc.ReplacePermissions(ctx, role.ID, dto.RolePermissionsRequest{
		PermissionIDs: []uint{permissions["beta"].ID, permissions["gamma"].ID},
	}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	codes, err = roleRepo.PermissionCodes(ctx, role.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"beta", "gamma"}, codes)
}

func TestReplacePermissionsEmptyClearsRole(t *testing.T) {
	svc, roleRepo, db := newRoleFixture(t)
	ctx := context.Background()

	permissions := seedPermissions(t, db, "alpha")

	role, err := svc.Create(ctx, dto.RoleCreateRequest{Code: "limited", DisplayName: "Limited"}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	_, err = svc.ReplacePermissions(ctx, role.ID, dto.RolePermissionsRequest{PermissionIDs: []uint{permissions["alpha"].ID}}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	_, err = svc.ReplacePermissions(ctx, role.ID, dto.RolePermissionsRequest{}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	codes, err := roleRepo.PermissionCodes(ctx, role.ID)
	require.NoError(t, err)
	require.Empty(t, codes)
}

func TestReplacePermissionsRejectsUnknownIDs(t *testing.T) {
	svc, roleRepo, _ := newRoleFixture(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, dto.RoleCreateRequest{Code: "tester", DisplayName: "Tester"}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	_, err = svc.ReplacePermissions(ctx, role.ID, dto.RolePermissionsRequest{PermissionIDs: []uint{4242}}, AuditActor{ID: 1}, RequestMeta{})
	require.ErrorIs(t, err, ErrUnknownPermissions)

	codes, err := roleRepo.PermissionCodes(ctx, role.ID)
	require.NoError(t, err)
	require.Empty(t, codes)
}

func TestDeleteSystemRoleIsForbidden(t *testing.T) {
	svc, _, db := newRoleFixture(t)
	ctx := context.Background()

	var admin models.Role
	require.NoError(t, db.Where("code = ?", models.RoleAdmin).First(&admin).Error)

	err := svc.Delete(ctx, admin.ID, AuditActor{ID: 1}, RequestMeta{})
	require.ErrorIs(t, err, ErrSystemRoleImmutable)

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Where("id = ?", admin.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestDeleteCustomRoleRemovesPermissionLinks(t *testing.T) {
	svc, _, db := newRoleFixture(t)
	ctx := context.Background()

	permissions := seedPermissions(t, db, "alpha")
	role, err := svc.Create(ctx, dto.RoleCreateRequest{Code: "shortlived", DisplayName: "Short Lived"}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	_, err = svc.ReplacePermissions(ctx, role.ID, dto.RolePermissionsRequest{PermissionIDs: []uint{permissions["alpha"].ID}}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, role.ID, AuditActor{ID: 1}, RequestMeta{}))

	var links int64
	require.NoError(t, db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&links).Error)
	require.Equal(t, int64(0), links)
}

func TestPermissionsGroupsByCategory(t *testing.T) {
	svc, _, db := newRoleFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Permission{Code: "view_users", DisplayName: "View Users", Category: models.PermissionCategoryUsers, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Permission{Code: "view_reports", DisplayName: "View Reports", Category: models.PermissionCategoryReports, IsActive: true}).Error)

	role, err := svc.Create(ctx, dto.RoleCreateRequest{Code: "viewer", DisplayName: "Viewer"}, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	response, err := svc.Permissions(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, response.Groups, 2)
	require.Equal(t, models.PermissionCategoryReports, response.Groups[0].Category)
	require.Equal(t, models.PermissionCategoryUsers, response.Groups[1].Category)
	for _, group := range response.Groups {
		for _, permission := range group.Permissions {
			require.False(t, permission.IsAssigned)
		}
	}
}
