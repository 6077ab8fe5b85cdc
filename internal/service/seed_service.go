package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates seeding is switched off in configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedTokenMismatch indicates the submitted seed token is wrong.
	ErrSeedTokenMismatch = errors.New("invalid seed token")
)

// SeedReport summarizes what a seed run created.
type SeedReport struct {
	RolesCreated       int `json:"roles_created"`
	PermissionsCreated int `json:"permissions_created"`
	GrantsCreated      int `json:"grants_created"`
}

// SeedService provisions the system roles and the permission catalog. Runs
// are idempotent: existing rows are left untouched.
type SeedService interface {
	Seed(ctx context.Context, token string) (SeedReport, error)
}

type seedService struct {
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	enabled     bool
	token       string
	logger      zerolog.Logger
}

// NewSeedService constructs the seed service.
func NewSeedService(roles repository.RoleRepository, permissions repository.PermissionRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		roles:       roles,
		permissions: permissions,
		enabled:     enabled,
		token:       token,
		logger:      logger.With().Str("component", "seed_service").Logger(),
	}
}

func systemRoles() []models.Role {
	return []models.Role{
		{Code: models.RoleAdmin, DisplayName: "Administrator", Description: "Full access to every feature", IsSystem: true, IsActive: true},
		{Code: models.RoleInstructor, DisplayName: "Instructor", Description: "Manages courses and lecture content", IsSystem: true, IsActive: true},
		{Code: models.RoleStudent, DisplayName: "Student", Description: "Browses courses and downloads content", IsSystem: true, IsActive: true},
	}
}

func permissionCatalog() []models.Permission {
	return []models.Permission{
		{Code: "view_users", DisplayName: "View Users", Category: models.PermissionCategoryUsers, IsActive: true},
		{Code: "manage_users", DisplayName: "Manage Users", Category: models.PermissionCategoryUsers, IsActive: true},
		{Code: "import_users", DisplayName: "Import Users", Category: models.PermissionCategoryUsers, IsActive: true},
		{Code: "promote_students", DisplayName: "Promote Students", Category: models.PermissionCategoryUsers, IsActive: true},
		{Code: "manage_roles", DisplayName: "Manage Roles", Category: models.PermissionCategorySystem, IsActive: true},
		{Code: "system_settings", DisplayName: "System Settings", Category: models.PermissionCategorySystem, IsActive: true},
		{Code: "view_audit_logs", DisplayName: "View Audit Logs", Category: models.PermissionCategorySystem, IsActive: true},
		{Code: "view_courses", DisplayName: "View Courses", Category: models.PermissionCategoryCourses, IsActive: true},
		{Code: "manage_courses", DisplayName: "Manage Courses", Category: models.PermissionCategoryCourses, IsActive: true},
		{Code: "upload_files", DisplayName: "Upload Files", Category: models.PermissionCategoryFiles, IsActive: true},
		{Code: "manage_files", DisplayName: "Manage Files", Category: models.PermissionCategoryFiles, IsActive: true},
		{Code: "download_files", DisplayName: "Download Files", Category: models.PermissionCategoryFiles, IsActive: true},
		{Code: "view_reports", DisplayName: "View Reports", Category: models.PermissionCategoryReports, IsActive: true},
		{Code: "export_reports", DisplayName: "Export Reports", Category: models.PermissionCategoryReports, IsActive: true},
	}
}

// defaultRoleGrants maps each system role to its default permission codes.
// Administrators resolve to the unrestricted set regardless, but the explicit
// grants keep the role's permission listing honest.
func defaultRoleGrants() map[string][]string {
	all := permissionCatalog()
	adminCodes := make([]string, 0, len(all))
	for _, permission := range all {
		adminCodes = append(adminCodes, permission.Code)
	}

	return map[string][]string{
		models.RoleAdmin:      adminCodes,
		models.RoleInstructor: {"view_courses", "upload_files", "manage_files", "download_files"},
		models.RoleStudent:    {"view_courses", "download_files"},
	}
}

// Seed creates any missing system roles, catalog permissions and default
// role grants. The token is compared in constant time.
func (s *seedService) Seed(ctx context.Context, token string) (SeedReport, error) {
	if !s.enabled {
		return SeedReport{}, ErrSeedDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return SeedReport{}, ErrSeedTokenMismatch
	}

	report := SeedReport{}

	for _, role := range systemRoles() {
		_, err := s.roles.GetByCode(ctx, role.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return report, err
		}

		create := role
		if err := s.roles.Create(ctx, &create); err != nil {
			return report, err
		}
		report.RolesCreated++
	}

	permissionIDs := make(map[string]uint, len(permissionCatalog()))
	for _, permission := range permissionCatalog() {
		stored, created, err := s.permissions.GetOrCreate(ctx, permission)
		if err != nil {
			return report, err
		}
		if created {
			report.PermissionsCreated++
		}
		permissionIDs[stored.Code] = stored.ID
	}

	for roleCode, codes := range defaultRoleGrants() {
		role, err := s.roles.GetByCode(ctx, roleCode)
		if err != nil {
			return report, err
		}

		for _, code := range codes {
			permissionID, ok := permissionIDs[code]
			if !ok {
				continue
			}
			created, err := s.roles.GrantPermission(ctx, role.ID, permissionID)
			if err != nil {
				return report, err
			}
			if created {
				report.GrantsCreated++
			}
		}
	}

	s.logger.Info().
		Int("roles_created", report.RolesCreated).
		Int("permissions_created", report.PermissionsCreated).
		Int("grants_created", report.GrantsCreated).
		Msg("seed run completed")

	return report, nil
}
