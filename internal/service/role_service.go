package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

var (
	// ErrRoleNotFound indicates the role was not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrSystemRoleImmutable indicates a forbidden change to a built-in role.
	ErrSystemRoleImmutable = errors.New("system roles cannot be deleted")
	// ErrUnknownPermissions indicates an assignment referenced permission ids
	// that do not exist in the catalog.
	ErrUnknownPermissions = errors.New("unknown permission ids in request")
)

// RoleService manages roles and their permission assignments.
type RoleService interface {
	List(ctx context.Context) ([]dto.RoleResponse, error)
	Create(ctx context.Context, payload dto.RoleCreateRequest, actor AuditActor, meta RequestMeta) (dto.RoleResponse, error)
	Update(ctx context.Context, id uint, payload dto.RoleUpdateRequest, actor AuditActor, meta RequestMeta) (dto.RoleResponse, error)
	Delete(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) error
	Permissions(ctx context.Context, roleID uint) (dto.RolePermissionsResponse, error)
	ReplacePermissions(ctx context.Context, roleID uint, payload dto.RolePermissionsRequest, actor AuditActor, meta RequestMeta) (dto.RolePermissionsResponse, error)
}

type roleService struct {
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	validator   *validator.Validate
	audit       AuditRecorder
	logger      zerolog.Logger
}

// NewRoleService constructs the role service.
func NewRoleService(roles repository.RoleRepository, permissions repository.PermissionRepository, validator *validator.Validate, audit AuditRecorder, logger zerolog.Logger) RoleService {
	return &roleService{
		roles:       roles,
		permissions: permissions,
		validator:   validator,
		audit:       audit,
		logger:      logger.With().Str("component", "role_service").Logger(),
	}
}

func (s *roleService) List(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RoleResponse, 0, len(roles))
	for _, role := range roles {
		responses = append(responses, dto.NewRoleResponse(role))
	}
	return responses, nil
}

func (s *roleService) Create(ctx context.Context, payload dto.RoleCreateRequest, actor AuditActor, meta RequestMeta) (dto.RoleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RoleResponse{}, err
	}

	role := models.Role{
		Code:        strings.ToLower(strings.TrimSpace(payload.Code)),
		DisplayName: strings.TrimSpace(payload.DisplayName),
		Description: strings.TrimSpace(payload.Description),
		IsSystem:    false,
		IsActive:    true,
	}

	if err := s.roles.Create(ctx, &role); err != nil {
		return dto.RoleResponse{}, err
	}

	objectID := role.ID
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "create",
		ModelName:  "Role",
		ObjectID:   &objectID,
		ObjectRepr: role.DisplayName,
		Meta:       meta,
	})

	return dto.NewRoleResponse(repository.RoleWithUsers{Role: role}), nil
}

func (s *roleService) Update(ctx context.Context, id uint, payload dto.RoleUpdateRequest, actor AuditActor, meta RequestMeta) (dto.RoleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RoleResponse{}, err
	}

	updates := make(map[string]interface{})
	if payload.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*payload.DisplayName)
	}
	if payload.Description != nil {
		updates["description"] = strings.TrimSpace(*payload.Description)
	}
	if payload.IsActive != nil {
		updates["is_active"] = *payload.IsActive
	}

	if len(updates) == 0 {
		role, err := s.roles.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.RoleResponse{}, ErrRoleNotFound
			}
			return dto.RoleResponse{}, err
		}
		return dto.NewRoleResponse(repository.RoleWithUsers{Role: role}), nil
	}

	role, err := s.roles.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RoleResponse{}, ErrRoleNotFound
		}
		return dto.RoleResponse{}, err
	}

	objectID := role.ID
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "update",
		ModelName:  "Role",
		ObjectID:   &objectID,
		ObjectRepr: role.DisplayName,
		Meta:       meta,
	})

	return dto.NewRoleResponse(repository.RoleWithUsers{Role: role}), nil
}

// Delete removes a custom role. Built-in roles are protected.
func (s *roleService) Delete(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) error {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	if role.IsSystem {
		return ErrSystemRoleImmutable
	}

	if err := s.roles.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	objectID := role.ID
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "delete",
		ModelName:  "Role",
		ObjectID:   &objectID,
		ObjectRepr: role.DisplayName,
		Meta:       meta,
	})

	return nil
}

// Permissions returns the full active catalog grouped by category, flagging
// the entries currently assigned to the role.
func (s *roleService) Permissions(ctx context.Context, roleID uint) (dto.RolePermissionsResponse, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RolePermissionsResponse{}, ErrRoleNotFound
		}
		return dto.RolePermissionsResponse{}, err
	}

	catalog, err := s.permissions.ListActive(ctx)
	if err != nil {
		return dto.RolePermissionsResponse{}, err
	}

	assignedIDs, err := s.roles.PermissionIDs(ctx, roleID)
	if err != nil {
		return dto.RolePermissionsResponse{}, err
	}
	assigned := make(map[uint]struct{}, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = struct{}{}
	}

	grouped := make(map[string][]dto.PermissionResponse)
	for _, permission := range catalog {
		response := dto.NewPermissionResponse(permission)
		_, response.IsAssigned = assigned[permission.ID]
		grouped[permission.Category] = append(grouped[permission.Category], response)
	}

	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	groups := make([]dto.PermissionGroup, 0, len(categories))
	for _, category := range categories {
		groups = append(groups, dto.PermissionGroup{Category: category, Permissions: grouped[category]})
	}

	return dto.RolePermissionsResponse{
		Role:   dto.NewRoleResponse(repository.RoleWithUsers{Role: role}),
		Groups: groups,
	}, nil
}

// ReplacePermissions swaps the role's permission set for the submitted ids.
// The replacement is total: ids absent from the request are revoked, and an
// empty list clears the role. Unknown ids reject the whole request.
func (s *roleService) ReplacePermissions(ctx context.Context, roleID uint, payload dto.RolePermissionsRequest, actor AuditActor, meta RequestMeta) (dto.RolePermissionsResponse, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RolePermissionsResponse{}, ErrRoleNotFound
		}
		return dto.RolePermissionsResponse{}, err
	}

	catalog, err := s.permissions.List(ctx)
	if err != nil {
		return dto.RolePermissionsResponse{}, err
	}
	known := make(map[uint]struct{}, len(catalog))
	for _, permission := range catalog {
		known[permission.ID] = struct{}{}
	}

	ids := make([]uint, 0, len(payload.PermissionIDs))
	seen := make(map[uint]struct{}, len(payload.PermissionIDs))
	for _, id := range payload.PermissionIDs {
		if _, ok := known[id]; !ok {
			return dto.RolePermissionsResponse{}, ErrUnknownPermissions
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if err := s.roles.ReplacePermissions(ctx, roleID, ids); err != nil {
		return dto.RolePermissionsResponse{}, err
	}

	objectID := role.ID
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "update",
		ModelName:  "Role",
		ObjectID:   &objectID,
		ObjectRepr: role.DisplayName,
		Changes: map[string]interface{}{
			"permissions_count": len(ids),
		},
		Meta: meta,
	})

	s.logger.Info().Uint("role_id", roleID).Int("permissions", len(ids)).Msg("role permissions replaced")

	return s.Permissions(ctx, roleID)
}
