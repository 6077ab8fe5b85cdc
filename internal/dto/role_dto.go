package dto

import (
	"time"

	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

// RoleResponse serializes a role with its assigned user count.
type RoleResponse struct {
	ID          uint      `json:"id"`
	Code        string    `json:"code"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	IsSystem    bool      `json:"is_system"`
	IsActive    bool      `json:"is_active"`
	UsersCount  int64     `json:"users_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoleCreateRequest captures a custom role creation. Custom roles are never
// system roles regardless of input.
type RoleCreateRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=32,lowercase"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"omitempty,max=512"`
}

// RoleUpdateRequest captures partial updates to a role.
type RoleUpdateRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=2,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
	IsActive    *bool   `json:"is_active"`
}

// RolePermissionsRequest is the full replacement set for a role's permissions.
type RolePermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids"`
}

// PermissionResponse serializes a permission catalog entry.
type PermissionResponse struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	IsActive    bool   `json:"is_active"`
	IsAssigned  bool   `json:"is_assigned,omitempty"`
}

// PermissionGroup groups permissions under their category.
type PermissionGroup struct {
	Category    string               `json:"category"`
	Permissions []PermissionResponse `json:"permissions"`
}

// RolePermissionsResponse pairs a role with its grouped permission catalog.
type RolePermissionsResponse struct {
	Role   RoleResponse      `json:"role"`
	Groups []PermissionGroup `json:"groups"`
}

// NewRoleResponse converts a role with user count into a DTO.
func NewRoleResponse(role repository.RoleWithUsers) RoleResponse {
	return RoleResponse{
		ID:          role.ID,
		Code:        role.Code,
		DisplayName: role.DisplayName,
		Description: role.Description,
		IsSystem:    role.IsSystem,
		IsActive:    role.IsActive,
		UsersCount:  role.UsersCount,
		CreatedAt:   role.CreatedAt,
	}
}

// NewPermissionResponse converts a permission model into a DTO.
func NewPermissionResponse(permission models.Permission) PermissionResponse {
	return PermissionResponse{
		ID:          permission.ID,
		Code:        permission.Code,
		DisplayName: permission.DisplayName,
		Category:    permission.Category,
		IsActive:    permission.IsActive,
	}
}
