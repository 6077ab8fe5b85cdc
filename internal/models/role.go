package models

import "time"

// Codes of the seeded system roles.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// Role is a named permission bundle assigned to users.
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	DisplayName string    `gorm:"size:128;not null" json:"display_name"`
	Description string    `gorm:"size:512" json:"description"`
	IsSystem    bool      `gorm:"not null;default:false" json:"is_system"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission categories used for grouping in the admin UI.
const (
	PermissionCategoryCourses = "courses"
	PermissionCategoryFiles   = "files"
	PermissionCategoryReports = "reports"
	PermissionCategoryUsers   = "users"
	PermissionCategorySystem  = "system"
)

// Permission is an atomic capability that can be attached to roles.
type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	DisplayName string    `gorm:"size:128;not null" json:"display_name"`
	Category    string    `gorm:"size:32;not null;index" json:"category"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// RolePermission joins roles to permissions. Rows for a role are always
// replaced as a full set, never diffed.
type RolePermission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RoleID       uint       `gorm:"not null;uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uint       `gorm:"not null;uniqueIndex:idx_role_permission" json:"permission_id"`
	Permission   Permission `json:"permission"`
	CreatedAt    time.Time  `json:"created_at"`
}
