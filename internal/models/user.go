package models

import "time"

// Account status values a user moves through during its lifecycle.
const (
	AccountStatusPending   = "pending"
	AccountStatusActive    = "active"
	AccountStatusInactive  = "inactive"
	AccountStatusSuspended = "suspended"
	AccountStatusGraduated = "graduated"
)

// User is an identity record for students, instructors and administrators.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	AcademicID   string `gorm:"size:32;uniqueIndex;not null" json:"academic_id"`
	IDCardNumber string `gorm:"size:32;uniqueIndex;not null" json:"id_card_number"`
	FullName     string `gorm:"size:255" json:"full_name"`
	Email        string `gorm:"size:255" json:"email"`

	RoleID  uint   `gorm:"not null;index" json:"role_id"`
	Role    Role   `json:"role"`
	MajorID *uint  `gorm:"index" json:"major_id"`
	Major   *Major `json:"major,omitempty"`
	LevelID *uint  `gorm:"index" json:"level_id"`
	Level   *Level `json:"level,omitempty"`

	AccountStatus string     `gorm:"size:16;not null;default:pending;index" json:"account_status"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsActive reports whether the account may sign in.
func (u User) IsActive() bool {
	return u.AccountStatus == AccountStatusActive
}
