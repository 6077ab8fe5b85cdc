package dto

import (
	"time"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// UserListRequest defines filters for listing users.
type UserListRequest struct {
	Page     int
	PageSize int
	RoleID   *uint
	MajorID  *uint
	LevelID  *uint
	Status   string
	Search   string
}

// UserResponse serializes user data for admin endpoints.
type UserResponse struct {
	ID            uint       `json:"id"`
	AcademicID    string     `json:"academic_id"`
	IDCardNumber  string     `json:"id_card_number"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	RoleCode      string     `json:"role_code"`
	RoleName      string     `json:"role_name"`
	Major         string     `json:"major,omitempty"`
	Level         string     `json:"level,omitempty"`
	AccountStatus string     `json:"account_status"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// UserListResponse wraps a paginated user response.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// UserDetailResponse extends UserResponse with role-dependent statistics.
type UserDetailResponse struct {
	UserResponse
	RecentActivity  []UserActivityResponse `json:"recent_activity"`
	DownloadCount   *int64                 `json:"download_count,omitempty"`
	UploadedFiles   *int64                 `json:"uploaded_files,omitempty"`
	AssignedCourses []CourseResponse       `json:"assigned_courses,omitempty"`
}

// UserCreateRequest captures a manual single-user creation.
type UserCreateRequest struct {
	AcademicID    string `json:"academic_id" validate:"required,min=1,max=32"`
	IDCardNumber  string `json:"id_card_number" validate:"required,min=1,max=32"`
	FullName      string `json:"full_name" validate:"required,min=1,max=255"`
	Email         string `json:"email" validate:"omitempty,email"`
	RoleID        uint   `json:"role_id" validate:"required"`
	MajorID       *uint  `json:"major_id"`
	LevelID       *uint  `json:"level_id"`
	AccountStatus string `json:"account_status" validate:"omitempty,oneof=pending active inactive suspended graduated"`
}

// UserUpdateRequest captures partial update payloads for users.
type UserUpdateRequest struct {
	FullName      *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Email         *string `json:"email" validate:"omitempty,email"`
	RoleID        *uint   `json:"role_id"`
	MajorID       *uint   `json:"major_id"`
	LevelID       *uint   `json:"level_id"`
	AccountStatus *string `json:"account_status" validate:"omitempty,oneof=pending active inactive suspended graduated"`
}

// UserActivityResponse serializes a per-user activity event.
type UserActivityResponse struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	response := UserResponse{
		ID:            user.ID,
		AcademicID:    user.AcademicID,
		IDCardNumber:  user.IDCardNumber,
		FullName:      user.FullName,
		Email:         user.Email,
		RoleCode:      user.Role.Code,
		RoleName:      user.Role.DisplayName,
		AccountStatus: user.AccountStatus,
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	}
	if user.Major != nil {
		response.Major = user.Major.MajorName
	}
	if user.Level != nil {
		response.Level = user.Level.LevelName
	}
	return response
}

// NewUserActivityResponse converts an activity model into a DTO.
func NewUserActivityResponse(activity models.UserActivity) UserActivityResponse {
	return UserActivityResponse{
		ID:           activity.ID,
		UserID:       activity.UserID,
		UserName:     activity.User.FullName,
		ActivityType: activity.ActivityType,
		Description:  activity.Description,
		CreatedAt:    activity.CreatedAt,
	}
}
