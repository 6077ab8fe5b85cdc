package dto

import (
	"time"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// DashboardStats aggregates the read-only counters shown on the admin
// dashboard. Aggregation failures degrade to zero values, never errors.
type DashboardStats struct {
	TotalUsers       int64                  `json:"total_users"`
	ActiveUsers      int64                  `json:"active_users"`
	PendingUsers     int64                  `json:"pending_users"`
	TotalStudents    int64                  `json:"total_students"`
	TotalInstructors int64                  `json:"total_instructors"`
	ActiveMajors     int64                  `json:"active_majors"`
	ActiveCourses    int64                  `json:"active_courses"`
	TotalFiles       int64                  `json:"total_files"`
	TotalDownloads   int64                  `json:"total_downloads"`
	CurrentSemester  string                 `json:"current_semester,omitempty"`
	RecentActivity   []UserActivityResponse `json:"recent_activity"`
}

// AuditEntryResponse serializes an audit trail entry.
type AuditEntryResponse struct {
	ID            uint                   `json:"id"`
	ActorID       uint                   `json:"actor_id"`
	ActorRole     string                 `json:"actor_role"`
	Action        string                 `json:"action"`
	ModelName     string                 `json:"model_name"`
	ObjectID      *uint                  `json:"object_id,omitempty"`
	ObjectRepr    string                 `json:"object_repr,omitempty"`
	Changes       map[string]interface{} `json:"changes,omitempty"`
	IPAddress     string                 `json:"ip_address,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// AuditListRequest defines filters for listing audit entries.
type AuditListRequest struct {
	Page      int
	PageSize  int
	ActorID   uint
	Action    string
	ModelName string
}

// AuditListResponse wraps a paginated audit trail response.
type AuditListResponse struct {
	Items      []AuditEntryResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAuditEntryResponse converts an audit log model into a DTO.
func NewAuditEntryResponse(entry models.AuditLog) AuditEntryResponse {
	return AuditEntryResponse{
		ID:            entry.ID,
		ActorID:       entry.ActorID,
		ActorRole:     entry.ActorRole,
		Action:        entry.Action,
		ModelName:     entry.ModelName,
		ObjectID:      entry.ObjectID,
		ObjectRepr:    entry.ObjectRepr,
		Changes:       entry.Changes,
		IPAddress:     entry.IPAddress,
		CorrelationID: entry.CorrelationID,
		CreatedAt:     entry.CreatedAt,
	}
}
