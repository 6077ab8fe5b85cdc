package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is the append-only record of every mutating action. It is written
// fire-and-forget and never read back by the flow that produced it.
type AuditLog struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ActorID       uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole     string            `gorm:"size:32" json:"actor_role"`
	Action        string            `gorm:"size:32;not null;index" json:"action"`
	ModelName     string            `gorm:"size:64;not null;index" json:"model_name"`
	ObjectID      *uint             `json:"object_id"`
	ObjectRepr    string            `gorm:"size:255" json:"object_repr"`
	Changes       datatypes.JSONMap `gorm:"type:json" json:"changes"`
	IPAddress     string            `gorm:"size:64" json:"ip_address"`
	CorrelationID string            `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time         `json:"created_at"`
}

// User activity types tracked for dashboards and reports.
const (
	ActivityLogin    = "login"
	ActivityDownload = "download"
	ActivityUpload   = "upload"
	ActivityView     = "view"
)

// UserActivity is an append-only per-user event record.
type UserActivity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	User         User      `json:"user"`
	ActivityType string    `gorm:"size:32;not null;index" json:"activity_type"`
	Description  string    `gorm:"size:512" json:"description"`
	IPAddress    string    `gorm:"size:64" json:"ip_address"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}
