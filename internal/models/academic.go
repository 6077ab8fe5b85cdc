package models

import "time"

// GraduationLevelNumber is the terminal level; promoting students out of it
// graduates them instead of moving them to another level.
const GraduationLevelNumber = 8

// Major is an academic specialization users and courses belong to.
type Major struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MajorName string    `gorm:"size:128;uniqueIndex;not null" json:"major_name"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Level is an academic level (1..8) students progress through.
type Level struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LevelName   string    `gorm:"size:64;uniqueIndex;not null" json:"level_name"`
	LevelNumber int       `gorm:"not null;uniqueIndex" json:"level_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// Semester is an academic term. At most one row is expected to carry
// is_current=true at a time; this is not enforced atomically.
type Semester struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	IsCurrent bool      `gorm:"not null;default:false;index" json:"is_current"`
	StartsOn  time.Time `json:"starts_on"`
	EndsOn    time.Time `json:"ends_on"`
	CreatedAt time.Time `json:"created_at"`
}
