package models

import "time"

// Course is a catalog entry lecture files are attached to.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseCode  string    `gorm:"size:32;uniqueIndex;not null" json:"course_code"`
	CourseName  string    `gorm:"size:255;not null" json:"course_name"`
	Description string    `gorm:"size:1024" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CourseMajor joins courses to the majors they are offered for.
type CourseMajor struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_course_major" json:"course_id"`
	MajorID  uint `gorm:"not null;uniqueIndex:idx_course_major" json:"major_id"`
}

// InstructorCourse assigns an instructor to a course.
type InstructorCourse struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InstructorID uint      `gorm:"not null;uniqueIndex:idx_instructor_course" json:"instructor_id"`
	CourseID     uint      `gorm:"not null;uniqueIndex:idx_instructor_course" json:"course_id"`
	Course       Course    `json:"course"`
	CreatedAt    time.Time `json:"created_at"`
}

// Lecture file type categories derived from the sniffed MIME type.
const (
	FileTypeDocument = "document"
	FileTypeSlides   = "slides"
	FileTypeImage    = "image"
	FileTypeVideo    = "video"
	FileTypeArchive  = "archive"
	FileTypeLink     = "link"
	FileTypeOther    = "other"
)

// LectureFile is uploaded course content. Exactly one of FileURL or
// ExternalLink carries the content reference.
type LectureFile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CourseID      uint      `gorm:"not null;index" json:"course_id"`
	Course        Course    `json:"course"`
	UploaderID    uint      `gorm:"not null;index" json:"uploader_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"size:1024" json:"description"`
	FileType      string    `gorm:"size:16;not null" json:"file_type"`
	FileURL       string    `gorm:"size:1024" json:"file_url"`
	ExternalLink  string    `gorm:"size:1024" json:"external_link"`
	IsVisible     bool      `gorm:"not null;default:true" json:"is_visible"`
	IsDeleted     bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	DownloadCount int64     `gorm:"not null;default:0" json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
