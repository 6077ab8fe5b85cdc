package dto

import (
	"time"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// CourseListRequest defines filters for listing catalog courses.
type CourseListRequest struct {
	Page       int
	PageSize   int
	Search     string
	ActiveOnly bool
	MajorID    *uint
}

// CourseResponse serializes a course catalog entry.
type CourseResponse struct {
	ID          uint      `json:"id"`
	CourseCode  string    `json:"course_code"`
	CourseName  string    `json:"course_name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CourseListResponse wraps a paginated course response.
type CourseListResponse struct {
	Items      []CourseResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// CourseCreateRequest captures a new catalog course.
type CourseCreateRequest struct {
	CourseCode  string `json:"course_code" validate:"required,min=2,max=32"`
	CourseName  string `json:"course_name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=1024"`
	MajorIDs    []uint `json:"major_ids"`
}

// CourseUpdateRequest captures partial updates to a course.
type CourseUpdateRequest struct {
	CourseName  *string `json:"course_name" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1024"`
	IsActive    *bool   `json:"is_active"`
	MajorIDs    []uint  `json:"major_ids"`
}

// LectureFileResponse serializes lecture content metadata.
type LectureFileResponse struct {
	ID            uint      `json:"id"`
	CourseID      uint      `json:"course_id"`
	CourseName    string    `json:"course_name"`
	UploaderID    uint      `json:"uploader_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	FileType      string    `json:"file_type"`
	FileURL       string    `json:"file_url,omitempty"`
	ExternalLink  string    `json:"external_link,omitempty"`
	IsVisible     bool      `json:"is_visible"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// LectureFileUploadRequest carries the metadata fields of a multipart file
// upload. The file itself is passed alongside.
type LectureFileUploadRequest struct {
	CourseID    uint   `json:"course_id" validate:"required"`
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=1024"`
}

// LectureLinkCreateRequest registers external-link lecture content.
type LectureLinkCreateRequest struct {
	CourseID     uint   `json:"course_id" validate:"required"`
	Title        string `json:"title" validate:"required,min=1,max=255"`
	Description  string `json:"description" validate:"omitempty,max=1024"`
	ExternalLink string `json:"external_link" validate:"required,url"`
}

// NewCourseResponse converts a course model into a DTO.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:          course.ID,
		CourseCode:  course.CourseCode,
		CourseName:  course.CourseName,
		Description: course.Description,
		IsActive:    course.IsActive,
		CreatedAt:   course.CreatedAt,
	}
}

// NewLectureFileResponse converts a lecture file model into a DTO.
func NewLectureFileResponse(file models.LectureFile) LectureFileResponse {
	return LectureFileResponse{
		ID:            file.ID,
		CourseID:      file.CourseID,
		CourseName:    file.Course.CourseName,
		UploaderID:    file.UploaderID,
		Title:         file.Title,
		Description:   file.Description,
		FileType:      file.FileType,
		FileURL:       file.FileURL,
		ExternalLink:  file.ExternalLink,
		IsVisible:     file.IsVisible,
		DownloadCount: file.DownloadCount,
		CreatedAt:     file.CreatedAt,
	}
}
