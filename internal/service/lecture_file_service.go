package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

var (
	// ErrFileNotFound indicates the lecture file was not found or is deleted.
	ErrFileNotFound = errors.New("lecture file not found")
	// ErrFileTooLarge indicates the upload exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")
	// ErrFileNotVisible indicates a download of hidden content by a non-owner.
	ErrFileNotVisible = errors.New("lecture file is not available")
	// ErrNotCourseInstructor indicates the actor neither administers the
	// system nor teaches the course the content belongs to.
	ErrNotCourseInstructor = errors.New("actor does not manage this course")
)

const defaultMaxUploadMB = 25

// FileStorage stores uploaded lecture assets and returns their public URL.
type FileStorage interface {
	Upload(ctx context.Context, courseID uint, name string, reader io.Reader) (string, error)
}

// LectureFileService manages lecture content: uploads, external links,
// visibility and downloads.
type LectureFileService interface {
	List(ctx context.Context, filter repository.LectureFileFilter) ([]dto.LectureFileResponse, error)
	Upload(ctx context.Context, req dto.LectureFileUploadRequest, filename string, size int64, file io.Reader, actor AuditActor, meta RequestMeta) (dto.LectureFileResponse, error)
	CreateLink(ctx context.Context, req dto.LectureLinkCreateRequest, actor AuditActor, meta RequestMeta) (dto.LectureFileResponse, error)
	SetVisibility(ctx context.Context, id uint, visible bool, actor AuditActor, meta RequestMeta) (dto.LectureFileResponse, error)
	Delete(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) error
	Download(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) (dto.LectureFileResponse, error)
}

type lectureFileService struct {
	files       repository.LectureFileRepository
	courses     repository.CourseRepository
	activity    repository.UserActivityRepository
	storage     FileStorage
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	audit       AuditRecorder
	tracer      trace.Tracer
	maxUploadMB int
	logger      zerolog.Logger
}

// NewLectureFileService constructs the lecture content service. Non-positive
// size caps fall back to the default so the limit check cannot degenerate.
func NewLectureFileService(files repository.LectureFileRepository, courses repository.CourseRepository, activity repository.UserActivityRepository, storage FileStorage, validator *validator.Validate, audit AuditRecorder, maxUploadMB int, logger zerolog.Logger) LectureFileService {
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}
	return &lectureFileService{
		files:       files,
		courses:     courses,
		activity:    activity,
		storage:     storage,
		validator:   validator,
		sanitizer:   bluemonday.StrictPolicy(),
		audit:       audit,
		tracer:      otel.Tracer("lecture-files"),
		maxUploadMB: maxUploadMB,
		logger:      logger.With().Str("component", "lecture_file_service").Logger(),
	}
}

func (s *lectureFileService) List(ctx context.Context, filter repository.LectureFileFilter) ([]dto.LectureFileResponse, error) {
	files, err := s.files.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.LectureFileResponse, 0, len(files))
	for _, file := range files {
		responses = append(responses, dto.NewLectureFileResponse(file))
	}
	return responses, nil
}

// Upload stores the file and registers its metadata. The content type is
// sniffed from the bytes, not trusted from the client, and mapped to a
// coarse category used for listing and icons.
func (s *lectureFileService) Upload(ctx context.Context, req dto.LectureFileUploadRequest, filename string, size int64, file io.Reader, actor AuditActor, meta RequestMeta) (dto.LectureFileResponse, error) {
	ctx, span := s.tracer.Start(ctx, "lecture_file.upload", trace.WithAttributes(
		attribute.Int64("upload.size_bytes", size),
		attribute.String("upload.filename", filename),
	))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.LectureFileResponse{}, err
	}

	maxBytes := int64(s.maxUploadMB) * 1024 * 1024
	if maxBytes > 0 && size > maxBytes {
		return dto.LectureFileResponse{}, fmt.Errorf("%w: limit is %d MB", ErrFileTooLarge, s.maxUploadMB)
	}

	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LectureFileResponse{}, ErrCourseNotFound
		}
		return dto.LectureFileResponse{}, err
	}

	if err := s.requireCourseManager(ctx, actor, course.ID); err != nil {
		return dto.LectureFileResponse{}, err
	}

	content, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return dto.LectureFileResponse{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return dto.LectureFileResponse{}, fmt.Errorf("%w: limit is %d MB", ErrFileTooLarge, s.maxUploadMB)
	}

	detected := mimetype.Detect(content)
	fileType := categorizeMIME(detected.String(), filename)
	span.SetAttributes(attribute.String("upload.mime", detected.String()))

	url, err := s.storage.Upload(ctx, course.ID, filename, bytes.NewReader(content))
	if err != nil {
		span.RecordError(err)
		return dto.LectureFileResponse{}, fmt.Errorf("failed to store file: %w", err)
	}

	record := models.LectureFile{
		CourseID:    course.ID,
		Course:      course,
		UploaderID:  actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: s.sanitizer.Sanitize(strings.TrimSpace(req.Description)),
		FileType:    fileType,
		FileURL:     url,
		IsVisible:   true,
	}
	if err := s.files.Create(ctx, &record); err != nil {
		return dto.LectureFileResponse{}, err
	}

	s.recordFileAudit(ctx, actor, meta, "create", record, map[string]interface{}{
		"file_type": fileType,
		"mime":      detected.String(),
	})

	s.logger.Info().
		Uint("file_id", record.ID).
		Uint("course_id", course.ID).
		Str("file_type", fileType).
		Msg("lecture file uploaded")

	return dto.NewLectureFileResponse(record), nil
}

// CreateLink registers external lecture content without a stored file.
func (s *lectureFileService) CreateLink(ctx context.Context, req dto.LectureLinkCreateRequest, actor AuditActor, meta RequestMeta) (dto.LectureFileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LectureFileResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LectureFileResponse{}, ErrCourseNotFound
		}
		return dto.LectureFileResponse{}, err
	}

	if err := s.requireCourseManager(ctx, actor, course.ID); err != nil {
		return dto.LectureFileResponse{}, err
	}

	record := models.LectureFile{
		CourseID:     course.ID,
		Course:       course,
		UploaderID:   actor.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  s.sanitizer.Sanitize(strings.TrimSpace(req.Description)),
		FileType:     models.FileTypeLink,
		ExternalLink: strings.TrimSpace(req.ExternalLink),
		IsVisible:    true,
	}
	if err := s.files.Create(ctx, &record); err != nil {
		return dto.LectureFileResponse{}, err
	}

	s.recordFileAudit(ctx, actor, meta, "create", record, map[string]interface{}{
		"file_type": models.FileTypeLink,
	})

	return dto.NewLectureFileResponse(record), nil
}

func (s *lectureFileService) SetVisibility(ctx context.Context, id uint, visible bool, actor AuditActor, meta RequestMeta) (dto.LectureFileResponse, error) {
	existing, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LectureFileResponse{}, ErrFileNotFound
		}
		return dto.LectureFileResponse{}, err
	}

	if err := s.requireCourseManager(ctx, actor, existing.CourseID); err != nil {
		return dto.LectureFileResponse{}, err
	}

	file, err := s.files.SetVisibility(ctx, id, visible)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LectureFileResponse{}, ErrFileNotFound
		}
		return dto.LectureFileResponse{}, err
	}

	s.recordFileAudit(ctx, actor, meta, "update", file, map[string]interface{}{
		"is_visible": visible,
	})

	return dto.NewLectureFileResponse(file), nil
}

func (s *lectureFileService) Delete(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) error {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}

	if err := s.requireCourseManager(ctx, actor, file.CourseID); err != nil {
		return err
	}

	if err := s.files.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}

	s.recordFileAudit(ctx, actor, meta, "delete", file, nil)

	return nil
}

// Download resolves the content reference, bumps the download counter and
// records a user activity row. Hidden files stay downloadable for their
// uploader only.
func (s *lectureFileService) Download(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) (dto.LectureFileResponse, error) {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LectureFileResponse{}, ErrFileNotFound
		}
		return dto.LectureFileResponse{}, err
	}

	if !file.IsVisible && file.UploaderID != actor.ID {
		return dto.LectureFileResponse{}, ErrFileNotVisible
	}

	if err := s.files.IncrementDownload(ctx, id); err != nil {
		s.logger.Warn().Err(err).Uint("file_id", id).Msg("failed to bump download count")
	}

	activity := models.UserActivity{
		UserID:       actor.ID,
		ActivityType: models.ActivityDownload,
		Description:  fmt.Sprintf("downloaded %q", file.Title),
		IPAddress:    meta.IPAddress,
	}
	if err := s.activity.Create(ctx, &activity); err != nil {
		s.logger.Warn().Err(err).Uint("file_id", id).Msg("failed to record download activity")
	}

	file.DownloadCount++
	return dto.NewLectureFileResponse(file), nil
}

// requireCourseManager allows administrators and instructors assigned to the
// course; everyone else gets ErrNotCourseInstructor.
func (s *lectureFileService) requireCourseManager(ctx context.Context, actor AuditActor, courseID uint) error {
	if strings.EqualFold(actor.Role, models.RoleAdmin) {
		return nil
	}

	assigned, err := s.courses.IsInstructorAssigned(ctx, courseID, actor.ID)
	if err != nil {
		return err
	}
	if !assigned {
		return ErrNotCourseInstructor
	}
	return nil
}

func (s *lectureFileService) recordFileAudit(ctx context.Context, actor AuditActor, meta RequestMeta, action string, file models.LectureFile, changes map[string]interface{}) {
	objectID := file.ID
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     action,
		ModelName:  "LectureFile",
		ObjectID:   &objectID,
		ObjectRepr: file.Title,
		Changes:    changes,
		Meta:       meta,
	})
}

// categorizeMIME maps a sniffed MIME type to the coarse file categories the
// catalog shows. The filename extension only breaks ties for office formats
// that all sniff as zip containers.
func categorizeMIME(mime, filename string) string {
	mime = strings.ToLower(mime)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.FileTypeImage
	case strings.HasPrefix(mime, "video/"):
		return models.FileTypeVideo
	case strings.Contains(mime, "presentation") || ext == "ppt" || ext == "pptx":
		return models.FileTypeSlides
	case strings.Contains(mime, "pdf"),
		strings.Contains(mime, "msword"),
		strings.Contains(mime, "wordprocessingml"),
		strings.Contains(mime, "spreadsheet"),
		strings.HasPrefix(mime, "text/"):
		return models.FileTypeDocument
	case strings.Contains(mime, "zip"),
		strings.Contains(mime, "x-tar"),
		strings.Contains(mime, "x-rar"),
		strings.Contains(mime, "x-7z"),
		strings.Contains(mime, "gzip"):
		return models.FileTypeArchive
	default:
		return models.FileTypeOther
	}
}
