package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

// ErrCourseNotFound indicates the course was not found.
var ErrCourseNotFound = errors.New("course not found")

// CourseService manages the course catalog and instructor assignments.
type CourseService interface {
	List(ctx context.Context, req dto.CourseListRequest) (dto.CourseListResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseCreateRequest, actor AuditActor, meta RequestMeta) (dto.CourseResponse, error)
	Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest, actor AuditActor, meta RequestMeta) (dto.CourseResponse, error)
	AssignInstructor(ctx context.Context, courseID, instructorID uint, actor AuditActor, meta RequestMeta) error
}

type courseService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewCourseService constructs the course catalog service. Descriptions are
// sanitized with a strict policy before they are stored.
func NewCourseService(courses repository.CourseRepository, users repository.UserRepository, validator *validator.Validate, audit AuditRecorder, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		users:     users,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		audit:     audit,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, req dto.CourseListRequest) (dto.CourseListResponse, error) {
	filter := repository.CourseFilter{
		Search:     strings.TrimSpace(req.Search),
		ActiveOnly: req.ActiveOnly,
		MajorID:    req.MajorID,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return dto.CourseListResponse{}, err
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, dto.NewCourseResponse(course))
	}

	return dto.CourseListResponse{
		Items:      responses,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest, actor AuditActor, meta RequestMeta) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		CourseCode:  strings.ToUpper(strings.TrimSpace(payload.CourseCode)),
		CourseName:  strings.TrimSpace(payload.CourseName),
		Description: s.sanitizer.Sanitize(strings.TrimSpace(payload.Description)),
		IsActive:    true,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	if len(payload.MajorIDs) > 0 {
		if err := s.courses.SetMajors(ctx, course.ID, payload.MajorIDs); err != nil {
			return dto.CourseResponse{}, err
		}
	}

	objectID := course.ID
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "create",
		ModelName:  "Course",
		ObjectID:   &objectID,
		ObjectRepr: course.CourseCode,
		Meta:       meta,
	})

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest, actor AuditActor, meta RequestMeta) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	updates := make(map[string]interface{})
	if payload.CourseName != nil {
		updates["course_name"] = strings.TrimSpace(*payload.CourseName)
	}
	if payload.Description != nil {
		updates["description"] = s.sanitizer.Sanitize(strings.TrimSpace(*payload.Description))
	}
	if payload.IsActive != nil {
		updates["is_active"] = *payload.IsActive
	}

	var (
		course models.Course
		err    error
	)
	if len(updates) > 0 {
		course, err = s.courses.Update(ctx, id, updates)
	} else {
		course, err = s.courses.GetByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if payload.MajorIDs != nil {
		if err := s.courses.SetMajors(ctx, id, payload.MajorIDs); err != nil {
			return dto.CourseResponse{}, err
		}
	}

	objectID := course.ID
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "update",
		ModelName:  "Course",
		ObjectID:   &objectID,
		ObjectRepr: course.CourseCode,
		Meta:       meta,
	})

	return dto.NewCourseResponse(course), nil
}

// AssignInstructor links an instructor to a course. Re-assigning an existing
// pair is a no-op.
func (s *courseService) AssignInstructor(ctx context.Context, courseID, instructorID uint, actor AuditActor, meta RequestMeta) error {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	instructor, err := s.users.GetByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if instructor.Role.Code != models.RoleInstructor {
		return errors.New("user is not an instructor")
	}

	if err := s.courses.AssignInstructor(ctx, instructorID, courseID); err != nil {
		return err
	}

	objectID := course.ID
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "update",
		ModelName:  "Course",
		ObjectID:   &objectID,
		ObjectRepr: course.CourseCode,
		Changes: map[string]interface{}{
			"assigned_instructor": instructor.FullName,
		},
		Meta: meta,
	})

	return nil
}
