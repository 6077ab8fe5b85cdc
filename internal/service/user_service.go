package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

// ErrUserNotFound indicates the user was not found for admin operations.
var ErrUserNotFound = errors.New("user not found")

// UserService orchestrates admin user management use cases.
type UserService interface {
	List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error)
	Get(ctx context.Context, id uint) (dto.UserDetailResponse, error)
	Create(ctx context.Context, payload dto.UserCreateRequest, actor AuditActor, meta RequestMeta) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, payload dto.UserUpdateRequest, actor AuditActor, meta RequestMeta) (dto.UserResponse, error)
	Suspend(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) (dto.UserResponse, error)
	Activate(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) (dto.UserResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	activity  repository.UserActivityRepository
	files     repository.LectureFileRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewUserService constructs the admin user service.
func NewUserService(repo repository.UserRepository, activity repository.UserActivityRepository, files repository.LectureFileRepository, courses repository.CourseRepository, validator *validator.Validate, audit AuditRecorder, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		activity:  activity,
		files:     files,
		courses:   courses,
		validator: validator,
		audit:     audit,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error) {
	filter := repository.UserFilter{
		RoleID:   req.RoleID,
		MajorID:  req.MajorID,
		LevelID:  req.LevelID,
		Status:   strings.TrimSpace(req.Status),
		Search:   strings.TrimSpace(req.Search),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}

	return dto.UserListResponse{
		Items:      responses,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

// Get returns the user with role-dependent detail: download counts for
// students, upload counts and course assignments for instructors.
func (s *userService) Get(ctx context.Context, id uint) (dto.UserDetailResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserDetailResponse{}, ErrUserNotFound
		}
		return dto.UserDetailResponse{}, err
	}

	detail := dto.UserDetailResponse{UserResponse: dto.NewUserResponse(user)}

	activities, err := s.activity.ListForUser(ctx, id, 20)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", id).Msg("failed to load user activity")
	} else {
		detail.RecentActivity = make([]dto.UserActivityResponse, 0, len(activities))
		for _, activity := range activities {
			detail.RecentActivity = append(detail.RecentActivity, dto.NewUserActivityResponse(activity))
		}
	}

	switch user.Role.Code {
	case models.RoleStudent:
		count, err := s.activity.CountForUser(ctx, id, models.ActivityDownload)
		if err == nil {
			detail.DownloadCount = &count
		}
	case models.RoleInstructor:
		count, err := s.files.CountByUploader(ctx, id)
		if err == nil {
			detail.UploadedFiles = &count
		}
		assignments, err := s.courses.InstructorCourses(ctx, id)
		if err == nil {
			detail.AssignedCourses = make([]dto.CourseResponse, 0, len(assignments))
			for _, assignment := range assignments {
				detail.AssignedCourses = append(detail.AssignedCourses, dto.NewCourseResponse(assignment.Course))
			}
		}
	}

	return detail, nil
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest, actor AuditActor, meta RequestMeta) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	status := payload.AccountStatus
	if status == "" {
		status = models.AccountStatusPending
	}

	user := models.User{
		AcademicID:    strings.TrimSpace(payload.AcademicID),
		IDCardNumber:  strings.TrimSpace(payload.IDCardNumber),
		FullName:      strings.TrimSpace(payload.FullName),
		Email:         strings.TrimSpace(payload.Email),
		RoleID:        payload.RoleID,
		MajorID:       payload.MajorID,
		LevelID:       payload.LevelID,
		AccountStatus: status,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	created, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.recordUserAudit(ctx, actor, meta, "create", created, nil)

	return dto.NewUserResponse(created), nil
}

func (s *userService) Update(ctx context.Context, id uint, payload dto.UserUpdateRequest, actor AuditActor, meta RequestMeta) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	updates := make(map[string]interface{})
	changed := make([]string, 0)

	if payload.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*payload.FullName)
		changed = append(changed, "full_name")
	}
	if payload.Email != nil {
		updates["email"] = strings.TrimSpace(*payload.Email)
		changed = append(changed, "email")
	}
	if payload.RoleID != nil {
		updates["role_id"] = *payload.RoleID
		changed = append(changed, "role_id")
	}
	if payload.MajorID != nil {
		updates["major_id"] = *payload.MajorID
		changed = append(changed, "major_id")
	}
	if payload.LevelID != nil {
		updates["level_id"] = *payload.LevelID
		changed = append(changed, "level_id")
	}
	if payload.AccountStatus != nil {
		updates["account_status"] = strings.ToLower(strings.TrimSpace(*payload.AccountStatus))
		changed = append(changed, "account_status")
	}

	if len(updates) == 0 {
		user, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.UserResponse{}, ErrUserNotFound
			}
			return dto.UserResponse{}, err
		}
		return dto.NewUserResponse(user), nil
	}

	user, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	s.recordUserAudit(ctx, actor, meta, "update", user, map[string]interface{}{"fields": changed})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Suspend(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) (dto.UserResponse, error) {
	return s.setStatus(ctx, id, models.AccountStatusSuspended, "suspend", actor, meta)
}

func (s *userService) Activate(ctx context.Context, id uint, actor AuditActor, meta RequestMeta) (dto.UserResponse, error) {
	return s.setStatus(ctx, id, models.AccountStatusActive, "activate", actor, meta)
}

func (s *userService) setStatus(ctx context.Context, id uint, status, action string, actor AuditActor, meta RequestMeta) (dto.UserResponse, error) {
	user, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	s.recordUserAudit(ctx, actor, meta, action, user, nil)

	return dto.NewUserResponse(user), nil
}

func (s *userService) recordUserAudit(ctx context.Context, actor AuditActor, meta RequestMeta, action string, user models.User, changes map[string]interface{}) {
	objectID := user.ID
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     action,
		ModelName:  "User",
		ObjectID:   &objectID,
		ObjectRepr: user.FullName,
		Changes:    changes,
		Meta:       meta,
	})
}
