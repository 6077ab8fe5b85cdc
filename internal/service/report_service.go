package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

const dashboardCacheKey = "sacm:dashboard:stats"

// utf8BOM is prepended to CSV exports so spreadsheet tools detect the
// encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReportService serves dashboard aggregates and CSV exports.
type ReportService interface {
	Dashboard(ctx context.Context) (dto.DashboardStats, error)
	ExportUsersCSV(ctx context.Context) ([]byte, error)
	ExportCoursesCSV(ctx context.Context) ([]byte, error)
	ExportFilesCSV(ctx context.Context) ([]byte, error)
	ExportActivityCSV(ctx context.Context) ([]byte, error)
}

type reportService struct {
	repo     repository.ReportRepository
	lookup   repository.LookupRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewReportService constructs the report service. The cache client may be nil,
// in which case every dashboard request recomputes the aggregates.
func NewReportService(repo repository.ReportRepository, lookup repository.LookupRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		repo:     repo,
		lookup:   lookup,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "report_service").Logger(),
	}
}

// Dashboard returns the admin dashboard counters, served from cache when a
// fresh copy exists. Individual aggregation failures degrade to zero values
// so one broken counter never blanks the whole dashboard.
func (s *reportService) Dashboard(ctx context.Context) (dto.DashboardStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var stats dto.DashboardStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return stats, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("dashboard cache read failed")
		}
	}

	stats := dto.DashboardStats{}
	stats.TotalUsers = s.count(ctx, "total_users", s.repo.CountUsers)
	stats.ActiveUsers = s.countArg(ctx, "active_users", s.repo.CountUsersByStatus, models.AccountStatusActive)
	stats.PendingUsers = s.countArg(ctx, "pending_users", s.repo.CountUsersByStatus, models.AccountStatusPending)
	stats.TotalStudents = s.countArg(ctx, "total_students", s.repo.CountUsersByRoleCode, models.RoleStudent)
	stats.TotalInstructors = s.countArg(ctx, "total_instructors", s.repo.CountUsersByRoleCode, models.RoleInstructor)
	stats.ActiveMajors = s.count(ctx, "active_majors", s.repo.CountActiveMajors)
	stats.ActiveCourses = s.count(ctx, "active_courses", s.repo.CountActiveCourses)
	stats.TotalFiles = s.count(ctx, "total_files", s.repo.CountLectureFiles)
	stats.TotalDownloads = s.count(ctx, "total_downloads", s.repo.TotalDownloads)

	if semester, err := s.lookup.CurrentSemester(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to load current semester")
	} else if semester != nil {
		stats.CurrentSemester = semester.Name
	}

	activities, err := s.repo.RecentUserActivity(ctx, 10)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load recent activity")
	}
	stats.RecentActivity = make([]dto.UserActivityResponse, 0, len(activities))
	for _, activity := range activities {
		stats.RecentActivity = append(stats.RecentActivity, dto.NewUserActivityResponse(activity))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("dashboard cache write failed")
			}
		}
	}

	return stats, nil
}

func (s *reportService) count(ctx context.Context, name string, fn func(context.Context) (int64, error)) int64 {
	value, err := fn(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("counter", name).Msg("dashboard counter failed")
		return 0
	}
	return value
}

func (s *reportService) countArg(ctx context.Context, name string, fn func(context.Context, string) (int64, error), arg string) int64 {
	value, err := fn(ctx, arg)
	if err != nil {
		s.logger.Warn().Err(err).Str("counter", name).Msg("dashboard counter failed")
		return 0
	}
	return value
}

// ExportUsersCSV renders the full user roster.
func (s *reportService) ExportUsersCSV(ctx context.Context) ([]byte, error) {
	users, err := s.repo.AllUsers(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(users))
	for _, user := range users {
		major, level := "", ""
		if user.Major != nil {
			major = user.Major.MajorName
		}
		if user.Level != nil {
			level = user.Level.LevelName
		}
		rows = append(rows, []string{
			user.AcademicID,
			user.IDCardNumber,
			user.FullName,
			user.Email,
			user.Role.DisplayName,
			major,
			level,
			user.AccountStatus,
			user.CreatedAt.Format(time.RFC3339),
		})
	}

	return renderCSV(
		[]string{"academic_id", "id_card_number", "full_name", "email", "role", "major", "level", "account_status", "created_at"},
		rows,
	)
}

// ExportCoursesCSV renders the course catalog.
func (s *reportService) ExportCoursesCSV(ctx context.Context) ([]byte, error) {
	courses, err := s.repo.AllCourses(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(courses))
	for _, course := range courses {
		rows = append(rows, []string{
			course.CourseCode,
			course.CourseName,
			strconv.FormatBool(course.IsActive),
			course.CreatedAt.Format(time.RFC3339),
		})
	}

	return renderCSV(
		[]string{"course_code", "course_name", "is_active", "created_at"},
		rows,
	)
}

// ExportFilesCSV renders the lecture content inventory.
func (s *reportService) ExportFilesCSV(ctx context.Context) ([]byte, error) {
	files, err := s.repo.AllLectureFiles(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(files))
	for _, file := range files {
		rows = append(rows, []string{
			file.Title,
			file.Course.CourseCode,
			file.FileType,
			strconv.FormatBool(file.IsVisible),
			strconv.FormatInt(file.DownloadCount, 10),
			file.CreatedAt.Format(time.RFC3339),
		})
	}

	return renderCSV(
		[]string{"title", "course_code", "file_type", "is_visible", "download_count", "created_at"},
		rows,
	)
}

// ExportActivityCSV renders the recent activity log.
func (s *reportService) ExportActivityCSV(ctx context.Context) ([]byte, error) {
	activities, err := s.repo.RecentUserActivity(ctx, 0)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(activities))
	for _, activity := range activities {
		rows = append(rows, []string{
			activity.User.AcademicID,
			activity.User.FullName,
			activity.ActivityType,
			activity.Description,
			activity.CreatedAt.Format(time.RFC3339),
		})
	}

	return renderCSV(
		[]string{"academic_id", "full_name", "activity_type", "description", "created_at"},
		rows,
	)
}

// renderCSV writes a BOM-prefixed CSV document with the given header.
func renderCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
