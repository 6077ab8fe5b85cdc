package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// ReportRepository serves the read-only aggregation queries behind dashboards
// and CSV exports.
type ReportRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByStatus(ctx context.Context, status string) (int64, error)
	CountUsersByRoleCode(ctx context.Context, roleCode string) (int64, error)
	CountActiveMajors(ctx context.Context) (int64, error)
	CountActiveCourses(ctx context.Context) (int64, error)
	CountLectureFiles(ctx context.Context) (int64, error)
	TotalDownloads(ctx context.Context) (int64, error)
	AllUsers(ctx context.Context) ([]models.User, error)
	AllCourses(ctx context.Context) ([]models.Course, error)
	AllLectureFiles(ctx context.Context) ([]models.LectureFile, error)
	RecentUserActivity(ctx context.Context, limit int) ([]models.UserActivity, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs the report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *reportRepository) CountUsersByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("account_status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) CountUsersByRoleCode(ctx context.Context, roleCode string) (int64, error) {
	roleIDs := r.db.Model(&models.Role{}).Select("id").Where("code = ?", roleCode)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role_id IN (?)", roleIDs).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) CountActiveMajors(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Major{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) CountActiveCourses(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) CountLectureFiles(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LectureFile{}).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) TotalDownloads(ctx context.Context) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).Model(&models.LectureFile{}).
		Where("is_deleted = ?", false).
		Select("SUM(download_count)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *reportRepository) AllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Role").Preload("Major").Preload("Level").
		Order("academic_id").
		Find(&users).Error
	return users, err
}

func (r *reportRepository) AllCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).Order("course_code").Find(&courses).Error
	return courses, err
}

func (r *reportRepository) AllLectureFiles(ctx context.Context) ([]models.LectureFile, error) {
	var files []models.LectureFile
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *reportRepository) RecentUserActivity(ctx context.Context, limit int) ([]models.UserActivity, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	var activities []models.UserActivity
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
