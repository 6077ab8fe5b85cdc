package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// CourseFilter defines filters for listing catalog courses.
type CourseFilter struct {
	Search     string
	ActiveOnly bool
	MajorID    *uint
	Page       int
	PageSize   int
}

// CourseRepository exposes persistence helpers for the course catalog.
type CourseRepository interface {
	List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Course, error)
	SetMajors(ctx context.Context, courseID uint, majorIDs []uint) error
	AssignInstructor(ctx context.Context, instructorID, courseID uint) error
	IsInstructorAssigned(ctx context.Context, courseID, instructorID uint) (bool, error)
	InstructorCourses(ctx context.Context, instructorID uint) ([]models.InstructorCourse, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs the course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(course_code) LIKE ? OR LOWER(course_name) LIKE ?", like, like)
	}
	if filter.MajorID != nil {
		courseIDs := r.db.Model(&models.CourseMajor{}).Select("course_id").Where("major_id = ?", *filter.MajorID)
		query = query.Where("id IN (?)", courseIDs)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("course_code")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Course, error) {
	result := r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Course{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Course{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// SetMajors replaces the course's major links as a full set, mirroring the
// role-permission replacement semantics.
func (r *courseRepository) SetMajors(ctx context.Context, courseID uint, majorIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&models.CourseMajor{}).Error; err != nil {
			return err
		}

		if len(majorIDs) == 0 {
			return nil
		}

		rows := make([]models.CourseMajor, 0, len(majorIDs))
		for _, majorID := range majorIDs {
			rows = append(rows, models.CourseMajor{CourseID: courseID, MajorID: majorID})
		}
		return tx.Create(&rows).Error
	})
}

func (r *courseRepository) AssignInstructor(ctx context.Context, instructorID, courseID uint) error {
	assignment := models.InstructorCourse{InstructorID: instructorID, CourseID: courseID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignment).Error
}

func (r *courseRepository) IsInstructorAssigned(ctx context.Context, courseID, instructorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InstructorCourse{}).
		Where("course_id = ? AND instructor_id = ?", courseID, instructorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseRepository) InstructorCourses(ctx context.Context, instructorID uint) ([]models.InstructorCourse, error) {
	var assignments []models.InstructorCourse
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("instructor_id = ?", instructorID).
		Find(&assignments).Error
	return assignments, err
}
