package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// LookupRepository serves the reference entities used for filtering and
// import resolution: majors, levels and semesters.
type LookupRepository interface {
	ListMajors(ctx context.Context, activeOnly bool) ([]models.Major, error)
	ListLevels(ctx context.Context) ([]models.Level, error)
	GetLevel(ctx context.Context, id uint) (models.Level, error)
	CurrentSemester(ctx context.Context) (*models.Semester, error)
}

type lookupRepository struct {
	db *gorm.DB
}

// NewLookupRepository constructs the lookup repository.
func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

func (r *lookupRepository) ListMajors(ctx context.Context, activeOnly bool) ([]models.Major, error) {
	query := r.db.WithContext(ctx).Order("major_name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var majors []models.Major
	err := query.Find(&majors).Error
	return majors, err
}

func (r *lookupRepository) ListLevels(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	err := r.db.WithContext(ctx).Order("level_number").Find(&levels).Error
	return levels, err
}

func (r *lookupRepository) GetLevel(ctx context.Context, id uint) (models.Level, error) {
	var level models.Level
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&level).Error; err != nil {
		return models.Level{}, err
	}
	return level, nil
}

// CurrentSemester returns the semester flagged is_current, or nil when none
// is flagged.
func (r *lookupRepository) CurrentSemester(ctx context.Context) (*models.Semester, error) {
	var semester models.Semester
	err := r.db.WithContext(ctx).Where("is_current = ?", true).First(&semester).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &semester, nil
}
