package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// LectureFileFilter defines filters for listing lecture files.
type LectureFileFilter struct {
	CourseID    *uint
	UploaderID  *uint
	VisibleOnly bool
	Limit       int
}

// LectureFileRepository exposes persistence helpers for lecture content.
type LectureFileRepository interface {
	Create(ctx context.Context, file *models.LectureFile) error
	GetByID(ctx context.Context, id uint) (models.LectureFile, error)
	List(ctx context.Context, filter LectureFileFilter) ([]models.LectureFile, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.LectureFile, error)
	SetVisibility(ctx context.Context, id uint, visible bool) (models.LectureFile, error)
	SoftDelete(ctx context.Context, id uint) error
	IncrementDownload(ctx context.Context, id uint) error
	CountByUploader(ctx context.Context, uploaderID uint) (int64, error)
}

type lectureFileRepository struct {
	db *gorm.DB
}

// NewLectureFileRepository constructs the lecture file repository.
func NewLectureFileRepository(db *gorm.DB) LectureFileRepository {
	return &lectureFileRepository{db: db}
}

func (r *lectureFileRepository) Create(ctx context.Context, file *models.LectureFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *lectureFileRepository) GetByID(ctx context.Context, id uint) (models.LectureFile, error) {
	var file models.LectureFile
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("id = ?", id).
		Where("is_deleted = ?", false).
		First(&file).Error
	if err != nil {
		return models.LectureFile{}, err
	}
	return file, nil
}

func (r *lectureFileRepository) List(ctx context.Context, filter LectureFileFilter) ([]models.LectureFile, error) {
	query := r.db.WithContext(ctx).
		Preload("Course").
		Where("is_deleted = ?", false)

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}
	if filter.UploaderID != nil {
		query = query.Where("uploader_id = ?", *filter.UploaderID)
	}
	if filter.VisibleOnly {
		query = query.Where("is_visible = ?", true)
	}

	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var files []models.LectureFile
	err := query.Find(&files).Error
	return files, err
}

func (r *lectureFileRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.LectureFile, error) {
	result := r.db.WithContext(ctx).Model(&models.LectureFile{}).
		Where("id = ?", id).
		Where("is_deleted = ?", false).
		Updates(updates)
	if result.Error != nil {
		return models.LectureFile{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.LectureFile{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *lectureFileRepository) SetVisibility(ctx context.Context, id uint, visible bool) (models.LectureFile, error) {
	return r.Update(ctx, id, map[string]interface{}{"is_visible": visible})
}

func (r *lectureFileRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.LectureFile{}).
		Where("id = ?", id).
		Where("is_deleted = ?", false).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *lectureFileRepository) IncrementDownload(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.LectureFile{}).
		Where("id = ?", id).
		Update("download_count", gorm.Expr("download_count + 1")).Error
}

func (r *lectureFileRepository) CountByUploader(ctx context.Context, uploaderID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LectureFile{}).
		Where("uploader_id = ?", uploaderID).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}
