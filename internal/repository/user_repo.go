package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sacm-dev/sacm-api/internal/models"
)

// UserFilter defines filters for listing users from the admin panel.
type UserFilter struct {
	RoleID   *uint
	MajorID  *uint
	LevelID  *uint
	Status   string
	Search   string
	Page     int
	PageSize int
}

// UserRepository exposes persistence helpers for user management.
type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error)
	UpdateStatus(ctx context.Context, id uint, status string) (models.User, error)
	AcademicIDs(ctx context.Context) (map[string]struct{}, error)
	IDCardNumbers(ctx context.Context) (map[string]struct{}, error)
	BulkCreate(ctx context.Context, users []models.User, batchSize int) error
	PromoteLevel(ctx context.Context, fromLevelID, toLevelID uint, majorID *uint) (int64, error)
	Graduate(ctx context.Context, fromLevelID uint, majorID *uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.RoleID != nil {
		query = query.Where("role_id = ?", *filter.RoleID)
	}
	if filter.MajorID != nil {
		query = query.Where("major_id = ?", *filter.MajorID)
	}
	if filter.LevelID != nil {
		query = query.Where("level_id = ?", *filter.LevelID)
	}
	if filter.Status != "" {
		query = query.Where("account_status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(academic_id) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Role").Preload("Major").Preload("Level").Order("created_at DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	query := r.db.WithContext(ctx).
		Preload("Role").Preload("Major").Preload("Level").
		Where("id = ?", id)
	if err := query.First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error) {
	tx := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id)
	result := tx.Updates(updates)
	if result.Error != nil {
		return models.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *userRepository) UpdateStatus(ctx context.Context, id uint, status string) (models.User, error) {
	return r.Update(ctx, id, map[string]interface{}{"account_status": status})
}

func (r *userRepository) AcademicIDs(ctx context.Context) (map[string]struct{}, error) {
	return r.stringColumnSet(ctx, "academic_id")
}

func (r *userRepository) IDCardNumbers(ctx context.Context) (map[string]struct{}, error) {
	return r.stringColumnSet(ctx, "id_card_number")
}

func (r *userRepository) stringColumnSet(ctx context.Context, column string) (map[string]struct{}, error) {
	var values []string
	if err := r.db.WithContext(ctx).Model(&models.User{}).Pluck(column, &values).Error; err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set, nil
}

// BulkCreate inserts users in fixed-size batches, silently dropping rows that
// collide on a unique key at insert time. Each batch is its own statement, so
// a failure partway leaves earlier batches committed.
func (r *userRepository) BulkCreate(ctx context.Context, users []models.User, batchSize int) error {
	if len(users) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(users, batchSize).Error
}

func (r *userRepository) activeStudentsAtLevel(ctx context.Context, levelID uint, majorID *uint) *gorm.DB {
	roleIDs := r.db.Model(&models.Role{}).Select("id").Where("code = ?", models.RoleStudent)

	query := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role_id IN (?)", roleIDs).
		Where("level_id = ?", levelID).
		Where("account_status = ?", models.AccountStatusActive)

	if majorID != nil {
		query = query.Where("major_id = ?", *majorID)
	}
	return query
}

// PromoteLevel moves matching active students to the target level in a single
// bulk update. Status is left untouched.
func (r *userRepository) PromoteLevel(ctx context.Context, fromLevelID, toLevelID uint, majorID *uint) (int64, error) {
	result := r.activeStudentsAtLevel(ctx, fromLevelID, majorID).
		Update("level_id", toLevelID)
	return result.RowsAffected, result.Error
}

// Graduate marks matching active students as graduated and clears their level.
// This is a one-way terminal transition.
func (r *userRepository) Graduate(ctx context.Context, fromLevelID uint, majorID *uint) (int64, error) {
	result := r.activeStudentsAtLevel(ctx, fromLevelID, majorID).
		Updates(map[string]interface{}{
			"account_status": models.AccountStatusGraduated,
			"level_id":       nil,
		})
	return result.RowsAffected, result.Error
}
