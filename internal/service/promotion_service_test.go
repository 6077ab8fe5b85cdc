package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

type promotionFixture struct {
	svc    PromotionService
	db     *gorm.DB
	audit  *auditRecorderStub
	levels map[int]models.Level
	major  models.Major
	roles  map[string]models.Role
}

func newPromotionFixture(t *testing.T) promotionFixture {
	t.Helper()
	db := setupTestDB(t)
	roles := seedRoles(t, db)

	levels := map[int]models.Level{}
	for _, number := range []int{1, 2, models.GraduationLevelNumber} {
		level := models.Level{LevelName: levelName(number), LevelNumber: number}
		require.NoError(t, db.Create(&level).Error)
		levels[number] = level
	}

	major := models.Major{MajorName: "Computer Science", IsActive: true}
	require.NoError(t, db.Create(&major).Error)

	audit := &auditRecorderStub{}
	svc := NewPromotionService(
		repository.NewUserRepository(db),
		repository.NewLookupRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		audit,
		testLogger(),
	)

	return promotionFixture{svc: svc, db: db, audit: audit, levels: levels, major: major, roles: roles}
}

func levelName(number int) string {
	names := map[int]string{1: "Level 1", 2: "Level 2", 8: "Level 8"}
	return names[number]
}

func (f promotionFixture) addStudent(t *testing.T, academicID string, level models.Level, status string) models.User {
	t.Helper()
	levelID := level.ID
	majorID := f.major.ID
	user := models.User{
		AcademicID:    academicID,
		IDCardNumber:  "C-" + academicID,
		FullName:      "Student " + academicID,
		RoleID:        f.roles[models.RoleStudent].ID,
		MajorID:       &majorID,
		LevelID:       &levelID,
		AccountStatus: status,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func TestPromoteMovesActiveStudentsOnly(t *testing.T) {
	f := newPromotionFixture(t)
	ctx := context.Background()

	active := f.addStudent(t, "A-1", f.levels[1], models.AccountStatusActive)
	suspended := f.addStudent(t, "A-2", f.levels[1], models.AccountStatusSuspended)
	otherLevel := f.addStudent(t, "A-3", f.levels[2], models.AccountStatusActive)

	result, err := f.svc.Promote(ctx, dto.PromotionRequest{
		FromLevelID: f.levels[1].ID,
		ToLevelID:   f.levels[2].ID,
	}, AuditActor{ID: 1, Role: "admin"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, dto.PromotionActionPromoted, result.Action)
	require.Equal(t, int64(1), result.Affected)

	var moved models.User
	require.NoError(t, f.db.First(&moved, active.ID).Error)
	require.Equal(t, f.levels[2].ID, *moved.LevelID)

	var untouched models.User
	require.NoError(t, f.db.First(&untouched, suspended.ID).Error)
	require.Equal(t, f.levels[1].ID, *untouched.LevelID)

	var other models.User
	require.NoError(t, f.db.First(&other, otherLevel.ID).Error)
	require.Equal(t, f.levels[2].ID, *other.LevelID)
	require.Equal(t, models.AccountStatusActive, other.AccountStatus)

	require.Len(t, f.audit.entries, 1, "expected a single audit entry per batch")
	require.Equal(t, "promote", f.audit.entries[0].Action)
}

func TestPromoteFromTerminalLevelGraduates(t *testing.T) {
	f := newPromotionFixture(t)
	ctx := context.Background()

	senior := f.addStudent(t, "A-10", f.levels[models.GraduationLevelNumber], models.AccountStatusActive)

	// The submitted target level must be ignored on the graduation path.
	result, err := f.svc.Promote(ctx, dto.PromotionRequest{
		FromLevelID: f.levels[models.GraduationLevelNumber].ID,
		ToLevelID:   f.levels[1].ID,
	}, AuditActor{ID: 1, Role: "admin"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, dto.PromotionActionGraduated, result.Action)
	require.Equal(t, int64(1), result.Affected)
	require.Empty(t, result.ToLevel)

	var graduated models.User
	require.NoError(t, f.db.First(&graduated, senior.ID).Error)
	require.Equal(t, models.AccountStatusGraduated, graduated.AccountStatus)
	require.Nil(t, graduated.LevelID)

	require.Len(t, f.audit.entries, 1)
	require.Equal(t, dto.PromotionActionGraduated, f.audit.entries[0].Changes["action"])
}

func TestPromoteScopedToMajor(t *testing.T) {
	f := newPromotionFixture(t)
	ctx := context.Background()

	inMajor := f.addStudent(t, "A-20", f.levels[1], models.AccountStatusActive)

	otherMajor := models.Major{MajorName: "Mathematics", IsActive: true}
	require.NoError(t, f.db.Create(&otherMajor).Error)
	outside := f.addStudent(t, "A-21", f.levels[1], models.AccountStatusActive)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", outside.ID).Update("major_id", otherMajor.ID).Error)

	majorID := f.major.ID
	result, err := f.svc.Promote(ctx, dto.PromotionRequest{
		FromLevelID: f.levels[1].ID,
		ToLevelID:   f.levels[2].ID,
		MajorID:     &majorID,
	}, AuditActor{ID: 1, Role: "admin"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Affected)

	var moved models.User
	require.NoError(t, f.db.First(&moved, inMajor.ID).Error)
	require.Equal(t, f.levels[2].ID, *moved.LevelID)

	var kept models.User
	require.NoError(t, f.db.First(&kept, outside.ID).Error)
	require.Equal(t, f.levels[1].ID, *kept.LevelID)
}

func TestPromoteUnknownLevel(t *testing.T) {
	f := newPromotionFixture(t)

	_, err := f.svc.Promote(context.Background(), dto.PromotionRequest{
		FromLevelID: 9999,
		ToLevelID:   f.levels[2].ID,
	}, AuditActor{ID: 1}, RequestMeta{})
	require.ErrorIs(t, err, ErrLevelNotFound)
	require.Empty(t, f.audit.entries)
}
