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

func newUserFixture(t *testing.T) (UserService, *gorm.DB, *auditRecorderStub, map[string]models.Role) {
	t.Helper()
	db := setupTestDB(t)
	roles := seedRoles(t, db)

	audit := &auditRecorderStub{}
	svc := NewUserService(
		repository.NewUserRepository(db),
		repository.NewUserActivityRepository(db),
		repository.NewLectureFileRepository(db),
		repository.NewCourseRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		audit,
		testLogger(),
	)
	return svc, db, audit, roles
}

func TestCreateUserDefaultsToPending(t *testing.T) {
	svc, _, audit, roles := newUserFixture(t)

	user, err := svc.Create(context.Background(), dto.UserCreateRequest{
		AcademicID:   " A-1 ",
		IDCardNumber: "C-1",
		FullName:     "Sam Lee",
		RoleID:       roles[models.RoleStudent].ID,
	}, AuditActor{ID: 1, Role: "admin"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, "A-1", user.AcademicID)
	require.Equal(t, models.AccountStatusPending, user.AccountStatus)
	require.Equal(t, models.RoleStudent, user.RoleCode)

	require.Len(t, audit.entries, 1)
	require.Equal(t, "create", audit.entries[0].Action)
	require.Equal(t, "User", audit.entries[0].ModelName)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, audit, _ := newUserFixture(t)

	_, err := svc.Create(context.Background(), dto.UserCreateRequest{
		IDCardNumber: "C-2",
		FullName:     "No Academic ID",
		RoleID:       1,
	}, AuditActor{ID: 1}, RequestMeta{})
	require.Error(t, err)
	require.Empty(t, audit.entries)
}

func TestSuspendAndActivate(t *testing.T) {
	svc, db, audit, roles := newUserFixture(t)
	ctx := context.Background()

	record := models.User{AcademicID: "A-3", IDCardNumber: "C-3", RoleID: roles[models.RoleStudent].ID, AccountStatus: models.AccountStatusActive}
	require.NoError(t, db.Create(&record).Error)

	suspended, err := svc.Suspend(ctx, record.ID, AuditActor{ID: 1, Role: "admin"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, models.AccountStatusSuspended, suspended.AccountStatus)

	activated, err := svc.Activate(ctx, record.ID, AuditActor{ID: 1, Role: "admin"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, models.AccountStatusActive, activated.AccountStatus)

	require.Len(t, audit.entries, 2)
	require.Equal(t, "suspend", audit.entries[0].Action)
	require.Equal(t, "activate", audit.entries[1].Action)
}

func TestSuspendUnknownUser(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)

	_, err := svc.Suspend(context.Background(), 9999, AuditActor{ID: 1}, RequestMeta{})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateRecordsChangedFields(t *testing.T) {
	svc, db, audit, roles := newUserFixture(t)
	ctx := context.Background()

	record := models.User{AcademicID: "A-4", IDCardNumber: "C-4", FullName: "Before", RoleID: roles[models.RoleStudent].ID, AccountStatus: models.AccountStatusActive}
	require.NoError(t, db.Create(&record).Error)

	name := "After"
	updated, err := svc.Update(ctx, record.ID, dto.UserUpdateRequest{FullName: &name}, AuditActor{ID: 1, Role: "admin"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, "After", updated.FullName)

	require.Len(t, audit.entries, 1)
	require.Equal(t, []string{"full_name"}, audit.entries[0].Changes["fields"])
}

func TestGetStudentDetailIncludesDownloadCount(t *testing.T) {
	svc, db, _, roles := newUserFixture(t)
	ctx := context.Background()

	record := models.User{AcademicID: "A-5", IDCardNumber: "C-5", RoleID: roles[models.RoleStudent].ID, AccountStatus: models.AccountStatusActive}
	require.NoError(t, db.Create(&record).Error)
	require.NoError(t, db.Create(&models.UserActivity{UserID: record.ID, ActivityType: models.ActivityDownload, Description: "downloaded file"}).Error)

	detail, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.DownloadCount)
	require.Equal(t, int64(1), *detail.DownloadCount)
	require.Len(t, detail.RecentActivity, 1)
}
