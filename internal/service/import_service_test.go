package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

func newImportFixture(t *testing.T) (ImportService, *gorm.DB, *auditRecorderStub) {
	t.Helper()
	db := setupTestDB(t)
	seedRoles(t, db)
	require.NoError(t, db.Create(&models.Major{MajorName: "Computer Science", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Level{LevelName: "Level 1", LevelNumber: 1}).Error)

	audit := &auditRecorderStub{}
	svc := NewImportService(
		repository.NewUserRepository(db),
		repository.NewRoleRepository(db),
		repository.NewLookupRepository(db),
		audit,
		testLogger(),
	)
	return svc, db, audit
}

func TestImportCreatesSkipsAndReportsErrors(t *testing.T) {
	svc, db, audit := newImportFixture(t)
	ctx := context.Background()

	// An existing user collides with the second row.
	var studentRole models.Role
	require.NoError(t, db.Where("code = ?", models.RoleStudent).First(&studentRole).Error)
	require.NoError(t, db.Create(&models.User{
		AcademicID: "A-200", IDCardNumber: "C-200", FullName: "Existing",
		RoleID: studentRole.ID, AccountStatus: models.AccountStatusActive,
	}).Error)

	csv := strings.Join([]string{
		"academic_id,id_card_number,full_name,email,role,major,level",
		"A-100,C-100,New Student,new@example.com,student,Computer Science,Level 1",
		"A-200,C-999,Duplicate Academic,dup@example.com,student,,",
		"A-300,,Missing Card,missing@example.com,student,,",
	}, "\n")

	lookups, err := svc.BuildLookups(ctx)
	require.NoError(t, err)

	summary, err := svc.Import(ctx, strings.NewReader(csv), lookups, AuditActor{ID: 1, Role: "admin"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 1, summary.ErrorCount)
	require.Len(t, summary.Errors, 1)
	require.Contains(t, summary.Errors[0], "row 4")

	var created models.User
	require.NoError(t, db.Where("academic_id = ?", "A-100").First(&created).Error)
	require.Equal(t, models.AccountStatusInactive, created.AccountStatus)
	require.NotNil(t, created.MajorID)
	require.NotNil(t, created.LevelID)

	// One audit entry for the whole batch.
	require.Len(t, audit.entries, 1)
	require.Equal(t, "import", audit.entries[0].Action)
	require.Equal(t, 1, audit.entries[0].Changes["created"])
}

func TestImportInFileDuplicateCountsAsSkipped(t *testing.T) {
	svc, _, _ := newImportFixture(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"academic_id,id_card_number,full_name",
		"A-500,C-500,First Occurrence",
		"A-500,C-501,Second Occurrence",
	}, "\n")

	lookups, err := svc.BuildLookups(ctx)
	require.NoError(t, err)

	summary, err := svc.Import(ctx, strings.NewReader(csv), lookups, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 0, summary.ErrorCount)
}

func TestImportIsIdempotent(t *testing.T) {
	svc, _, _ := newImportFixture(t)
	ctx := context.Background()

	csv := "academic_id,id_card_number,full_name\nA-700,C-700,Once Only\n"

	lookups, err := svc.BuildLookups(ctx)
	require.NoError(t, err)
	summary, err := svc.Import(ctx, strings.NewReader(csv), lookups, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)

	lookups, err = svc.BuildLookups(ctx)
	require.NoError(t, err)
	summary, err = svc.Import(ctx, strings.NewReader(csv), lookups, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 0, summary.Created)
	require.Equal(t, 1, summary.Skipped)
}

func TestImportRejectsMissingAcademicIDColumn(t *testing.T) {
	svc, _, _ := newImportFixture(t)
	ctx := context.Background()

	lookups, err := svc.BuildLookups(ctx)
	require.NoError(t, err)

	_, err = svc.Import(ctx, strings.NewReader("id_card_number,full_name\nC-1,No Header\n"), lookups, AuditActor{ID: 1}, RequestMeta{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "academic_id")
}

func TestImportHandlesBOMHeader(t *testing.T) {
	svc, db, _ := newImportFixture(t)
	ctx := context.Background()

	csv := "\ufeffacademic_id,id_card_number,full_name\nA-900,C-900,Bom Header\n"

	lookups, err := svc.BuildLookups(ctx)
	require.NoError(t, err)
	summary, err := svc.Import(ctx, strings.NewReader(csv), lookups, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("academic_id = ?", "A-900").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestImportCapsErrorPreview(t *testing.T) {
	svc, _, _ := newImportFixture(t)
	ctx := context.Background()

	var sb strings.Builder
	sb.WriteString("academic_id,id_card_number,full_name\n")
	for i := 0; i < 8; i++ {
		sb.WriteString(fmt.Sprintf("A-%d,,No Card %d\n", i, i))
	}

	lookups, err := svc.BuildLookups(ctx)
	require.NoError(t, err)
	summary, err := svc.Import(ctx, strings.NewReader(sb.String()), lookups, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 8, summary.ErrorCount)
	require.Len(t, summary.Errors, 5)
	require.Equal(t, 3, summary.MoreErrors)
}

func TestImportDefaultsRoleToStudent(t *testing.T) {
	svc, db, _ := newImportFixture(t)
	ctx := context.Background()

	csv := "academic_id,id_card_number,full_name\nA-800,C-800,Default Role\n"

	lookups, err := svc.BuildLookups(ctx)
	require.NoError(t, err)
	_, err = svc.Import(ctx, strings.NewReader(csv), lookups, AuditActor{ID: 1}, RequestMeta{})
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.Preload("Role").Where("academic_id = ?", "A-800").First(&user).Error)
	require.Equal(t, models.RoleStudent, user.Role.Code)
}
