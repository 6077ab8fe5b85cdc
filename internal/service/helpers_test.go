package service

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{}, &models.Permission{}, &models.RolePermission{},
		&models.Major{}, &models.Level{}, &models.Semester{},
		&models.User{},
		&models.Course{}, &models.CourseMajor{}, &models.InstructorCourse{}, &models.LectureFile{},
		&models.AuditLog{}, &models.UserActivity{},
	))
	return db
}

// auditRecorderStub captures audit entries without touching storage.
type auditRecorderStub struct {
	entries []AuditEntry
}

func (a *auditRecorderStub) Record(_ context.Context, entry AuditEntry) {
	a.entries = append(a.entries, entry)
}

func seedRoles(t *testing.T, db *gorm.DB) map[string]models.Role {
	t.Helper()
	roles := map[string]models.Role{}
	for _, role := range []models.Role{
		{Code: models.RoleAdmin, DisplayName: "Administrator", IsSystem: true, IsActive: true},
		{Code: models.RoleInstructor, DisplayName: "Instructor", IsSystem: true, IsActive: true},
		{Code: models.RoleStudent, DisplayName: "Student", IsSystem: true, IsActive: true},
	} {
		record := role
		require.NoError(t, db.Create(&record).Error)
		roles[record.Code] = record
	}
	return roles
}
