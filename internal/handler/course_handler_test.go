package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/authz"
	"github.com/sacm-dev/sacm-api/internal/middleware"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

type stubPermissions struct {
	set authz.PermissionSet
}

func (s stubPermissions) Resolve(_ context.Context, _ uint) (authz.PermissionSet, error) {
	return s.set, nil
}

func (s stubPermissions) ResolveRole(_ context.Context, _ uint) (authz.PermissionSet, error) {
	return s.set, nil
}

type auditSink struct{}

func (auditSink) Record(_ context.Context, _ service.AuditEntry) {}

func catalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{}, &models.User{},
		&models.Course{}, &models.CourseMajor{}, &models.InstructorCourse{},
	))
	return db
}

// newCatalogApp wires the course routes behind the same permission chain the
// router uses, with the actor's resolved set fixed by the stub.
func newCatalogApp(t *testing.T, db *gorm.DB, role string, set authz.PermissionSet) *fiber.App {
	t.Helper()
	discard := zerolog.New(io.Discard)

	svc := service.NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		auditSink{},
		discard,
	)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(5))
		c.Locals("user_role", role)
		return c.Next()
	})
	app.Use(middleware.ResolvePermissions(stubPermissions{set: set}, discard))

	group := app.Group("/courses", middleware.RequirePermission("view_courses"))
	NewCourseHandler(svc, discard).Register(group)

	return app
}

func TestCourseCreateForbiddenWithoutManagePermission(t *testing.T) {
	db := catalogTestDB(t)
	app := newCatalogApp(t, db, "student", authz.Restricted("view_courses", "download_files"))

	body := strings.NewReader(`{"course_code":"CS200","course_name":"Data Structures"}`)
	req := httptest.NewRequest("POST", "/courses", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var payload utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.False(t, payload.Success)

	var count int64
	require.NoError(t, db.Model(&models.Course{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestCourseCreateAllowedForAdmin(t *testing.T) {
	db := catalogTestDB(t)
	app := newCatalogApp(t, db, "admin", authz.Unrestricted())

	body := strings.NewReader(`{"course_code":"CS200","course_name":"Data Structures"}`)
	req := httptest.NewRequest("POST", "/courses", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Course{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCourseListAllowedForStudent(t *testing.T) {
	db := catalogTestDB(t)
	app := newCatalogApp(t, db, "student", authz.Restricted("view_courses"))

	resp, err := app.Test(httptest.NewRequest("GET", "/courses", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCourseRoutesDeniedWithoutViewPermission(t *testing.T) {
	db := catalogTestDB(t)
	app := newCatalogApp(t, db, "", authz.Empty())

	resp, err := app.Test(httptest.NewRequest("GET", "/courses", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
