package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/config"
	"github.com/sacm-dev/sacm-api/internal/handler"
	"github.com/sacm-dev/sacm-api/internal/middleware"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB                    *gorm.DB
	AdminUserHandler      *handler.AdminUserHandler
	RoleHandler           *handler.RoleHandler
	CourseHandler         *handler.CourseHandler
	LectureFileHandler    *handler.LectureFileHandler
	ReportHandler         *handler.ReportHandler
	AuditHandler          *handler.AuditHandler
	MenuHandler           *handler.MenuHandler
	LookupHandler         *handler.LookupHandler
	SeedHandler           *handler.SeedHandler
	JWTMiddleware         fiber.Handler
	PermissionsMiddleware fiber.Handler
	MetricsHandler        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))

	if deps.MetricsHandler != nil {
		app.Get("/metrics", deps.MetricsHandler)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed", middleware.RateLimit("seed", 3, time.Minute))
		deps.SeedHandler.Register(seed)
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	permissions := deps.PermissionsMiddleware
	if permissions == nil {
		permissions = func(c *fiber.Ctx) error { return c.Next() }
	}

	authed := api.Group("", jwtMiddleware, permissions)

	if deps.MenuHandler != nil {
		deps.MenuHandler.Register(authed.Group("/menu"))
	}
	if deps.LookupHandler != nil {
		deps.LookupHandler.Register(authed.Group("/lookups"))
	}
	if deps.CourseHandler != nil {
		courses := authed.Group("/courses", middleware.RequirePermission("view_courses"))
		deps.CourseHandler.Register(courses)
	}
	if deps.LectureFileHandler != nil {
		files := authed.Group("/files")
		deps.LectureFileHandler.Register(files)
	}

	admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin))

	if deps.AdminUserHandler != nil {
		users := admin.Group("/users", middleware.RequirePermission("view_users"))
		deps.AdminUserHandler.Register(users)
	}
	if deps.RoleHandler != nil {
		roles := admin.Group("/roles", middleware.RequirePermission("manage_roles"))
		deps.RoleHandler.Register(roles)
	}
	if deps.ReportHandler != nil {
		reports := admin.Group("/reports", middleware.RequirePermission("view_reports"))
		deps.ReportHandler.Register(reports)
	}
	if deps.AuditHandler != nil {
		audit := admin.Group("/audit-logs", middleware.RequirePermission("view_audit_logs"))
		deps.AuditHandler.Register(audit)
	}

	// Unmatched routes answer with the shared envelope, not fiber's default.
	app.Use(func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "resource not found")
	})
}
