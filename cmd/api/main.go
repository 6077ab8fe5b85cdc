package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/config"
	"github.com/sacm-dev/sacm-api/internal/database"
	"github.com/sacm-dev/sacm-api/internal/handler"
	"github.com/sacm-dev/sacm-api/internal/middleware"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/observability"
	"github.com/sacm-dev/sacm-api/internal/repository"
	"github.com/sacm-dev/sacm-api/internal/router"
	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
	cloud "github.com/sacm-dev/sacm-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Role{}, &models.Permission{}, &models.RolePermission{},
		&models.Major{}, &models.Level{}, &models.Semester{},
		&models.User{},
		&models.Course{}, &models.CourseMajor{}, &models.InstructorCourse{}, &models.LectureFile{},
		&models.AuditLog{}, &models.UserActivity{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	fileRepo := repository.NewLectureFileRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	activityRepo := repository.NewUserActivityRepository(db)
	reportRepo := repository.NewReportRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	permissionService := service.NewPermissionService(userRepo, roleRepo, logger)
	menuService := service.NewMenuService(nil, logger)
	userService := service.NewUserService(userRepo, activityRepo, fileRepo, courseRepo, validate, auditService, logger)
	importService := service.NewImportService(userRepo, roleRepo, lookupRepo, auditService, logger)
	promotionService := service.NewPromotionService(userRepo, lookupRepo, validate, auditService, logger)
	roleService := service.NewRoleService(roleRepo, permissionRepo, validate, auditService, logger)
	courseService := service.NewCourseService(courseRepo, userRepo, validate, auditService, logger)
	fileService := service.NewLectureFileService(fileRepo, courseRepo, activityRepo, uploader, validate, auditService, cfg.MaxUploadMB, logger)
	reportService := service.NewReportService(reportRepo, lookupRepo, redisClient, cfg.DashboardCacheTTL, logger)
	seedService := service.NewSeedService(roleRepo, permissionRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: utils.ErrorHandler,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DB:                    db,
		AdminUserHandler:      handler.NewAdminUserHandler(userService, importService, promotionService, logger),
		RoleHandler:           handler.NewRoleHandler(roleService, logger),
		CourseHandler:         handler.NewCourseHandler(courseService, logger),
		LectureFileHandler:    handler.NewLectureFileHandler(fileService, logger),
		ReportHandler:         handler.NewReportHandler(reportService, logger),
		AuditHandler:          handler.NewAuditHandler(auditService, logger),
		MenuHandler:           handler.NewMenuHandler(menuService, logger),
		LookupHandler:         handler.NewLookupHandler(lookupRepo, logger),
		SeedHandler:           handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
		PermissionsMiddleware: middleware.ResolvePermissions(permissionService, logger),
		MetricsHandler:        observability.MetricsHandler(),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
