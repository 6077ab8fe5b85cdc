package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// ReportHandler wires the dashboard and export endpoints.
type ReportHandler struct {
	reports service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches report routes to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/export/users", h.exportCSV(h.reports.ExportUsersCSV, "users"))
	router.Get("/export/courses", h.exportCSV(h.reports.ExportCoursesCSV, "courses"))
	router.Get("/export/files", h.exportCSV(h.reports.ExportFilesCSV, "files"))
	router.Get("/export/activity", h.exportCSV(h.reports.ExportActivityCSV, "activity"))
}

func (h *ReportHandler) dashboard(c *fiber.Ctx) error {
	stats, err := h.reports.Dashboard(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build dashboard")
	}

	return utils.SendSuccess(c, "dashboard retrieved", stats)
}

func (h *ReportHandler) exportCSV(fn func(ctx context.Context) ([]byte, error), name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, err := fn(c.UserContext())
		if err != nil {
			requestLogger(h.logger, c).Error().Err(err).Str("export", name).Msg("export failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "export failed")
		}

		filename := name + "_" + time.Now().UTC().Format("20060102") + ".csv"
		return utils.SendCSV(c, filename, payload)
	}
}
