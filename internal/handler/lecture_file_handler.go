package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/middleware"
	"github.com/sacm-dev/sacm-api/internal/repository"
	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// LectureFileHandler wires lecture content endpoints.
type LectureFileHandler struct {
	files  service.LectureFileService
	logger zerolog.Logger
}

// NewLectureFileHandler constructs the handler.
func NewLectureFileHandler(files service.LectureFileService, logger zerolog.Logger) *LectureFileHandler {
	return &LectureFileHandler{
		files:  files,
		logger: logger.With().Str("component", "lecture_file_handler").Logger(),
	}
}

// Register attaches lecture file routes to the router group. Content
// mutations require the file permissions; downloads require download_files.
// The course-instructor ownership rule is enforced in the service.
func (h *LectureFileHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/mine", h.mine)
	router.Post("/upload", middleware.RequirePermission("upload_files"), h.upload)
	router.Post("/link", middleware.RequirePermission("upload_files"), h.createLink)
	router.Post("/:id/visibility", middleware.RequirePermission("manage_files"), h.setVisibility)
	router.Delete("/:id", middleware.RequirePermission("manage_files"), h.delete)
	router.Get("/:id/download", middleware.RequirePermission("download_files"), h.download)
}

func (h *LectureFileHandler) list(c *fiber.Ctx) error {
	courseID, err := parseQueryUintPtr(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course filter")
	}

	filter := repository.LectureFileFilter{
		CourseID:    courseID,
		VisibleOnly: true,
	}

	files, err := h.files.List(c.UserContext(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list lecture files")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list lecture files")
	}

	return utils.SendSuccess(c, "lecture files retrieved", files)
}

func (h *LectureFileHandler) mine(c *fiber.Ctx) error {
	uploaderID := userIDFromContext(c)
	if uploaderID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	files, err := h.files.List(c.UserContext(), repository.LectureFileFilter{UploaderID: &uploaderID})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list own lecture files")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list lecture files")
	}

	return utils.SendSuccess(c, "lecture files retrieved", files)
}

func (h *LectureFileHandler) upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	courseID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("course_id")), 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course identifier")
	}

	req := dto.LectureFileUploadRequest{
		CourseID:    uint(courseID),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	response, err := h.files.Upload(c.UserContext(), req, fileHeader.Filename, fileHeader.Size, file, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case errors.Is(err, service.ErrFileTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrNotCourseInstructor):
			return utils.SendError(c, fiber.StatusForbidden, "you do not manage this course")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("lecture file upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "upload failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lecture file uploaded", response)
}

func (h *LectureFileHandler) createLink(c *fiber.Ctx) error {
	var payload dto.LectureLinkCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.files.CreateLink(c.UserContext(), payload, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case errors.Is(err, service.ErrNotCourseInstructor):
			return utils.SendError(c, fiber.StatusForbidden, "you do not manage this course")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create lecture link")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create lecture link")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lecture link created", response)
}

func (h *LectureFileHandler) setVisibility(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload struct {
		Visible bool `json:"visible"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.files.SetVisibility(c.UserContext(), id, payload.Visible, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "lecture file not found")
		case errors.Is(err, service.ErrNotCourseInstructor):
			return utils.SendError(c, fiber.StatusForbidden, "you do not manage this course")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to change file visibility")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to change file visibility")
		}
	}

	return utils.SendSuccess(c, "visibility updated", response)
}

func (h *LectureFileHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.files.Delete(c.UserContext(), id, auditActorFromContext(c), requestMetaFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrFileNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "lecture file not found")
		case errors.Is(err, service.ErrNotCourseInstructor):
			return utils.SendError(c, fiber.StatusForbidden, "you do not manage this course")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete lecture file")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete lecture file")
		}
	}

	return utils.SendSuccess(c, "lecture file deleted", nil)
}

func (h *LectureFileHandler) download(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	file, err := h.files.Download(c.UserContext(), id, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "lecture file not found")
		case errors.Is(err, service.ErrFileNotVisible):
			return utils.SendError(c, fiber.StatusForbidden, "lecture file is not available")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to resolve download")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve download")
		}
	}

	target := file.FileURL
	if target == "" {
		target = file.ExternalLink
	}

	return c.Redirect(target, fiber.StatusFound)
}
