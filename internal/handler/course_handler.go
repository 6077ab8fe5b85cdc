package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/middleware"
	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// CourseHandler wires catalog endpoints.
type CourseHandler struct {
	courses service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(courses service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses: courses,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course routes to the router group. Catalog mutations are
// reserved for actors holding manage_courses.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.RequirePermission("manage_courses"), h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", middleware.RequirePermission("manage_courses"), h.update)
	router.Post("/:id/instructors/:instructorId", middleware.RequirePermission("manage_courses"), h.assignInstructor)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	majorID, err := parseQueryUintPtr(c, "major_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid major filter")
	}

	activeOnly := true
	if raw := strings.TrimSpace(c.Query("active_only")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid active filter")
		}
		activeOnly = parsed
	}

	req := dto.CourseListRequest{
		Page:       page,
		PageSize:   pageSize,
		Search:     c.Query("search"),
		ActiveOnly: activeOnly,
		MajorID:    majorID,
	}

	response, err := h.courses.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list courses")
	}

	return utils.SendSuccess(c, "courses retrieved", response)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	course, err := h.courses.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch course")
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	course, err := h.courses.Create(c.UserContext(), payload, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create course")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	course, err := h.courses.Update(c.UserContext(), id, payload, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update course")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update course")
		}
	}

	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) assignInstructor(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course identifier")
	}
	instructorID, err := parseUintParam(c, "instructorId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid instructor identifier")
	}

	err = h.courses.AssignInstructor(c.UserContext(), courseID, instructorID, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "instructor not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to assign instructor")
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	return utils.SendSuccess(c, "instructor assigned", nil)
}
