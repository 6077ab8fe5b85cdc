package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// AdminUserHandler wires admin user management endpoints, including bulk
// import and promotion batches.
type AdminUserHandler struct {
	users      service.UserService
	importer   service.ImportService
	promotions service.PromotionService
	logger     zerolog.Logger
}

// NewAdminUserHandler constructs the handler.
func NewAdminUserHandler(users service.UserService, importer service.ImportService, promotions service.PromotionService, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		users:      users,
		importer:   importer,
		promotions: promotions,
		logger:     logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

// Register attaches user admin routes to the router group.
func (h *AdminUserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/import", h.importCSV)
	router.Post("/promote", h.promote)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Post("/:id/suspend", h.suspend)
	router.Post("/:id/activate", h.activate)
}

func (h *AdminUserHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	roleID, err := parseQueryUintPtr(c, "role_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid role filter")
	}
	majorID, err := parseQueryUintPtr(c, "major_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid major filter")
	}
	levelID, err := parseQueryUintPtr(c, "level_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid level filter")
	}

	req := dto.UserListRequest{
		Page:     page,
		PageSize: pageSize,
		RoleID:   roleID,
		MajorID:  majorID,
		LevelID:  levelID,
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	}

	response, err := h.users.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", response)
}

func (h *AdminUserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch user")
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *AdminUserHandler) create(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.Create(c.UserContext(), payload, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user created", user)
}

func (h *AdminUserHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.Update(c.UserContext(), id, payload, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update user")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update user")
		}
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *AdminUserHandler) suspend(c *fiber.Ctx) error {
	return h.setStatus(c, h.users.Suspend, "user suspended")
}

func (h *AdminUserHandler) activate(c *fiber.Ctx) error {
	return h.setStatus(c, h.users.Activate, "user activated")
}

func (h *AdminUserHandler) setStatus(c *fiber.Ctx, fn func(ctx context.Context, id uint, actor service.AuditActor, meta service.RequestMeta) (dto.UserResponse, error), message string) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	user, err := fn(c.UserContext(), id, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to change account status")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to change account status")
	}

	return utils.SendSuccess(c, message, user)
}

func (h *AdminUserHandler) importCSV(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "csv file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	ctx := c.UserContext()
	lookups, err := h.importer.BuildLookups(ctx)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build import lookups")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to prepare import")
	}

	summary, err := h.importer.Import(ctx, file, lookups, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("bulk import failed")
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return utils.SendSuccess(c, "import completed", summary)
}

func (h *AdminUserHandler) promote(c *fiber.Ctx) error {
	var payload dto.PromotionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.promotions.Promote(c.UserContext(), payload, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLevelNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("promotion batch failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "promotion failed")
		}
	}

	return utils.SendSuccess(c, "promotion completed", result)
}
