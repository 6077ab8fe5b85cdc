package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// RoleHandler wires role and permission management endpoints.
type RoleHandler struct {
	roles  service.RoleService
	logger zerolog.Logger
}

// NewRoleHandler constructs the handler.
func NewRoleHandler(roles service.RoleService, logger zerolog.Logger) *RoleHandler {
	return &RoleHandler{
		roles:  roles,
		logger: logger.With().Str("component", "role_handler").Logger(),
	}
}

// Register attaches role admin routes to the router group.
func (h *RoleHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/permissions", h.permissions)
	router.Put("/:id/permissions", h.replacePermissions)
}

func (h *RoleHandler) list(c *fiber.Ctx) error {
	roles, err := h.roles.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list roles")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list roles")
	}

	return utils.SendSuccess(c, "roles retrieved", roles)
}

func (h *RoleHandler) create(c *fiber.Ctx) error {
	var payload dto.RoleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	role, err := h.roles.Create(c.UserContext(), payload, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create role")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create role")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "role created", role)
}

func (h *RoleHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.RoleUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	role, err := h.roles.Update(c.UserContext(), id, payload, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "role not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update role")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update role")
		}
	}

	return utils.SendSuccess(c, "role updated", role)
}

func (h *RoleHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	err = h.roles.Delete(c.UserContext(), id, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "role not found")
		case errors.Is(err, service.ErrSystemRoleImmutable):
			return utils.SendError(c, fiber.StatusForbidden, "system roles cannot be deleted")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete role")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete role")
		}
	}

	return utils.SendSuccess(c, "role deleted", nil)
}

func (h *RoleHandler) permissions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	response, err := h.roles.Permissions(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrRoleNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "role not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load role permissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load role permissions")
	}

	return utils.SendSuccess(c, "role permissions retrieved", response)
}

func (h *RoleHandler) replacePermissions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.RolePermissionsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.roles.ReplacePermissions(c.UserContext(), id, payload, auditActorFromContext(c), requestMetaFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "role not found")
		case errors.Is(err, service.ErrUnknownPermissions):
			return utils.SendError(c, fiber.StatusBadRequest, "request references unknown permissions")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to replace role permissions")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to replace role permissions")
		}
	}

	return utils.SendSuccess(c, "role permissions updated", response)
}
