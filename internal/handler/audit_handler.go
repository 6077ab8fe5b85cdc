package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// AuditHandler wires the audit trail query endpoint.
type AuditHandler struct {
	audit  service.AuditService
	logger zerolog.Logger
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(audit service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches audit routes to the router group.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	actorID, err := parseQueryUintPtr(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor filter")
	}

	req := dto.AuditListRequest{
		Page:      page,
		PageSize:  pageSize,
		Action:    c.Query("action"),
		ModelName: c.Query("model"),
	}
	if actorID != nil {
		req.ActorID = *actorID
	}

	response, err := h.audit.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list audit entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list audit entries")
	}

	return utils.SendSuccess(c, "audit entries retrieved", response)
}
