package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/middleware"
	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// MenuHandler serves the permission-filtered navigation tree.
type MenuHandler struct {
	menu   service.MenuService
	logger zerolog.Logger
}

// NewMenuHandler constructs the handler.
func NewMenuHandler(menu service.MenuService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		menu:   menu,
		logger: logger.With().Str("component", "menu_handler").Logger(),
	}
}

// Register attaches the menu route to the router group.
func (h *MenuHandler) Register(router fiber.Router) {
	router.Get("", h.get)
}

func (h *MenuHandler) get(c *fiber.Ctx) error {
	set := middleware.PermissionSetFromRequest(c)
	entries := h.menu.Build(set, userRoleFromContext(c))

	response := fiber.Map{"entries": entries}
	if path := c.Query("active_for"); path != "" {
		response["active"] = h.menu.ActiveItem(path, entries)
	}

	return utils.SendSuccess(c, "menu retrieved", response)
}
