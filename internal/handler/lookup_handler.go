package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/repository"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// LookupHandler serves the reference entities used by filters and forms.
type LookupHandler struct {
	lookup repository.LookupRepository
	logger zerolog.Logger
}

// NewLookupHandler constructs the handler.
func NewLookupHandler(lookup repository.LookupRepository, logger zerolog.Logger) *LookupHandler {
	return &LookupHandler{
		lookup: lookup,
		logger: logger.With().Str("component", "lookup_handler").Logger(),
	}
}

// Register attaches lookup routes to the router group.
func (h *LookupHandler) Register(router fiber.Router) {
	router.Get("/majors", h.majors)
	router.Get("/levels", h.levels)
	router.Get("/semester", h.currentSemester)
}

func (h *LookupHandler) majors(c *fiber.Ctx) error {
	majors, err := h.lookup.ListMajors(c.UserContext(), c.QueryBool("active_only", true))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list majors")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list majors")
	}
	return utils.SendSuccess(c, "majors retrieved", majors)
}

func (h *LookupHandler) levels(c *fiber.Ctx) error {
	levels, err := h.lookup.ListLevels(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list levels")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list levels")
	}
	return utils.SendSuccess(c, "levels retrieved", levels)
}

func (h *LookupHandler) currentSemester(c *fiber.Ctx) error {
	semester, err := h.lookup.CurrentSemester(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load current semester")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load current semester")
	}
	return utils.SendSuccess(c, "current semester retrieved", semester)
}
