package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

// SeedHandler wires the token-guarded seed endpoint.
type SeedHandler struct {
	seeder service.SeedService
	logger zerolog.Logger
}

// NewSeedHandler constructs the handler.
func NewSeedHandler(seeder service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		seeder: seeder,
		logger: logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register attaches the seed route to the router group.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("", h.seed)
}

func (h *SeedHandler) seed(c *fiber.Ctx) error {
	var payload struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	report, err := h.seeder.Seed(c.UserContext(), payload.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "seeding is disabled")
		case errors.Is(err, service.ErrSeedTokenMismatch):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid seed token")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("seed run failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "seed run failed")
		}
	}

	return utils.SendSuccess(c, "seed completed", report)
}
