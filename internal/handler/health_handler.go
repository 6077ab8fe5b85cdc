package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/config"
	"github.com/sacm-dev/sacm-api/internal/database"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck reports liveness and database connectivity. A failed database
// ping degrades the response to 503 so load balancers rotate the instance
// out, but the process keeps serving.
func HealthCheck(cfg config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Database:    "up",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}
		status := fiber.StatusOK

		if err := database.Ping(c.UserContext(), db); err != nil {
			payload.Status = "degraded"
			payload.Database = "down"
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(payload)
	}
}
