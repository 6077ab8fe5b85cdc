package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/config"
)

func TestHealthCheckReportsDatabaseUp(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:health_up?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/health", HealthCheck(config.Config{AppName: "test", AppEnv: "test"}, db))

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "ok", payload.Status)
	require.Equal(t, "up", payload.Database)
}

func TestHealthCheckDegradesWithoutDatabase(t *testing.T) {
	app := fiber.New()
	app.Get("/health", HealthCheck(config.Config{AppName: "test"}, nil))

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var payload HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "degraded", payload.Status)
	require.Equal(t, "down", payload.Database)
}
