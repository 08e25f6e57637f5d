package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/database"
	"github.com/langroom/api/utils/response"
)

// HandleCheckHealth reports liveness plus database reachability
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Database unreachable", "UNHEALTHY")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
