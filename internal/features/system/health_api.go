package system

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/database"
)

type HealthApi struct {
	db *database.PostgresDB
}

func NewHealthApi(db *database.PostgresDB) *HealthApi {
	return &HealthApi{db: db}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
}

func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	if err := h.db.DB.PingContext(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"database": "unreachable",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": "up",
	})
}
