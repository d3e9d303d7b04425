package settings

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type SettingsApi struct {
	controller *SettingsController
	auth       *middleware.Authenticator
}

func NewSettingsApi(controller *SettingsController, auth *middleware.Authenticator) api.Route {
	return &SettingsApi{controller: controller, auth: auth}
}

func (h *SettingsApi) Setup(app *fiber.App) {
	settings := app.Group("/api/settings", h.auth.Require())

	settings.Get("/", h.controller.List)
	settings.Get("/:key", h.controller.Get)
	settings.Put("/:key", middleware.AdminMiddleware(), h.controller.Put)
}
