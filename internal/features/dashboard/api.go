package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type DashboardApi struct {
	controller *DashboardController
	auth       *middleware.Authenticator
}

func NewDashboardApi(controller *DashboardController, auth *middleware.Authenticator) api.Route {
	return &DashboardApi{controller: controller, auth: auth}
}

func (h *DashboardApi) Setup(app *fiber.App) {
	dashboard := app.Group("/api/dashboard", h.auth.Require())

	dashboard.Get("/summary", h.controller.Summary)
	dashboard.Get("/config", h.controller.GetConfig)
	dashboard.Put("/config", h.controller.SaveConfig)
}
