package volunteer

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type VolunteerApi struct {
	controller *VolunteerController
	auth       *middleware.Authenticator
}

func NewVolunteerApi(controller *VolunteerController, auth *middleware.Authenticator) api.Route {
	return &VolunteerApi{controller: controller, auth: auth}
}

func (h *VolunteerApi) Setup(app *fiber.App) {
	volunteers := app.Group("/api/volunteers", h.auth.Require())

	volunteers.Get("/", h.controller.List)
	volunteers.Post("/", h.controller.Create)
	volunteers.Get("/:id", h.controller.Get)
	volunteers.Put("/:id", h.controller.Update)
	volunteers.Delete("/:id", h.controller.Delete)
}
