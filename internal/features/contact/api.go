package contact

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type ContactApi struct {
	controller *ContactController
	auth       *middleware.Authenticator
}

func NewContactApi(controller *ContactController, auth *middleware.Authenticator) api.Route {
	return &ContactApi{controller: controller, auth: auth}
}

func (h *ContactApi) Setup(app *fiber.App) {
	contacts := app.Group("/api/contacts", h.auth.Require())

	contacts.Get("/", h.controller.List)
	contacts.Post("/", h.controller.Create)
	contacts.Get("/:id", h.controller.Get)
	contacts.Put("/:id", h.controller.Update)
	contacts.Delete("/:id", h.controller.Delete)
}
