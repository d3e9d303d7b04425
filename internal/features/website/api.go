package website

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type PageApi struct {
	controller *PageController
	auth       *middleware.Authenticator
}

func NewPageApi(controller *PageController, auth *middleware.Authenticator) api.Route {
	return &PageApi{controller: controller, auth: auth}
}

func (h *PageApi) Setup(app *fiber.App) {
	// Published pages are served without a login.
	app.Get("/api/public/pages/:slug", h.controller.GetPublished)

	pages := app.Group("/api/pages", h.auth.Require())

	pages.Get("/", h.controller.List)
	pages.Post("/", h.controller.Create)
	pages.Get("/:id", h.controller.Get)
	pages.Put("/:id", h.controller.Update)
	pages.Post("/:id/publish", h.controller.Publish)
	pages.Post("/:id/unpublish", h.controller.Unpublish)
	pages.Delete("/:id", h.controller.Delete)
}
