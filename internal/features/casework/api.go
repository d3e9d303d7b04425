package casework

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type CaseApi struct {
	controller *CaseController
	auth       *middleware.Authenticator
}

func NewCaseApi(controller *CaseController, auth *middleware.Authenticator) api.Route {
	return &CaseApi{controller: controller, auth: auth}
}

func (h *CaseApi) Setup(app *fiber.App) {
	cases := app.Group("/api/cases", h.auth.Require())

	cases.Get("/", h.controller.List)
	cases.Post("/", h.controller.Create)
	cases.Get("/:id", h.controller.Get)
	cases.Put("/:id", h.controller.Update)
	cases.Post("/:id/close", h.controller.Close)
	cases.Delete("/:id", h.controller.Delete)
}
