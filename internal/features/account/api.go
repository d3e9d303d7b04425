package account

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type AccountApi struct {
	controller *AccountController
	auth       *middleware.Authenticator
}

func NewAccountApi(controller *AccountController, auth *middleware.Authenticator) api.Route {
	return &AccountApi{controller: controller, auth: auth}
}

func (h *AccountApi) Setup(app *fiber.App) {
	accounts := app.Group("/api/accounts", h.auth.Require())

	accounts.Get("/", h.controller.List)
	accounts.Post("/", h.controller.Create)
	accounts.Get("/:id", h.controller.Get)
	accounts.Put("/:id", h.controller.Update)
	accounts.Delete("/:id", h.controller.Delete)
}
