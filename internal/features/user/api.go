package user

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type UserApi struct {
	controller *UserController
	auth       *middleware.Authenticator
}

func NewUserApi(controller *UserController, auth *middleware.Authenticator) api.Route {
	return &UserApi{controller: controller, auth: auth}
}

func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", h.auth.Require())

	users.Get("/", h.controller.ListUsers)
	users.Get("/:id", h.controller.GetUser)
	users.Put("/:id/scope", middleware.AdminMiddleware(), h.controller.UpdateScope)
}
