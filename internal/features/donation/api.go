package donation

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type DonationApi struct {
	controller *DonationController
	auth       *middleware.Authenticator
}

func NewDonationApi(controller *DonationController, auth *middleware.Authenticator) api.Route {
	return &DonationApi{controller: controller, auth: auth}
}

func (h *DonationApi) Setup(app *fiber.App) {
	donations := app.Group("/api/donations", h.auth.Require())

	donations.Get("/", h.controller.List)
	donations.Post("/", h.controller.Create)
	donations.Get("/:id", h.controller.Get)
	donations.Put("/:id", h.controller.Update)
	donations.Delete("/:id", h.controller.Delete)
}
