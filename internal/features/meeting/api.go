package meeting

import (
	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/common/api"
	"npo-crm/internal/middleware"
)

type MeetingApi struct {
	controller *MeetingController
	auth       *middleware.Authenticator
}

func NewMeetingApi(controller *MeetingController, auth *middleware.Authenticator) api.Route {
	return &MeetingApi{controller: controller, auth: auth}
}

func (h *MeetingApi) Setup(app *fiber.App) {
	meetings := app.Group("/api/meetings", h.auth.Require())

	meetings.Get("/", h.controller.List)
	meetings.Post("/", h.controller.Create)
	meetings.Get("/:id", h.controller.Get)
	meetings.Put("/:id", h.controller.Update)
	meetings.Delete("/:id", h.controller.Delete)
}
