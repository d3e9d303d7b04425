package audit

import (
	"npo-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	auth       *middleware.Authenticator
}

func NewAuditApi(controller *AuditController, auth *middleware.Authenticator) *AuditApi {
	return &AuditApi{
		controller: controller,
		auth:       auth,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit", h.auth.Require(), middleware.AdminMiddleware())

	audit.Get("/", h.controller.ListLogs)
}
