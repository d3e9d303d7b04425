package report

import (
	"npo-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	Controller *ReportController
	Auth       *middleware.Authenticator
}

func NewReportApi(controller *ReportController, auth *middleware.Authenticator) *ReportApi {
	return &ReportApi{
		Controller: controller,
		Auth:       auth,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	// Registered before the authenticated group so published reports
	// stay reachable without a login.
	app.Get("/api/reports/public/:token", api.Controller.RunPublic)

	group := app.Group("/api/reports", api.Auth.Require())

	group.Post("/generate", api.Controller.Generate)
	group.Get("/fields/:entity", api.Controller.Fields)
	group.Post("/export", api.Controller.Export)

	saved := group.Group("/saved")
	saved.Post("/", api.Controller.CreateSaved)
	saved.Get("/", api.Controller.ListSaved)
	saved.Get("/:id", api.Controller.GetSaved)
	saved.Put("/:id", api.Controller.UpdateSaved)
	saved.Delete("/:id", api.Controller.DeleteSaved)
	saved.Post("/:id/run", api.Controller.RunSaved)
	saved.Post("/:id/export", api.Controller.ExportSaved)
	saved.Post("/:id/share", api.Controller.Share)
	saved.Post("/:id/publish", api.Controller.Publish)
	saved.Post("/:id/revoke", api.Controller.Revoke)

	schedules := group.Group("/schedules")
	schedules.Post("/", api.Controller.CreateSchedule)
	schedules.Get("/", api.Controller.ListSchedules)
	schedules.Put("/:id", api.Controller.UpdateSchedule)
	schedules.Delete("/:id", api.Controller.DeleteSchedule)
	schedules.Get("/:id/snapshots", api.Controller.ListSnapshots)

	group.Get("/snapshots/:id/download", api.Controller.DownloadSnapshot)
}
