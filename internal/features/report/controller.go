package report

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/middleware"

	common_models "npo-crm/internal/common/models"
)

type ExportRequest struct {
	Definition ReportDefinition `json:"definition"`
	Format     string           `json:"format"`
}

type ReportController struct {
	Reports   ReportService
	Saved     SavedReportService
	Schedules ScheduleService
}

func NewReportController(reports ReportService, saved SavedReportService, schedules ScheduleService) *ReportController {
	return &ReportController{
		Reports:   reports,
		Saved:     saved,
		Schedules: schedules,
	}
}

func (c *ReportController) Generate(ctx *fiber.Ctx) error {
	var def ReportDefinition
	if err := ctx.BodyParser(&def); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}

	result, err := c.Reports.Generate(ctx.UserContext(), middleware.GetIdentity(ctx), def)
	if err != nil {
		return err
	}
	return ctx.JSON(result)
}

func (c *ReportController) Fields(ctx *fiber.Ctx) error {
	fields, err := c.Reports.Fields(ctx.Params("entity"))
	if err != nil {
		return err
	}
	return ctx.JSON(fields)
}

func (c *ReportController) Export(ctx *fiber.Ctx) error {
	var req ExportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}

	file, err := c.Reports.Export(ctx.UserContext(), middleware.GetIdentity(ctx), req.Definition, req.Format, "")
	if err != nil {
		return err
	}
	return sendFile(ctx, file)
}

func (c *ReportController) CreateSaved(ctx *fiber.Ctx) error {
	var req SaveReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}

	saved, err := c.Saved.Create(ctx.UserContext(), middleware.GetIdentity(ctx), req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(saved)
}

func (c *ReportController) ListSaved(ctx *fiber.Ctx) error {
	reports, err := c.Saved.List(ctx.UserContext(), middleware.GetIdentity(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(reports)
}

func (c *ReportController) GetSaved(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	saved, err := c.Saved.Get(ctx.UserContext(), middleware.GetIdentity(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(saved)
}

func (c *ReportController) UpdateSaved(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	var req SaveReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}

	saved, err := c.Saved.Update(ctx.UserContext(), middleware.GetIdentity(ctx), id, req)
	if err != nil {
		return err
	}
	return ctx.JSON(saved)
}

func (c *ReportController) DeleteSaved(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	if err := c.Saved.Delete(ctx.UserContext(), middleware.GetIdentity(ctx), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *ReportController) RunSaved(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	result, err := c.Saved.Run(ctx.UserContext(), middleware.GetIdentity(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(result)
}

func (c *ReportController) ExportSaved(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	format := ctx.Query("format", "csv")

	file, err := c.Saved.ExportSaved(ctx.UserContext(), middleware.GetIdentity(ctx), id, format)
	if err != nil {
		return err
	}
	return sendFile(ctx, file)
}

func (c *ReportController) Share(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	var req ShareRequest
	if err := ctx.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}

	share, err := c.Saved.Share(ctx.UserContext(), middleware.GetIdentity(ctx), id, req)
	if err != nil {
		return err
	}
	return ctx.JSON(share)
}

func (c *ReportController) Publish(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	token, err := c.Saved.Publish(ctx.UserContext(), middleware.GetIdentity(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"public_token": token})
}

func (c *ReportController) Revoke(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	if err := c.Saved.Revoke(ctx.UserContext(), middleware.GetIdentity(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"status": "revoked"})
}

func (c *ReportController) RunPublic(ctx *fiber.Ctx) error {
	result, err := c.Saved.RunPublic(ctx.UserContext(), ctx.Params("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(result)
}

func (c *ReportController) CreateSchedule(ctx *fiber.Ctx) error {
	var req ScheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}

	sched, err := c.Schedules.Create(ctx.UserContext(), middleware.GetIdentity(ctx), req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(sched)
}

func (c *ReportController) ListSchedules(ctx *fiber.Ctx) error {
	scheds, err := c.Schedules.List(ctx.UserContext(), middleware.GetIdentity(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(scheds)
}

func (c *ReportController) UpdateSchedule(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	var req ScheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}

	sched, err := c.Schedules.Update(ctx.UserContext(), middleware.GetIdentity(ctx), id, req)
	if err != nil {
		return err
	}
	return ctx.JSON(sched)
}

func (c *ReportController) DeleteSchedule(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	if err := c.Schedules.Delete(ctx.UserContext(), middleware.GetIdentity(ctx), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *ReportController) ListSnapshots(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))

	snaps, err := c.Schedules.Snapshots(ctx.UserContext(), middleware.GetIdentity(ctx), id, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(snaps)
}

func (c *ReportController) DownloadSnapshot(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	snap, payload, err := c.Schedules.Snapshot(ctx.UserContext(), middleware.GetIdentity(ctx), id)
	if err != nil {
		return err
	}
	if snap.Status != SnapshotCompleted {
		return common_models.NewBadRequest("Snapshot has no artifact")
	}

	contentType := mimeCSV
	ext := "csv"
	if snap.Format == string(FormatXLSX) {
		contentType = mimeXLSX
		ext = "xlsx"
	}
	ctx.Set("Content-Type", contentType)
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=snapshot_%d.%s", snap.ID, ext))
	return ctx.Send(payload)
}

func sendFile(ctx *fiber.Ctx, file *ExportFile) error {
	ctx.Set("Content-Type", file.ContentType)
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	return ctx.Send(file.Data)
}

func parseID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, common_models.NewBadRequest("Invalid id")
	}
	return id, nil
}
