package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := ListFilter{
		Entity:   c.Query("entity"),
		RecordID: c.Query("record_id"),
		Action:   c.Query("action"),
	}
	if actor := c.Query("actor_id"); actor != "" {
		filter.ActorID, _ = strconv.ParseInt(actor, 10, 64)
	}

	logs, total, err := ctrl.Service.ListLogs(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data":  logs,
		"total": total,
	})
}
