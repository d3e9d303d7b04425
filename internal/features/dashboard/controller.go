package dashboard

import (
	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

type DashboardController struct {
	Dashboards DashboardService
}

func NewDashboardController(dashboards DashboardService) *DashboardController {
	return &DashboardController{Dashboards: dashboards}
}

func (ctrl *DashboardController) Summary(c *fiber.Ctx) error {
	summary, err := ctrl.Dashboards.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func (ctrl *DashboardController) GetConfig(c *fiber.Ctx) error {
	config, err := ctrl.Dashboards.GetConfig(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(config)
}

func (ctrl *DashboardController) SaveConfig(c *fiber.Ctx) error {
	var req ConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	config, err := ctrl.Dashboards.SaveConfig(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(config)
}
