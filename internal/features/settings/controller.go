package settings

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

type SettingsController struct {
	Settings SettingsService
}

func NewSettingsController(settings SettingsService) *SettingsController {
	return &SettingsController{Settings: settings}
}

func (ctrl *SettingsController) List(c *fiber.Ctx) error {
	settings, err := ctrl.Settings.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settings})
}

func (ctrl *SettingsController) Get(c *fiber.Ctx) error {
	setting, err := ctrl.Settings.Get(c.UserContext(), c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(setting)
}

func (ctrl *SettingsController) Put(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return common_models.NewBadRequest("Invalid request body")
	}
	value := make(json.RawMessage, len(body))
	copy(value, body)

	setting, err := ctrl.Settings.Put(c.UserContext(), c.Params("key"), value)
	if err != nil {
		return err
	}
	return c.JSON(setting)
}
