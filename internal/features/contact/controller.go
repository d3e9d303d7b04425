package contact

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

type ContactController struct {
	Contacts ContactService
}

func NewContactController(contacts ContactService) *ContactController {
	return &ContactController{Contacts: contacts}
}

func (ctrl *ContactController) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := ListFilter{Search: c.Query("q")}
	if raw := c.Query("account_id"); raw != "" {
		filter.AccountID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("do_not_contact"); raw != "" {
		v := raw == "true"
		filter.DoNotContact = &v
	}

	contacts, total, err := ctrl.Contacts.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contacts, "total": total, "page": page, "limit": limit})
}

func (ctrl *ContactController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	contact, err := ctrl.Contacts.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(contact)
}

func (ctrl *ContactController) Create(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	contact, err := ctrl.Contacts.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

func (ctrl *ContactController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	contact, err := ctrl.Contacts.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(contact)
}

func (ctrl *ContactController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := ctrl.Contacts.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, common_models.NewBadRequest("Invalid id")
	}
	return id, nil
}
