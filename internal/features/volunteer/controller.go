package volunteer

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

type VolunteerController struct {
	Volunteers VolunteerService
}

func NewVolunteerController(volunteers VolunteerService) *VolunteerController {
	return &VolunteerController{Volunteers: volunteers}
}

func (ctrl *VolunteerController) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := ListFilter{
		Status: c.Query("status"),
		Search: c.Query("q"),
	}
	if raw := c.Query("contact_id"); raw != "" {
		filter.ContactID, _ = strconv.ParseInt(raw, 10, 64)
	}

	volunteers, total, err := ctrl.Volunteers.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": volunteers, "total": total, "page": page, "limit": limit})
}

func (ctrl *VolunteerController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	volunteer, err := ctrl.Volunteers.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(volunteer)
}

func (ctrl *VolunteerController) Create(c *fiber.Ctx) error {
	var req VolunteerRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	volunteer, err := ctrl.Volunteers.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(volunteer)
}

func (ctrl *VolunteerController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req VolunteerRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	volunteer, err := ctrl.Volunteers.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(volunteer)
}

func (ctrl *VolunteerController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := ctrl.Volunteers.Delete(c.UserContext(), id); err != nil {
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
