package casework

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

type CaseController struct {
	Cases CaseService
}

func NewCaseController(cases CaseService) *CaseController {
	return &CaseController{Cases: cases}
}

func (ctrl *CaseController) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := ListFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("account_id"); raw != "" {
		filter.AccountID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("contact_id"); raw != "" {
		filter.ContactID, _ = strconv.ParseInt(raw, 10, 64)
	}

	cases, total, err := ctrl.Cases.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":  cases,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (ctrl *CaseController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	cs, err := ctrl.Cases.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(cs)
}

func (ctrl *CaseController) Create(c *fiber.Ctx) error {
	var req CaseRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	cs, err := ctrl.Cases.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cs)
}

func (ctrl *CaseController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req CaseRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	cs, err := ctrl.Cases.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(cs)
}

func (ctrl *CaseController) Close(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	cs, err := ctrl.Cases.Close(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(cs)
}

func (ctrl *CaseController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := ctrl.Cases.Delete(c.UserContext(), id); err != nil {
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
