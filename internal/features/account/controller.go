package account

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

type AccountController struct {
	Accounts AccountService
}

func NewAccountController(accounts AccountService) *AccountController {
	return &AccountController{Accounts: accounts}
}

func (ctrl *AccountController) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := ListFilter{
		Type:   c.Query("type"),
		Search: c.Query("q"),
		City:   c.Query("city"),
		State:  c.Query("state"),
	}

	accounts, total, err := ctrl.Accounts.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accounts, "total": total, "page": page, "limit": limit})
}

func (ctrl *AccountController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	account, err := ctrl.Accounts.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func (ctrl *AccountController) Create(c *fiber.Ctx) error {
	var req AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	account, err := ctrl.Accounts.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

func (ctrl *AccountController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	account, err := ctrl.Accounts.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func (ctrl *AccountController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := ctrl.Accounts.Delete(c.UserContext(), id); err != nil {
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
