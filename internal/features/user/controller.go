package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"npo-crm/internal/middleware"

	common_models "npo-crm/internal/common/models"
)

type UserController struct {
	Users UserService
}

func NewUserController(users UserService) *UserController {
	return &UserController{Users: users}
}

func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := ListFilter{
		Role:   c.Query("role"),
		Search: c.Query("q"),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	users, total, err := ctrl.Users.ListUsers(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":  users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	// Grant rows are visible to admins and to the user themself.
	identity := middleware.GetIdentity(c)
	includeScope := identity != nil && (identity.IsAdmin() || identity.UserID == id)

	profile, err := ctrl.Users.GetUser(c.UserContext(), id, includeScope)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

func (ctrl *UserController) UpdateScope(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req UpdateScopeRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}

	grant, err := ctrl.Users.UpdateScope(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(grant)
}

func parseUserID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, common_models.NewBadRequest("Invalid id")
	}
	return id, nil
}
