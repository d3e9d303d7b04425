package website

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

type PageController struct {
	Pages PageService
}

func NewPageController(pages PageService) *PageController {
	return &PageController{Pages: pages}
}

func (ctrl *PageController) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := ListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	pages, total, err := ctrl.Pages.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":  pages,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (ctrl *PageController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := ctrl.Pages.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (ctrl *PageController) GetPublished(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return common_models.NewBadRequest("Invalid slug")
	}
	p, err := ctrl.Pages.GetPublished(c.UserContext(), slug)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (ctrl *PageController) Create(c *fiber.Ctx) error {
	var req PageRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	p, err := ctrl.Pages.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (ctrl *PageController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req PageRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	p, err := ctrl.Pages.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (ctrl *PageController) Publish(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := ctrl.Pages.Publish(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (ctrl *PageController) Unpublish(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := ctrl.Pages.Unpublish(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (ctrl *PageController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := ctrl.Pages.Delete(c.UserContext(), id); err != nil {
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
