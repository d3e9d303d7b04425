package donation

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

type DonationController struct {
	Donations DonationService
}

func NewDonationController(donations DonationService) *DonationController {
	return &DonationController{Donations: donations}
}

func (ctrl *DonationController) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := ListFilter{
		Method:   c.Query("method"),
		Campaign: c.Query("campaign"),
	}
	if raw := c.Query("account_id"); raw != "" {
		filter.AccountID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("contact_id"); raw != "" {
		filter.ContactID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("acknowledged"); raw != "" {
		v := raw == "true"
		filter.Acknowledged = &v
	}
	if raw := c.Query("received_from"); raw != "" {
		if t, err := parseDate(raw); err == nil {
			filter.ReceivedFrom = t
		}
	}
	if raw := c.Query("received_to"); raw != "" {
		if t, err := parseDate(raw); err == nil {
			filter.ReceivedTo = t
		}
	}

	donations, totals, err := ctrl.Donations.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":         donations,
		"total":        totals.Count,
		"total_amount": totals.Amount,
		"page":         page,
		"limit":        limit,
	})
}

func (ctrl *DonationController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	donation, err := ctrl.Donations.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(donation)
}

func (ctrl *DonationController) Create(c *fiber.Ctx) error {
	var req DonationRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	donation, err := ctrl.Donations.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(donation)
}

func (ctrl *DonationController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req DonationRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	donation, err := ctrl.Donations.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(donation)
}

func (ctrl *DonationController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := ctrl.Donations.Delete(c.UserContext(), id); err != nil {
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

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
