package meeting

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

type MeetingController struct {
	Meetings MeetingService
}

func NewMeetingController(meetings MeetingService) *MeetingController {
	return &MeetingController{Meetings: meetings}
}

func (ctrl *MeetingController) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := ListFilter{Search: c.Query("search")}
	if raw := c.Query("account_id"); raw != "" {
		filter.AccountID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("contact_id"); raw != "" {
		filter.ContactID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("organizer_id"); raw != "" {
		filter.OrganizerID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := parseDate(raw); err == nil {
			filter.From = t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := parseDate(raw); err == nil {
			filter.To = t
		}
	}

	meetings, total, err := ctrl.Meetings.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":  meetings,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (ctrl *MeetingController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	m, err := ctrl.Meetings.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

func (ctrl *MeetingController) Create(c *fiber.Ctx) error {
	var req MeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	m, err := ctrl.Meetings.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (ctrl *MeetingController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req MeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return common_models.NewBadRequest("Invalid request body")
	}
	m, err := ctrl.Meetings.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

func (ctrl *MeetingController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := ctrl.Meetings.Delete(c.UserContext(), id); err != nil {
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
