package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	common_models "npo-crm/internal/common/models"
)

// Fail writes the shared error body: { "error": message, "code": code }.
func Fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

// Error translates an error into the shared error body. Typed AppErrors keep
// their status, code and field detail; anything else propagates to the app's
// generic error handler so it gets logged with the request id.
func Error(c *fiber.Ctx, err error) error {
	var appErr *common_models.AppError
	if errors.As(err, &appErr) {
		body := fiber.Map{
			"error": appErr.Message,
			"code":  appErr.Code,
		}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		return c.Status(appErr.Status).JSON(body)
	}
	return err
}
