package middleware

import (
	"context"

	common_models "npo-crm/internal/common/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDMiddleware assigns each request a correlation id, reusing the
// client-provided X-Request-ID when present. The id is echoed on the
// response and attached to every error log for that request.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(string(common_models.RequestIDKey), id)
		ctx := context.WithValue(c.UserContext(), common_models.RequestIDKey, id)
		c.SetUserContext(ctx)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// RequestID returns the correlation id for the current request.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(string(common_models.RequestIDKey)).(string)
	return id
}
