package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminMiddleware gates routes that only admins may call (settings, audit,
// user scope management). Runs after Authenticator.Require.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := GetIdentity(c)
		if identity == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !strings.EqualFold(identity.Role, "admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: Admin role required",
			})
		}

		return c.Next()
	}
}
