package middleware

import (
	"context"

	common_models "npo-crm/internal/common/models"
	"npo-crm/internal/config"
	"npo-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ScopeResolver derives the caller's row-level DataScopeFilter from stored
// grants. Implemented by the user feature's scope service.
type ScopeResolver interface {
	Resolve(ctx context.Context, userID int64, role string) (*common_models.DataScopeFilter, error)
}

// Authenticator validates JWT tokens and resolves the caller's data scope in
// one pass, so controllers never re-derive either.
type Authenticator struct {
	cfg    *config.Config
	scopes ScopeResolver
	log    *zap.Logger
}

func NewAuthenticator(cfg *config.Config, scopes ScopeResolver, log *zap.Logger) *Authenticator {
	return &Authenticator{cfg: cfg, scopes: scopes, log: log}
}

// Require returns the middleware applied to every protected route group.
func (a *Authenticator) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a.cfg.SkipAuth {
			// Inject an unrestricted dev identity
			setIdentity(c, &common_models.Identity{
				UserID: 1,
				Role:   common_models.RoleAdmin,
			})
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := utils.ValidateToken(authHeader[7:])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		scope, err := a.scopes.Resolve(c.Context(), claims.UserID, claims.Role)
		if err != nil {
			a.log.Error("scope resolution failed",
				zap.Int64("user_id", claims.UserID),
				zap.String("request_id", RequestID(c)),
				zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not resolve access scope",
			})
		}

		setIdentity(c, &common_models.Identity{
			UserID: claims.UserID,
			Role:   claims.Role,
			Scope:  scope,
		})
		return c.Next()
	}
}

// setIdentity stores the identity in fiber locals for handlers and in the
// user context for services that only see a context.Context.
func setIdentity(c *fiber.Ctx, identity *common_models.Identity) {
	c.Locals(string(common_models.IdentityKey), identity)
	ctx := context.WithValue(c.UserContext(), common_models.IdentityKey, identity)
	c.SetUserContext(ctx)
}

// GetIdentity returns the identity resolved by Require, or nil outside it.
func GetIdentity(c *fiber.Ctx) *common_models.Identity {
	id, _ := c.Locals(string(common_models.IdentityKey)).(*common_models.Identity)
	return id
}
