package auth

import (
	"github.com/gofiber/fiber/v2"

	"standbill_backend/internals/constants"
	helperAuth "standbill_backend/internals/helpers/auth"
	"standbill_backend/internals/helpers/logger"
)

// RequireAction gates a route with the role → action policy.
func RequireAction(action constants.Action) fiber.Handler {
	log := logger.WithComponent("authz")
	return func(c *fiber.Ctx) error {
		role := helperAuth.GetRole(c)
		if role == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		if !constants.IsAuthorized(action, role) {
			log.Debug().Str("role", role).Str("action", string(action)).Msg("forbidden")
			return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorAction(role, action))
		}
		return c.Next()
	}
}
