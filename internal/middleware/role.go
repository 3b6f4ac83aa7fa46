package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
)

// RequireRoles gates a whole route group on the caller's role.
func RequireRoles(allowed ...models.Role) fiber.Handler {
	rule := policy.RoleIs(allowed...)
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor == nil {
			return policy.Unauthorized("authentication required")
		}
		if !rule(actor, nil) {
			return policy.Forbidden("forbidden: insufficient role")
		}
		return c.Next()
	}
}
