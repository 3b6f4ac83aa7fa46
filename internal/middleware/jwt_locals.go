package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
	"github.com/pilotify/pilotify-api/internal/utils"
)

const actorKey = "actor"

// AttachIdentity turns verified claims into a *policy.Actor. Requests
// without claims pass through anonymous.
func AttachIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(claimsKey).(*utils.Claims)
		if !ok || claims == nil {
			return c.Next()
		}

		uid, err := uuid.Parse(strings.TrimSpace(claims.UserID))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		role := models.Role(strings.ToUpper(strings.TrimSpace(claims.Role)))
		if !role.Valid() {
			return fiber.ErrUnauthorized
		}

		c.Locals(actorKey, &policy.Actor{ID: uid, Role: role})
		c.Locals("userId", uid.String())
		c.Locals("role", string(role))
		return c.Next()
	}
}

// ActorFrom returns the authenticated caller or nil.
func ActorFrom(c *fiber.Ctx) *policy.Actor {
	a, _ := c.Locals(actorKey).(*policy.Actor)
	return a
}
