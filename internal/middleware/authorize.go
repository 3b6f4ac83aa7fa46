package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pilotify/pilotify-api/internal/policy"
)

const entityKey = "entity"

// Loader fetches the entity a request acts on. A nil entity with a nil
// error means it does not exist. Loaders may also return request errors
// such as a malformed id.
type Loader func(c *fiber.Ctx) (entity any, target *policy.Target, err error)

// Authorize applies policy.Table to the route before the handler runs.
// The loaded entity is available to the handler through Loaded.
func Authorize(res policy.Resource, act policy.Action, load Loader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor == nil && policy.RequiresActor(res, act) {
			return policy.Unauthorized("authentication required")
		}

		var target *policy.Target
		if load != nil {
			entity, t, err := load(c)
			if err != nil {
				return err
			}
			if entity != nil {
				c.Locals(entityKey, entity)
				target = t
			}
		}

		if err := policy.Evaluate(actor, res, act, target); err != nil {
			return err
		}
		return c.Next()
	}
}

func Loaded[T any](c *fiber.Ctx) *T {
	v, _ := c.Locals(entityKey).(*T)
	return v
}
