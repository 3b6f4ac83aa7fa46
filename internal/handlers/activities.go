package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/activity"
	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/policy"
)

type ActivityHandler struct {
	DB         *gorm.DB
	Aggregator *activity.Aggregator
}

func NewActivityHandler(db *gorm.DB, limit int) *ActivityHandler {
	return &ActivityHandler{
		DB:         db,
		Aggregator: activity.NewAggregator(&activity.GormSource{DB: db}, limit),
	}
}

func (h *ActivityHandler) Routes(r fiber.Router) {
	r.Get("/activities", middleware.Authorize(policy.Activity, policy.Read, nil), h.Feed)
}

// Feed returns events newer than the caller's watermark, or the latest
// events regardless of it when all=true.
func (h *ActivityHandler) Feed(c *fiber.Ctx) error {
	all, err := strconv.ParseBool(c.Query("all", "false"))
	if err != nil {
		return policy.BadRequest("all must be true or false")
	}

	viewer, err := first[models.User](c.UserContext(), h.DB, actor(c).ID)
	if err != nil {
		return err
	}
	if viewer == nil {
		return policy.Unauthorized("user no longer exists")
	}

	events, err := h.Aggregator.Feed(c.UserContext(), viewer.ID, activity.Cutoff(viewer, all))
	if err != nil {
		return err
	}
	return ok(c, events)
}
