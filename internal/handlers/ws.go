package handlers

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/pilotify/pilotify-api/internal/middleware"
	"github.com/pilotify/pilotify-api/internal/realtime"
)

const streamUserKey = "streamUser"

// StreamHandler upgrades authenticated requests to a websocket that
// receives the caller's feed notices.
type StreamHandler struct {
	Hub *realtime.Hub
}

func NewStreamHandler(hub *realtime.Hub) *StreamHandler {
	return &StreamHandler{Hub: hub}
}

// Routes mounts the stream behind guard, which must authenticate the
// caller (JWTFromCookie followed by AttachIdentity).
func (h *StreamHandler) Routes(r fiber.Router, guard ...fiber.Handler) {
	chain := slices.Concat(guard, []fiber.Handler{h.upgrade, websocket.New(h.serve)})
	r.Get("/ws/activities", chain...)
}

func (h *StreamHandler) upgrade(c *fiber.Ctx) error {
	a := middleware.ActorFrom(c)
	if a == nil {
		return fiber.ErrUnauthorized
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(streamUserKey, a.ID)
	return c.Next()
}

func (h *StreamHandler) serve(conn *websocket.Conn) {
	uid, ok := conn.Locals(streamUserKey).(uuid.UUID)
	if !ok {
		_ = conn.Close()
		return
	}
	h.Hub.Pump(realtime.NewClient(uid, realtime.NewWebSocketConn(conn)))
}
