package realtime

import (
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// WebSocketConn wraps websocket.Conn so the hub does not depend on it.
type WebSocketConn struct {
	Conn *websocket.Conn
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{Conn: c}
}

// Pump writes queued messages until the client's Send channel is closed
// and reads (discarding) client frames until the socket fails. It returns
// when the read side ends.
func (h *Hub) Pump(client *Client) {
	h.RegisterClient(client)
	defer h.UnregisterClient(client)

	c := client.Conn.Conn
	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug("websocket write", zap.Error(err))
				return
			}
		}
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
