package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/jakeunsted/pub/internal/handlers/ws"
)

// WebSocketHandler owns the change-feed hub. The feed is server-to-client
// only: clients hold the connection open and refetch whatever an event marks
// stale.
type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler() *WebSocketHandler {
	return &WebSocketHandler{hub: ws.NewHub()}
}

// GetHub returns the hub instance (used by other handlers to push events)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)

	h.hub.Register(userID, c)
	defer h.hub.Unregister(userID)

	// Drain the connection so control frames keep being processed. Any text
	// frames from the client are ignored.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	log.Printf("User %d disconnected from WebSocket", userID)
}
