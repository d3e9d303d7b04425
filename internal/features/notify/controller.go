package notify

import (
	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

type WebSocketController struct {
	hub *Hub
	log *zap.Logger
}

func NewWebSocketController(hub *Hub, log *zap.Logger) *WebSocketController {
	return &WebSocketController{hub: hub, log: log}
}

// HandleWebSocket subscribes the connection to the hub and streams events
// until the client goes away. Inbound messages are read only to detect
// disconnects.
func (ctrl *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	cl := ctrl.hub.register()
	defer ctrl.hub.unregister(cl)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				ctrl.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}
