package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// WebSocketHandler handles WebSocket connections and manages event routing
type WebSocketHandler struct {
	hub               *Hub
	simulationHandler EventHandler
	pricingHandler    EventHandler
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler() *WebSocketHandler {
	hub := NewHub()
	go hub.Run()

	return &WebSocketHandler{
		hub: hub,
	}
}

// SetHandlers sets the event handlers for simulation and pricing events
func (wh *WebSocketHandler) SetHandlers(simulationHandler EventHandler, pricingHandler EventHandler) {
	wh.simulationHandler = simulationHandler
	wh.pricingHandler = pricingHandler
}

// HandleWebSocket upgrades HTTP connection to WebSocket and manages client
func (wh *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade error")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := NewClient(conn, wh.hub, wh.simulationHandler, wh.pricingHandler)

	wh.hub.RegisterClient(client)
	client.Start()
}

// GetHub returns the WebSocket hub for broadcasting messages
func (wh *WebSocketHandler) GetHub() *Hub {
	return wh.hub
}
