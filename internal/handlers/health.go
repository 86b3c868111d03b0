package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"optionsimulator/internal/interfaces"
)

type HealthHandler struct {
	hub interfaces.WebSocketHub
}

func NewHealthHandler(hub interfaces.WebSocketHub) *HealthHandler {
	return &HealthHandler{hub: hub}
}

// Health reports service status and the number of connected renderers
func (h *HealthHandler) Health(c *gin.Context) {
	clients := 0
	if h.hub != nil {
		clients = h.hub.GetClientCount()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service":          "optionsimulator",
		"websocketClients": clients,
		"timestamp":        GetCurrentTimestamp(),
	})
}
