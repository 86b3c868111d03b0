package websocket

import (
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"

	"optionsimulator/internal/types"
)

// Hub maintains active clients and broadcasts messages
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			log.WithField("client", client.ID).Infof("Client connected. Total clients: %d", count)

			statusMsg := types.WebSocketMessage{
				Type: types.ConnectionStatus,
				Data: types.ConnectionStatusData{
					Status:    "connected",
					Message:   "Successfully connected to WebSocket",
					Timestamp: GetCurrentTimestamp(),
				},
			}
			if data, err := json.Marshal(statusMsg); err == nil {
				select {
				case client.Send <- data:
				default:
					h.remove(client)
				}
			}

		case client := <-h.unregister:
			if h.remove(client) {
				log.WithField("client", client.ID).Infof("Client disconnected. Total clients: %d", h.GetClientCount())
			}

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow client: stop writing to it; readPump unregisters it later
					client.closeSend()
					delete(h.clients, client)
					log.WithField("client", client.ID).Warn("Client too slow, dropped from hub")
				}
			}
			h.mutex.Unlock()
		}
	}
}

// remove drops a registered client and closes its send channel
func (h *Hub) remove(client *Client) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	client.closeSend()
	return true
}

// BroadcastMessage broadcasts a message to all connected clients
func (h *Hub) BroadcastMessage(msgType types.MessageType, data interface{}) {
	message := types.WebSocketMessage{
		Type: msgType,
		Data: data,
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		log.WithError(err).Error("Error marshaling WebSocket message")
		return
	}

	select {
	case h.broadcast <- jsonData:
	default:
		log.WithField("type", msgType).Warn("Broadcast channel full, dropping message")
	}
}

// SendMessage lets the hub act as the renderer of a shared simulation engine
func (h *Hub) SendMessage(messageType types.MessageType, data interface{}) {
	h.BroadcastMessage(messageType, data)
}

func (h *Hub) SendError(message string, errorMsg string) {
	h.BroadcastMessage(types.Error, errorResponse(message, errorMsg))
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RegisterClient registers a new client
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
