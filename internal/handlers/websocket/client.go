package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"optionsimulator/internal/engines/simulation"
	"optionsimulator/internal/types"
)

// WebSocket upgrader with CORS settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

const maxMessageSize = 4096

// Client represents a WebSocket client with its own simulation engine
type Client struct {
	Conn              *websocket.Conn
	Send              chan []byte
	Hub               *Hub
	ID                string
	SimulationHandler EventHandler
	PricingHandler    EventHandler

	// Session-specific engine
	SimulationEngine *simulation.SimulationEngine

	sendMu sync.Mutex
	closed bool
}

// EventHandler handles one family of inbound messages
type EventHandler interface {
	HandleMessage(client *Client, message types.WebSocketMessage) error
}

// NewClient creates a new WebSocket client whose engine renders back to it
func NewClient(conn *websocket.Conn, hub *Hub, simHandler EventHandler, pricingHandler EventHandler) *Client {
	client := &Client{
		Conn:              conn,
		Send:              make(chan []byte, 256),
		Hub:               hub,
		ID:                generateClientID(),
		SimulationHandler: simHandler,
		PricingHandler:    pricingHandler,
	}
	client.SimulationEngine = simulation.NewSimulationEngine(NewClientMessageAdapter(client))
	return client
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.cleanup()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetPongHandler(func(string) error {
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithField("client", c.ID).WithError(err).Warn("WebSocket error")
			}
			break
		}

		log.WithField("client", c.ID).Debugf("Received message: %s", message)
		c.handleMessage(message)
	}
}

// writePump handles writing messages to the WebSocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.WithField("client", c.ID).WithError(err).Warn("WebSocket write error")
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Start starts the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// handleMessage routes messages to appropriate handlers based on message type
func (c *Client) handleMessage(messageBytes []byte) {
	var message types.WebSocketMessage
	if err := json.Unmarshal(messageBytes, &message); err != nil {
		log.WithField("client", c.ID).WithError(err).Warn("Error parsing message")
		c.SendError("Invalid message format", err.Error())
		return
	}

	switch message.Type {
	case types.SimulationStart, types.SimulationStop, types.SimulationPause, types.SimulationResume,
		types.SimulationSetInterval, types.SimulationGetStatus:
		c.dispatch(c.SimulationHandler, "Simulation", message)

	case types.PricingQuote:
		c.dispatch(c.PricingHandler, "Pricing", message)

	default:
		log.WithField("client", c.ID).Warnf("Unknown message type: %s", message.Type)
		c.SendError("Unknown message type", string(message.Type))
	}
}

func (c *Client) dispatch(handler EventHandler, name string, message types.WebSocketMessage) {
	if handler == nil {
		c.SendError(name+" handler not available", "Internal error")
		return
	}
	if err := handler.HandleMessage(c, message); err != nil {
		log.WithField("client", c.ID).WithError(err).Errorf("%s handler error", name)
	}
}

// SendError sends an error response to the client
func (c *Client) SendError(message, errorMsg string) {
	c.SendMessage(types.WebSocketMessage{
		Type: types.Error,
		Data: errorResponse(message, errorMsg),
	})
}

// SendMessage sends a WebSocket message to the client
func (c *Client) SendMessage(message types.WebSocketMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.WithField("client", c.ID).WithError(err).Error("Error marshaling message")
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.Send <- data:
	default:
		log.WithField("client", c.ID).Warn("Send channel full, dropping message")
	}
}

// closeSend closes the send channel once; later sends are dropped
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// cleanup stops the session engine when the client disconnects
func (c *Client) cleanup() {
	if c.SimulationEngine == nil {
		return
	}

	if err := c.SimulationEngine.Stop(); err != nil {
		log.WithField("client", c.ID).WithError(err).Warn("Error stopping simulation engine")
	}
	c.SimulationEngine.Cleanup()
	<-c.SimulationEngine.Done()
	log.WithField("client", c.ID).Info("Simulation engine cleaned up")
}

// ClientMessageAdapter adapts Client to implement ClientMessageSender
type ClientMessageAdapter struct {
	client *Client
}

// NewClientMessageAdapter creates a new adapter for the client
func NewClientMessageAdapter(client *Client) *ClientMessageAdapter {
	return &ClientMessageAdapter{client: client}
}

// SendMessage implements ClientMessageSender interface
func (cma *ClientMessageAdapter) SendMessage(messageType types.MessageType, data interface{}) {
	cma.client.SendMessage(types.WebSocketMessage{
		Type: messageType,
		Data: data,
	})
}

func (cma *ClientMessageAdapter) SendError(message string, errorMsg string) {
	cma.client.SendError(message, errorMsg)
}
