package types

// MessageType defines the type of WebSocket message
type MessageType string

const (
	ConnectionStatus MessageType = "connection_status"
	StatusUpdate     MessageType = "status_update"
	SimulationUpdate MessageType = "simulation_update"
	Error            MessageType = "error"

	// Simulation control messages
	SimulationStart        MessageType = "simulation_control_start"
	SimulationStop         MessageType = "simulation_control_stop"
	SimulationPause        MessageType = "simulation_control_pause"
	SimulationResume       MessageType = "simulation_control_resume"
	SimulationSetInterval  MessageType = "simulation_control_set_interval"
	SimulationGetStatus    MessageType = "simulation_control_get_status"
	SimulationControlError MessageType = "simulation_control_error"

	// Pricing messages
	PricingQuote  MessageType = "pricing_quote"
	PricingResult MessageType = "pricing_result"
)

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data"`
}

// ConnectionStatusData represents connection status message data
type ConnectionStatusData struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
