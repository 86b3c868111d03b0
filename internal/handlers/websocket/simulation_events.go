package websocket

import (
	"encoding/json"
	"time"

	"optionsimulator/internal/engines/simulation"
	"optionsimulator/internal/types"
)

// SimulationEventHandlerImpl handles simulation-related WebSocket events.
// Each client owns its engine; the handler only carries the start defaults.
type SimulationEventHandlerImpl struct {
	defaults simulation.StartOptions
}

// NewSimulationEventHandler creates a new simulation event handler
func NewSimulationEventHandler(defaults simulation.StartOptions) *SimulationEventHandlerImpl {
	return &SimulationEventHandlerImpl{defaults: defaults}
}

// HandleMessage handles simulation control messages
func (h *SimulationEventHandlerImpl) HandleMessage(client *Client, message types.WebSocketMessage) error {
	if client.SimulationEngine == nil {
		return h.sendErrorResponse(client, "Simulation engine not available", "Internal error")
	}

	switch message.Type {
	case types.SimulationStart:
		return h.handleStart(client, message.Data)
	case types.SimulationStop:
		return h.handleStop(client)
	case types.SimulationPause:
		return h.handlePause(client)
	case types.SimulationResume:
		return h.handleResume(client)
	case types.SimulationSetInterval:
		return h.handleSetInterval(client, message.Data)
	case types.SimulationGetStatus:
		return h.handleGetStatus(client)
	default:
		return h.sendErrorResponse(client, "Unknown simulation message", "Unknown message type")
	}
}

// handleStart handles simulation start requests
func (h *SimulationEventHandlerImpl) handleStart(client *Client, data interface{}) error {
	var startData SimulationStartData
	if err := decodeData(data, &startData); err != nil {
		return h.sendErrorResponse(client, "Invalid start simulation data", err.Error())
	}

	opts, err := startData.StartOptions(h.defaults)
	if err != nil {
		return h.sendErrorResponse(client, "Invalid start simulation data", err.Error())
	}

	if err := client.SimulationEngine.Start(opts); err != nil {
		return h.sendErrorResponse(client, "Failed to start simulation", err.Error())
	}

	return nil
}

// handleStop handles simulation stop requests
func (h *SimulationEventHandlerImpl) handleStop(client *Client) error {
	if err := client.SimulationEngine.Stop(); err != nil {
		return h.sendErrorResponse(client, "Failed to stop simulation", err.Error())
	}

	return nil
}

// handlePause handles simulation pause requests
func (h *SimulationEventHandlerImpl) handlePause(client *Client) error {
	if err := client.SimulationEngine.Pause(); err != nil {
		return h.sendErrorResponse(client, "Failed to pause simulation", err.Error())
	}

	return nil
}

// handleResume handles simulation resume requests
func (h *SimulationEventHandlerImpl) handleResume(client *Client) error {
	if err := client.SimulationEngine.Resume(); err != nil {
		return h.sendErrorResponse(client, "Failed to resume simulation", err.Error())
	}

	return nil
}

// handleSetInterval handles frame interval change requests
func (h *SimulationEventHandlerImpl) handleSetInterval(client *Client, data interface{}) error {
	var intervalData SimulationSetIntervalData
	if err := decodeData(data, &intervalData); err != nil {
		return h.sendErrorResponse(client, "Invalid interval data", err.Error())
	}

	interval := time.Duration(intervalData.IntervalMs) * time.Millisecond
	if err := client.SimulationEngine.SetInterval(interval); err != nil {
		return h.sendErrorResponse(client, "Failed to set interval", err.Error())
	}

	return nil
}

// handleGetStatus handles simulation status requests
func (h *SimulationEventHandlerImpl) handleGetStatus(client *Client) error {
	client.SimulationEngine.SendStatusUpdate("Status requested")
	return nil
}

// sendErrorResponse sends a simulation_control_error message to the client
func (h *SimulationEventHandlerImpl) sendErrorResponse(client *Client, message string, errorMsg string) error {
	response := SimulationControlResponse{
		Success: false,
		Message: message,
		Error:   errorMsg,
	}

	client.SendMessage(types.WebSocketMessage{
		Type: types.SimulationControlError,
		Data: response,
	})
	return nil
}

// decodeData re-decodes a generic message payload into a typed struct
func decodeData(data interface{}, target interface{}) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(dataBytes, target)
}
