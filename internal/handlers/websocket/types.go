package websocket

import "optionsimulator/internal/handlers"

// SimulationStartData is the payload of simulation_control_start
type SimulationStartData = handlers.StartSimulationRequest

// SimulationSetIntervalData is the payload of simulation_control_set_interval
type SimulationSetIntervalData struct {
	IntervalMs int `json:"intervalMs"`
}

// PricingQuoteData is the payload of pricing_quote
type PricingQuoteData = handlers.QuoteRequest

type SimulationControlResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
