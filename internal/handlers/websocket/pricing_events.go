package websocket

import (
	"optionsimulator/internal/handlers"
	"optionsimulator/internal/types"
)

// PricingEventHandlerImpl answers one-off quote requests over the socket
type PricingEventHandlerImpl struct{}

func NewPricingEventHandler() *PricingEventHandlerImpl {
	return &PricingEventHandlerImpl{}
}

func (h *PricingEventHandlerImpl) HandleMessage(client *Client, message types.WebSocketMessage) error {
	var quoteData PricingQuoteData
	if err := decodeData(message.Data, &quoteData); err != nil {
		client.SendError("Invalid pricing quote data", err.Error())
		return nil
	}

	response, err := handlers.Quote(quoteData)
	if err != nil {
		client.SendError("Failed to price contract", err.Error())
		return nil
	}

	client.SendMessage(types.WebSocketMessage{
		Type: types.PricingResult,
		Data: response,
	})
	return nil
}
