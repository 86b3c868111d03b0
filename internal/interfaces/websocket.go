package interfaces

import "optionsimulator/internal/types"

// ClientMessageSender receives everything a simulation emits. It is the
// rendering collaborator: a websocket client, the hub, or a terminal.
type ClientMessageSender interface {
	SendMessage(messageType types.MessageType, data interface{})
	SendError(message string, errorMsg string)
}

// WebSocketHub interface to avoid import cycles
type WebSocketHub interface {
	ClientMessageSender
	GetClientCount() int
}
