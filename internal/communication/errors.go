package communication

import "errors"

var (
	// Client connection errors
	ErrClientCreateFailed = errors.New("failed to create client")

	// Message handling errors
	ErrHandlerNotSet     = errors.New("message handler not set")
	ErrMessageSendFailed = errors.New("failed to send message")
	ErrUnknownType       = errors.New("unknown message type")

	// Serialization/deserialization errors
	ErrPayloadMarshalFailed   = errors.New("failed to marshal payload")
	ErrPayloadUnmarshalFailed = errors.New("failed to unmarshal payload")

	// GRPC specific errors
	ErrGRPCListenFailed = errors.New("failed to listen on address")
	ErrStopped          = errors.New("communicator stopped")
)
