package communication

import "context"

// SandCode is the transport-independent status of a Response.
type SandCode string

const (
	CodeOK            SandCode = "OK"
	CodeBadRequest    SandCode = "BAD_REQUEST"
	CodeNotFound      SandCode = "NOT_FOUND"
	CodeAlreadyExists SandCode = "ALREADY_EXISTS"
	CodeNoSpace       SandCode = "NO_SPACE"
	CodeNotSupported  SandCode = "NOT_SUPPORTED"
	CodeInternal      SandCode = "INTERNAL"
)

// Message is one request. On the receiving side Payload holds a value of the
// type registered for Type; on the sending side it is any JSON-encodable value.
type Message struct {
	From    string
	Type    string
	Payload any
}

type Response struct {
	Code    SandCode
	Body    []byte
	Headers map[string]string
}

type Communicator interface {
	Start(handler MessageHandler) error
	Stop() error
	Send(ctx context.Context, to string, msg Message) (*Response, error)
	Address() string
}
