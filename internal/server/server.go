package server

// Server is a request router bound to a transport.
type Server interface {
	Start() error
	Stop() error
}
