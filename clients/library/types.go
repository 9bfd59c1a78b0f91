package memlib

import (
	"github.com/AnishMulay/memfs/internal/communication"
)

// Client talks to one memfs server over a communicator. It is safe for
// concurrent use; open handles are owned by the server.
type Client struct {
	ServerAddr string
	Comm       communication.Communicator
	From       string
}

func NewClient(serverAddr string, comm communication.Communicator) *Client {
	return &Client{
		ServerAddr: serverAddr,
		Comm:       comm,
		From:       "memlib",
	}
}
