package grpccomm

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/AnishMulay/memfs/internal/communication"
	"github.com/AnishMulay/memfs/internal/log_service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Text string `json:"text"`
}

func startEcho(t *testing.T) *GRPCCommunicator {
	t.Helper()
	server := NewGRPCCommunicator("127.0.0.1:0", log_service.NewNopLogService())
	server.RegisterPayloadType("echo", reflect.TypeOf(echoRequest{}))

	err := server.Start(func(ctx context.Context, msg communication.Message) (*communication.Response, error) {
		switch msg.Type {
		case "echo":
			req, ok := msg.Payload.(echoRequest)
			if !ok {
				return &communication.Response{Code: communication.CodeBadRequest}, nil
			}
			return &communication.Response{
				Code:    communication.CodeOK,
				Body:    []byte(req.Text),
				Headers: map[string]string{"from": msg.From},
			}, nil
		case "empty":
			return &communication.Response{Code: communication.CodeOK}, nil
		case "deadline":
			if _, ok := ctx.Deadline(); !ok {
				return &communication.Response{Code: communication.CodeBadRequest}, nil
			}
			return &communication.Response{Code: communication.CodeOK}, nil
		case "binary":
			return &communication.Response{Code: communication.CodeOK, Body: []byte{0x00, 0xff, 0xfe}}, nil
		case "panic":
			panic("boom")
		default:
			return nil, nil
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Stop() })
	return server
}

func TestGRPCCommunicator_SendReceive(t *testing.T) {
	server := startEcho(t)
	assert.NotEqual(t, "127.0.0.1:0", server.Address())

	client := NewGRPCCommunicator("", log_service.NewNopLogService())
	t.Cleanup(func() { _ = client.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Send(ctx, server.Address(), communication.Message{
		From:    "tester",
		Type:    "echo",
		Payload: echoRequest{Text: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, communication.CodeOK, resp.Code)
	assert.Equal(t, []byte("hello"), resp.Body)
	assert.Equal(t, "tester", resp.Headers["from"])

	resp, err = client.Send(ctx, server.Address(), communication.Message{Type: "empty"})
	require.NoError(t, err)
	assert.Equal(t, communication.CodeOK, resp.Code)
	assert.Empty(t, resp.Body)
}

func TestGRPCCommunicator_UnregisteredPayload(t *testing.T) {
	server := startEcho(t)
	client := NewGRPCCommunicator("", log_service.NewNopLogService())
	t.Cleanup(func() { _ = client.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Send(ctx, server.Address(), communication.Message{
		Type:    "unregistered",
		Payload: echoRequest{Text: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, communication.CodeBadRequest, resp.Code)

	resp, err = client.Send(ctx, server.Address(), communication.Message{Type: "nil-response"})
	require.NoError(t, err)
	assert.Equal(t, communication.CodeInternal, resp.Code)
}

func TestGRPCCommunicator_Ping(t *testing.T) {
	server := startEcho(t)
	client := NewGRPCCommunicator("", log_service.NewNopLogService())
	t.Cleanup(func() { _ = client.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Ping(ctx, server.Address()))
}

func TestGRPCCommunicator_StopIsIdempotent(t *testing.T) {
	server := startEcho(t)
	require.NoError(t, server.Stop())
	require.NoError(t, server.Stop())

	_, err := server.Send(context.Background(), server.Address(), communication.Message{Type: "empty"})
	assert.ErrorIs(t, err, communication.ErrStopped)
}

func TestGRPCCommunicator_ListenFailure(t *testing.T) {
	server := startEcho(t)

	other := NewGRPCCommunicator(server.Address(), log_service.NewNopLogService())
	err := other.Start(func(context.Context, communication.Message) (*communication.Response, error) { return nil, nil })
	assert.ErrorIs(t, err, communication.ErrGRPCListenFailed)
}

func TestGRPCCommunicator_HandlerSeesRequestContext(t *testing.T) {
	server := startEcho(t)
	client := NewGRPCCommunicator("", log_service.NewNopLogService())
	t.Cleanup(func() { _ = client.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Send(ctx, server.Address(), communication.Message{Type: "deadline"})
	require.NoError(t, err)
	assert.Equal(t, communication.CodeOK, resp.Code)
}

func TestGRPCCommunicator_BinaryBody(t *testing.T) {
	server := startEcho(t)
	client := NewGRPCCommunicator("", log_service.NewNopLogService())
	t.Cleanup(func() { _ = client.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Send(ctx, server.Address(), communication.Message{Type: "binary"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff, 0xfe}, resp.Body)
	assert.Empty(t, resp.Headers)
}

func TestGRPCCommunicator_HandlerPanicDoesNotStopServer(t *testing.T) {
	server := startEcho(t)
	client := NewGRPCCommunicator("", log_service.NewNopLogService())
	t.Cleanup(func() { _ = client.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Send(ctx, server.Address(), communication.Message{Type: "panic"})
	assert.ErrorIs(t, err, communication.ErrMessageSendFailed)

	resp, err := client.Send(ctx, server.Address(), communication.Message{
		Type:    "echo",
		Payload: echoRequest{Text: "still up"},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("still up"), resp.Body)
}
