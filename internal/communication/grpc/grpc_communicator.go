package grpccomm

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"reflect"
	"runtime/debug"
	"sync"
	"time"

	"github.com/AnishMulay/memfs/internal/communication"
	"github.com/AnishMulay/memfs/internal/log_service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCCommunicator struct {
	listenAddress string
	handler       communication.MessageHandler
	grpcServer    *grpc.Server
	health        *health.Server
	ls            log_service.LogService

	clientLock sync.RWMutex
	conns      map[string]*grpc.ClientConn

	payloadLock  sync.RWMutex
	payloadTypes map[string]reflect.Type

	stopped   bool
	stopMutex sync.RWMutex
}

func NewGRPCCommunicator(addr string, ls log_service.LogService) *GRPCCommunicator {
	return &GRPCCommunicator{
		listenAddress: addr,
		ls:            ls,
		conns:         make(map[string]*grpc.ClientConn),
		payloadTypes:  make(map[string]reflect.Type),
	}
}

// Address returns the listen address. After Start it is the bound address,
// so ":0" resolves to the port actually chosen.
func (c *GRPCCommunicator) Address() string {
	return c.listenAddress
}

// RegisterPayloadType tells the receiving side which Go type to decode the
// payload of msgType into.
func (c *GRPCCommunicator) RegisterPayloadType(msgType string, payloadType reflect.Type) {
	c.payloadLock.Lock()
	defer c.payloadLock.Unlock()
	c.payloadTypes[msgType] = payloadType
}

func (c *GRPCCommunicator) payloadType(msgType string) (reflect.Type, bool) {
	c.payloadLock.RLock()
	defer c.payloadLock.RUnlock()
	t, ok := c.payloadTypes[msgType]
	return t, ok
}

func (c *GRPCCommunicator) Start(handler communication.MessageHandler) error {
	c.ls.Info(log_service.LogEvent{
		Message:  "Starting GRPC communicator",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	lis, err := net.Listen("tcp", c.listenAddress)
	if err != nil {
		c.ls.Error(log_service.LogEvent{
			Message:  "Failed to listen on address",
			Metadata: map[string]any{"address": c.listenAddress, "error": err.Error()},
		})
		return fmt.Errorf("%w: %v", communication.ErrGRPCListenFailed, err)
	}
	c.listenAddress = lis.Addr().String()

	c.handler = handler
	c.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(c.logInterceptor, c.recoverInterceptor))
	c.grpcServer.RegisterService(&messageServiceDesc, &grpcServer{comm: c})

	c.health = health.NewServer()
	healthpb.RegisterHealthServer(c.grpcServer, c.health)
	c.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	c.ls.Info(log_service.LogEvent{
		Message:  "GRPC communicator started successfully",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	go func() {
		if err := c.grpcServer.Serve(lis); err != nil {
			c.ls.Error(log_service.LogEvent{
				Message:  "GRPC server error",
				Metadata: map[string]any{"address": c.listenAddress, "error": err.Error()},
			})
		}
	}()
	return nil
}

func (c *GRPCCommunicator) Stop() error {
	c.stopMutex.Lock()
	defer c.stopMutex.Unlock()

	if c.stopped {
		c.ls.Debug(log_service.LogEvent{
			Message:  "GRPC communicator already stopped, skipping",
			Metadata: map[string]any{"address": c.listenAddress},
		})
		return nil
	}

	c.ls.Info(log_service.LogEvent{
		Message:  "Stopping GRPC communicator",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	if c.health != nil {
		c.health.Shutdown()
	}
	if c.grpcServer != nil {
		c.grpcServer.GracefulStop()
	}

	c.clientLock.Lock()
	for addr, conn := range c.conns {
		if err := conn.Close(); err != nil {
			c.ls.Warn(log_service.LogEvent{
				Message:  "Failed to close GRPC client",
				Metadata: map[string]any{"to": addr, "error": err.Error()},
			})
		}
		delete(c.conns, addr)
	}
	c.clientLock.Unlock()

	c.stopped = true
	c.ls.Info(log_service.LogEvent{
		Message:  "GRPC communicator stopped successfully",
		Metadata: map[string]any{"address": c.listenAddress},
	})

	return nil
}

func (c *GRPCCommunicator) isStopped() bool {
	c.stopMutex.RLock()
	defer c.stopMutex.RUnlock()
	return c.stopped
}

func (c *GRPCCommunicator) conn(to string) (*grpc.ClientConn, error) {
	c.clientLock.RLock()
	conn, ok := c.conns[to]
	c.clientLock.RUnlock()
	if ok {
		return conn, nil
	}

	c.clientLock.Lock()
	defer c.clientLock.Unlock()

	if conn, ok := c.conns[to]; ok {
		return conn, nil
	}

	c.ls.Debug(log_service.LogEvent{
		Message:  "Creating new GRPC client",
		Metadata: map[string]any{"to": to},
	})

	conn, err := grpc.NewClient(to, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		c.ls.Error(log_service.LogEvent{
			Message:  "Failed to create GRPC client",
			Metadata: map[string]any{"to": to, "error": err.Error()},
		})
		return nil, communication.ErrClientCreateFailed
	}
	c.conns[to] = conn
	return conn, nil
}

func (c *GRPCCommunicator) Send(ctx context.Context, to string, msg communication.Message) (*communication.Response, error) {
	if c.isStopped() {
		return nil, communication.ErrStopped
	}

	c.ls.Debug(log_service.LogEvent{
		Message:  "Sending GRPC message",
		Metadata: map[string]any{"to": to, "type": msg.Type, "from": msg.From},
	})

	conn, err := c.conn(to)
	if err != nil {
		return nil, err
	}

	req := &messageRequest{From: msg.From, Type: msg.Type}
	if msg.Payload != nil {
		payloadBytes, err := json.Marshal(msg.Payload)
		if err != nil {
			c.ls.Error(log_service.LogEvent{
				Message:  "Failed to marshal payload",
				Metadata: map[string]any{"to": to, "type": msg.Type, "error": err.Error()},
			})
			return nil, communication.ErrPayloadMarshalFailed
		}
		req.Payload = payloadBytes
	}

	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, sendMessageMethod, req.toProto(), out); err != nil {
		c.ls.Error(log_service.LogEvent{
			Message:  "Failed to send GRPC message",
			Metadata: map[string]any{"to": to, "type": msg.Type, "error": err.Error()},
		})
		return nil, fmt.Errorf("%w: %v", communication.ErrMessageSendFailed, err)
	}

	resp, err := responseFromProto(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", communication.ErrMessageSendFailed, err)
	}

	c.ls.Debug(log_service.LogEvent{
		Message:  "GRPC message sent successfully",
		Metadata: map[string]any{"to": to, "type": msg.Type, "responseCode": resp.Code},
	})

	return &communication.Response{
		Code:    communication.SandCode(resp.Code),
		Body:    resp.Body,
		Headers: resp.Headers,
	}, nil
}

// Ping asks the peer's health service whether the message service is serving.
func (c *GRPCCommunicator) Ping(ctx context.Context, to string) error {
	conn, err := c.conn(to)
	if err != nil {
		return err
	}
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	if err != nil {
		return fmt.Errorf("health check %s: %w", to, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("health check %s: status %s", to, resp.GetStatus())
	}
	return nil
}

func (c *GRPCCommunicator) logInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	meta := map[string]any{"method": info.FullMethod, "duration": time.Since(start).String()}
	if err != nil {
		meta["error"] = err.Error()
	}
	c.ls.Debug(log_service.LogEvent{Message: "GRPC request handled", Metadata: meta})
	return resp, err
}

// recoverInterceptor turns a panic in a handler into an Internal status so one
// bad request cannot take the node down.
func (c *GRPCCommunicator) recoverInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.ls.Error(log_service.LogEvent{
				Message:  "GRPC handler panicked",
				Metadata: map[string]any{"method": info.FullMethod, "panic": fmt.Sprint(r), "stack": string(debug.Stack())},
			})
			resp, err = nil, status.Errorf(codes.Internal, "handler panic: %v", r)
		}
	}()
	return handler(ctx, req)
}

type grpcServer struct {
	comm *GRPCCommunicator
}

func (s *grpcServer) SendMessage(ctx context.Context, req *messageRequest) (*messageResponse, error) {
	if s.comm.handler == nil {
		return nil, communication.ErrHandlerNotSet
	}

	msg := communication.Message{
		From: req.From,
		Type: req.Type,
	}

	// Deserialize payload based on registered type
	if len(req.Payload) > 0 {
		payloadType, ok := s.comm.payloadType(req.Type)
		if !ok {
			return &messageResponse{
				Code: string(communication.CodeBadRequest),
				Body: []byte(communication.ErrUnknownType.Error() + ": " + req.Type),
			}, nil
		}

		payload := reflect.New(payloadType).Interface()
		if err := json.Unmarshal(req.Payload, payload); err != nil {
			return &messageResponse{
				Code: string(communication.CodeBadRequest),
				Body: []byte(communication.ErrPayloadUnmarshalFailed.Error() + ": " + err.Error()),
			}, nil
		}

		msg.Payload = reflect.ValueOf(payload).Elem().Interface()
	}

	resp, err := s.comm.handler(ctx, msg)
	if err != nil {
		s.comm.ls.Error(log_service.LogEvent{
			Message:  "Message handler failed",
			Metadata: map[string]any{"type": req.Type, "error": err.Error()},
		})

		return &messageResponse{
			Code: string(communication.CodeInternal),
			Body: []byte(err.Error()),
		}, nil
	}

	if resp == nil {
		return &messageResponse{
			Code: string(communication.CodeInternal),
			Body: []byte("handler returned nil response"),
		}, nil
	}

	return &messageResponse{
		Code:    string(resp.Code),
		Body:    resp.Body,
		Headers: resp.Headers,
	}, nil
}

var _ communication.Communicator = (*GRPCCommunicator)(nil)
