package simple

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"

	"github.com/AnishMulay/memfs/internal/communication"
	"github.com/AnishMulay/memfs/internal/log_service"
	"github.com/AnishMulay/memfs/internal/memfs"
	ps "github.com/AnishMulay/memfs/internal/posix_server"
	"github.com/AnishMulay/memfs/internal/server"
	"github.com/google/uuid"
)

// transport is the part of a communicator the server drives.
type transport interface {
	Start(handler communication.MessageHandler) error
	Stop() error
	RegisterPayloadType(msgType string, payloadType reflect.Type)
}

type SimplePosixServer struct {
	comm transport
	fs   ps.FileSystem
	ls   log_service.LogService
}

func NewSimplePosixServer(comm transport, fs ps.FileSystem, ls log_service.LogService) *SimplePosixServer {
	return &SimplePosixServer{
		comm: comm,
		fs:   fs,
		ls:   ls,
	}
}

func (s *SimplePosixServer) Start() error {
	s.ls.Info(log_service.LogEvent{Message: "Starting Simple POSIX Server"})

	s.registerPayloads()

	return s.comm.Start(s.handleMessage)
}

func (s *SimplePosixServer) Stop() error {
	s.ls.Info(log_service.LogEvent{Message: "Stopping Simple POSIX Server"})
	return s.comm.Stop()
}

func (s *SimplePosixServer) registerPayloads() {
	s.comm.RegisterPayloadType(ps.MsgGetAttr, reflect.TypeOf(ps.GetAttrRequest{}))
	s.comm.RegisterPayloadType(ps.MsgStatFs, reflect.TypeOf(ps.StatFsRequest{}))
	s.comm.RegisterPayloadType(ps.MsgMkdir, reflect.TypeOf(ps.MkdirRequest{}))
	s.comm.RegisterPayloadType(ps.MsgMknod, reflect.TypeOf(ps.MknodRequest{}))
	s.comm.RegisterPayloadType(ps.MsgOpen, reflect.TypeOf(ps.OpenRequest{}))
	s.comm.RegisterPayloadType(ps.MsgRelease, reflect.TypeOf(ps.ReleaseRequest{}))
	s.comm.RegisterPayloadType(ps.MsgRead, reflect.TypeOf(ps.ReadRequest{}))
	s.comm.RegisterPayloadType(ps.MsgWrite, reflect.TypeOf(ps.WriteRequest{}))
	s.comm.RegisterPayloadType(ps.MsgReadDir, reflect.TypeOf(ps.ReadDirRequest{}))
	s.comm.RegisterPayloadType(ps.MsgUnlink, reflect.TypeOf(ps.UnlinkRequest{}))
	s.comm.RegisterPayloadType(ps.MsgRmdir, reflect.TypeOf(ps.RmdirRequest{}))
	s.comm.RegisterPayloadType(ps.MsgRename, reflect.TypeOf(ps.RenameRequest{}))
}

// Central Router for all incoming messages. Each message maps to exactly one
// engine call.
func (s *SimplePosixServer) handleMessage(ctx context.Context, msg communication.Message) (*communication.Response, error) {
	requestID := uuid.NewString()

	s.ls.Debug(log_service.LogEvent{
		Message:  "Handling request",
		Metadata: map[string]any{"requestID": requestID, "type": msg.Type, "from": msg.From},
	})

	switch msg.Type {
	case ps.MsgGetAttr:
		req, ok := msg.Payload.(ps.GetAttrRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		attr, err := s.fs.GetAttr(ctx, req.Path)
		return s.respond(requestID, attr, err)

	case ps.MsgStatFs:
		return s.respond(requestID, s.fs.StatFs(ctx), nil)

	case ps.MsgMkdir:
		req, ok := msg.Payload.(ps.MkdirRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		attr, err := s.fs.Mkdir(ctx, req.Path, req.Mode)
		return s.respond(requestID, attr, err)

	case ps.MsgMknod:
		req, ok := msg.Payload.(ps.MknodRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		attr, err := s.fs.Mknod(ctx, req.Path, req.Mode)
		return s.respond(requestID, attr, err)

	case ps.MsgOpen:
		req, ok := msg.Payload.(ps.OpenRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		h, err := s.fs.Open(ctx, req.Path, req.Flags)
		return s.respond(requestID, ps.OpenResponse{Handle: h}, err)

	case ps.MsgRelease:
		req, ok := msg.Payload.(ps.ReleaseRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		return s.respond(requestID, nil, s.fs.Release(ctx, req.Handle))

	case ps.MsgRead:
		req, ok := msg.Payload.(ps.ReadRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		data, err := s.fs.Read(ctx, req.Handle, req.Length, req.Offset)
		return s.respond(requestID, data, err)

	case ps.MsgWrite:
		req, ok := msg.Payload.(ps.WriteRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		n, err := s.fs.Write(ctx, req.Handle, req.Data, req.Offset)
		return s.respond(requestID, ps.WriteResponse{Written: n}, err)

	case ps.MsgReadDir:
		req, ok := msg.Payload.(ps.ReadDirRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		entries, err := s.fs.ReadDir(ctx, req.Path)
		return s.respond(requestID, entries, err)

	case ps.MsgUnlink:
		req, ok := msg.Payload.(ps.UnlinkRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		return s.respond(requestID, nil, s.fs.Unlink(ctx, req.Path))

	case ps.MsgRmdir:
		req, ok := msg.Payload.(ps.RmdirRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		return s.respond(requestID, nil, s.fs.Rmdir(ctx, req.Path))

	case ps.MsgRename:
		req, ok := msg.Payload.(ps.RenameRequest)
		if !ok {
			return badPayload(msg.Type), nil
		}
		return s.respond(requestID, nil, s.fs.Rename(ctx, req.Src, req.Dst))

	default:
		return &communication.Response{
			Code: communication.CodeBadRequest,
			Body: []byte("unknown message type: " + msg.Type),
		}, nil
	}
}

func badPayload(msgType string) *communication.Response {
	return &communication.Response{
		Code: communication.CodeBadRequest,
		Body: []byte("missing or malformed payload for " + msgType),
	}
}

// codeFor maps an engine error to a response code.
func codeFor(err error) communication.SandCode {
	switch {
	case errors.Is(err, memfs.ErrNotExist):
		return communication.CodeNotFound
	case errors.Is(err, memfs.ErrExist):
		return communication.CodeAlreadyExists
	case errors.Is(err, memfs.ErrNoSpace):
		return communication.CodeNoSpace
	case errors.Is(err, memfs.ErrNotSupported):
		return communication.CodeNotSupported
	case errors.Is(err, memfs.ErrNotDir),
		errors.Is(err, memfs.ErrIsDir),
		errors.Is(err, memfs.ErrInvalid),
		errors.Is(err, memfs.ErrBadHandle):
		return communication.CodeBadRequest
	default:
		return communication.CodeInternal
	}
}

// respond standardizes JSON responses and error codes
func (s *SimplePosixServer) respond(requestID string, data any, err error) (*communication.Response, error) {
	if err != nil {
		code := codeFor(err)
		meta := map[string]any{"requestID": requestID, "code": string(code), "error": err.Error()}
		if code == communication.CodeInternal {
			s.ls.Error(log_service.LogEvent{Message: "Request failed", Metadata: meta})
		} else {
			s.ls.Debug(log_service.LogEvent{Message: "Request rejected", Metadata: meta})
		}

		return &communication.Response{
			Code:    code,
			Body:    []byte(err.Error()),
			Headers: map[string]string{ps.HeaderErrno: strconv.Itoa(int(memfs.Errno(err)))},
		}, nil
	}

	if data == nil {
		return &communication.Response{Code: communication.CodeOK}, nil
	}

	bytes, marshalErr := json.Marshal(data)
	if marshalErr != nil {
		return &communication.Response{
			Code: communication.CodeInternal,
			Body: []byte("failed to marshal response: " + marshalErr.Error()),
		}, nil
	}

	return &communication.Response{
		Code: communication.CodeOK,
		Body: bytes,
	}, nil
}

var _ server.Server = (*SimplePosixServer)(nil)
