package grpccomm

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The message service has no generated stubs. Its single unary method is
// described by hand below and carries a structpb.Struct envelope over the
// default proto codec:
//
//	request:  {from, type, payload}   payload is the JSON-encoded message payload
//	response: {code, body, headers}   body is base64, headers is a string map

const (
	serviceName       = "memfs.communication.MessageService"
	sendMessageMethod = "/" + serviceName + "/SendMessage"
)

type messageRequest struct {
	From    string
	Type    string
	Payload []byte
}

type messageResponse struct {
	Code    string
	Body    []byte
	Headers map[string]string
}

func (r *messageRequest) toProto() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"from":    structpb.NewStringValue(r.From),
		"type":    structpb.NewStringValue(r.Type),
		"payload": structpb.NewStringValue(string(r.Payload)),
	}}
}

func requestFromProto(s *structpb.Struct) *messageRequest {
	f := s.GetFields()
	req := &messageRequest{
		From: f["from"].GetStringValue(),
		Type: f["type"].GetStringValue(),
	}
	if p := f["payload"].GetStringValue(); p != "" {
		req.Payload = []byte(p)
	}
	return req
}

func (r *messageResponse) toProto() *structpb.Struct {
	headers := make(map[string]*structpb.Value, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = structpb.NewStringValue(v)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"code":    structpb.NewStringValue(r.Code),
		"body":    structpb.NewStringValue(base64.StdEncoding.EncodeToString(r.Body)),
		"headers": structpb.NewStructValue(&structpb.Struct{Fields: headers}),
	}}
}

func responseFromProto(s *structpb.Struct) (*messageResponse, error) {
	f := s.GetFields()
	resp := &messageResponse{Code: f["code"].GetStringValue()}

	if raw := f["body"].GetStringValue(); raw != "" {
		body, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decode response body: %w", err)
		}
		resp.Body = body
	}

	if h := f["headers"].GetStructValue().GetFields(); len(h) > 0 {
		resp.Headers = make(map[string]string, len(h))
		for k, v := range h {
			resp.Headers[k] = v.GetStringValue()
		}
	}
	return resp, nil
}

type messageServiceServer interface {
	SendMessage(ctx context.Context, req *messageRequest) (*messageResponse, error)
}

func sendMessageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		resp, err := srv.(messageServiceServer).SendMessage(ctx, requestFromProto(req.(*structpb.Struct)))
		if err != nil {
			return nil, err
		}
		return resp.toProto(), nil
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: sendMessageMethod,
	}
	return interceptor(ctx, in, info, handler)
}

var messageServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*messageServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendMessage",
			Handler:    sendMessageHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "memfs/communication/message_service",
}
