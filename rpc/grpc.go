package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// NodeServer is the interface Service implements; kept separate from the
// concrete type so the hand-written ServiceDesc below reads the same way
// a protoc-generated one would.
type NodeServer interface {
	GetInfo(context.Context, *GetInfoRequest) (*GetInfoReply, error)
	PublishRawTx(context.Context, *PublishRawTxRequest) (*PublishRawTxReply, error)
	PublishRawBlock(context.Context, *PublishRawBlockRequest) (*PublishRawBlockReply, error)
	GetBestBlocks(*GetBestBlocksRequest, NodeGetBestBlocksServer) error
	GetBlockTemplate(*GetBlockTemplateRequest, NodeGetBlockTemplateServer) error
	ConnectPeer(context.Context, *ConnectPeerRequest) (*ConnectPeerReply, error)
	DisconnectPeer(context.Context, *DisconnectPeerRequest) (*DisconnectPeerReply, error)
	GetBlockByHash(context.Context, *GetBlockByHashRequest) (*GetBlockByHashReply, error)
	GetBlockHeaderByHash(context.Context, *GetBlockHeaderByHashRequest) (*GetBlockHeaderByHashReply, error)
	GetTxByHash(context.Context, *GetTxByHashRequest) (*GetTxByHashReply, error)
}

// NodeGetBestBlocksServer and NodeGetBlockTemplateServer stand in for the
// protoc-generated server-streaming interfaces, one per streaming method.
type NodeGetBestBlocksServer interface {
	grpc.ServerStream
	Send(*GetBestBlocksReply) error
}

type NodeGetBlockTemplateServer interface {
	grpc.ServerStream
	Send(*GetBlockTemplateReply) error
}

type nodeGetBestBlocksServer struct{ grpc.ServerStream }

func (s *nodeGetBestBlocksServer) Send(m *GetBestBlocksReply) error {
	return s.ServerStream.SendMsg(m)
}

type nodeGetBlockTemplateServer struct{ grpc.ServerStream }

func (s *nodeGetBlockTemplateServer) Send(m *GetBlockTemplateReply) error {
	return s.ServerStream.SendMsg(m)
}

func handleGetInfo(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetInfoRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).GetInfo(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/ensicoin.Node/GetInfo"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).GetInfo(ctx, req.(*GetInfoRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handlePublishRawTx(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(PublishRawTxRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).PublishRawTx(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/ensicoin.Node/PublishRawTx"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).PublishRawTx(ctx, req.(*PublishRawTxRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handlePublishRawBlock(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(PublishRawBlockRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).PublishRawBlock(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/ensicoin.Node/PublishRawBlock"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).PublishRawBlock(ctx, req.(*PublishRawBlockRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleConnectPeer(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(ConnectPeerRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).ConnectPeer(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/ensicoin.Node/ConnectPeer"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).ConnectPeer(ctx, req.(*ConnectPeerRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleDisconnectPeer(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(DisconnectPeerRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).DisconnectPeer(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/ensicoin.Node/DisconnectPeer"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).DisconnectPeer(ctx, req.(*DisconnectPeerRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleGetBlockByHash(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetBlockByHashRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).GetBlockByHash(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/ensicoin.Node/GetBlockByHash"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).GetBlockByHash(ctx, req.(*GetBlockByHashRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleGetBlockHeaderByHash(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetBlockHeaderByHashRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).GetBlockHeaderByHash(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/ensicoin.Node/GetBlockHeaderByHash"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).GetBlockHeaderByHash(ctx, req.(*GetBlockHeaderByHashRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleGetTxByHash(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetTxByHashRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServer).GetTxByHash(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/ensicoin.Node/GetTxByHash"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServer).GetTxByHash(ctx, req.(*GetTxByHashRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func streamGetBestBlocks(srv interface{}, stream grpc.ServerStream) error {
	req := new(GetBestBlocksRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(NodeServer).GetBestBlocks(req, &nodeGetBestBlocksServer{stream})
}

func streamGetBlockTemplate(srv interface{}, stream grpc.ServerStream) error {
	req := new(GetBlockTemplateRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(NodeServer).GetBlockTemplate(req, &nodeGetBlockTemplateServer{stream})
}

// ServiceDesc binds NodeServer to grpc.Server.RegisterService, playing the
// role a protoc-generated _grpc.pb.go file would.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "ensicoin.Node",
	HandlerType: (*NodeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetInfo", Handler: handleGetInfo},
		{MethodName: "PublishRawTx", Handler: handlePublishRawTx},
		{MethodName: "PublishRawBlock", Handler: handlePublishRawBlock},
		{MethodName: "ConnectPeer", Handler: handleConnectPeer},
		{MethodName: "DisconnectPeer", Handler: handleDisconnectPeer},
		{MethodName: "GetBlockByHash", Handler: handleGetBlockByHash},
		{MethodName: "GetBlockHeaderByHash", Handler: handleGetBlockHeaderByHash},
		{MethodName: "GetTxByHash", Handler: handleGetTxByHash},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "GetBestBlocks", Handler: streamGetBestBlocks, ServerStreams: true},
		{StreamName: "GetBlockTemplate", Handler: streamGetBlockTemplate, ServerStreams: true},
	},
	Metadata: "ensicoin.proto",
}

// Register attaches Service to a grpc.Server the way a generated
// RegisterNodeServer function would.
func Register(s *grpc.Server, impl NodeServer) {
	s.RegisterService(&ServiceDesc, impl)
}
