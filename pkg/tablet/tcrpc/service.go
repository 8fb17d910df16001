// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tcrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/zhdk123456/kudu/pkg/tablet/tcpb"
)

const serviceName = "github.com/zhdk123456/kudu.tserver.v1.RemoteBootstrapService"

func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// Server is the server-side interface for the remote bootstrap service.
// The server implementation itself is out of scope for this module
// (spec §1 "the server side of the bootstrap protocol is not specified
// here"); this interface exists so tests can run an in-process fake
// server against the real client and codec.
type Server interface {
	BeginSession(context.Context, *tcpb.BeginSessionRequest) (*tcpb.BeginSessionResponse, error)
	FetchData(context.Context, *tcpb.FetchDataRequest) (*tcpb.FetchDataResponse, error)
	EndSession(context.Context, *tcpb.EndSessionRequest) (*tcpb.EndSessionResponse, error)
}

// RegisterServer registers srv on s under this package's service
// descriptor.
func RegisterServer(s *grpc.Server, srv Server) {
	s.RegisterService(&serviceDesc, srv)
}

func handlerBeginSession(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(tcpb.BeginSessionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(Server).BeginSession(ctx, req)
}

func handlerFetchData(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(tcpb.FetchDataRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(Server).FetchData(ctx, req)
}

func handlerEndSession(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(tcpb.EndSessionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(Server).EndSession(ctx, req)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "BeginSession", Handler: handlerBeginSession},
		{MethodName: "FetchData", Handler: handlerFetchData},
		{MethodName: "EndSession", Handler: handlerEndSession},
	},
	Metadata: "github.com/zhdk123456/kudu/tserver/v1/remote_bootstrap.rpc",
}
