// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tcrpc

import (
	"bytes"
	"context"
	"encoding/gob"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/cockroachdb/errors"

	"github.com/zhdk123456/kudu/pkg/tablet/rpcerror"
	"github.com/zhdk123456/kudu/pkg/tablet/tcpb"
)

// remoteErrorTrailerKey carries a gob-encoded tcpb.RemoteBootstrapError
// on any RPC the server fails. Real protobuf-based services attach a
// typed extension to the error's status details (spec §4.3); lacking a
// protoc run, this module's hand-rolled RPC layer carries the same
// information as binary gRPC trailer metadata instead — still decoded on
// the client side into the same information spec §4.3/§7 require.
const remoteErrorTrailerKey = "x-remote-bootstrap-error-bin"

// Proxy is the Transport Proxy (spec §4.3): a typed client for the three
// remote-bootstrap RPCs, each with its own deadline semantics supplied
// by the caller via ctx.
type Proxy interface {
	BeginSession(ctx context.Context, req *tcpb.BeginSessionRequest) (*tcpb.BeginSessionResponse, error)
	FetchData(ctx context.Context, req *tcpb.FetchDataRequest) (*tcpb.FetchDataResponse, error)
	EndSession(ctx context.Context, req *tcpb.EndSessionRequest) (*tcpb.EndSessionResponse, error)
	Close() error
}

type grpcProxy struct {
	cc *grpc.ClientConn
}

// Dial connects to the peer at addr and returns a Proxy backed by a real
// grpc.ClientConn using this package's gob codec.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (Proxy, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.ForceCodec(gobCodec{})),
	}, opts...)
	cc, err := grpc.DialContext(ctx, addr, dialOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", addr)
	}
	return &grpcProxy{cc: cc}, nil
}

func (p *grpcProxy) Close() error { return p.cc.Close() }

func (p *grpcProxy) BeginSession(
	ctx context.Context, req *tcpb.BeginSessionRequest,
) (*tcpb.BeginSessionResponse, error) {
	resp := new(tcpb.BeginSessionResponse)
	var trailer metadata.MD
	err := p.cc.Invoke(ctx, fullMethod("BeginSession"), req, resp, grpc.Trailer(&trailer))
	if err != nil {
		return nil, unwindRemoteError(err, trailer)
	}
	return resp, nil
}

func (p *grpcProxy) FetchData(
	ctx context.Context, req *tcpb.FetchDataRequest,
) (*tcpb.FetchDataResponse, error) {
	resp := new(tcpb.FetchDataResponse)
	var trailer metadata.MD
	err := p.cc.Invoke(ctx, fullMethod("FetchData"), req, resp, grpc.Trailer(&trailer))
	if err != nil {
		return nil, unwindRemoteError(err, trailer)
	}
	return resp, nil
}

func (p *grpcProxy) EndSession(
	ctx context.Context, req *tcpb.EndSessionRequest,
) (*tcpb.EndSessionResponse, error) {
	resp := new(tcpb.EndSessionResponse)
	var trailer metadata.MD
	err := p.cc.Invoke(ctx, fullMethod("EndSession"), req, resp, grpc.Trailer(&trailer))
	if err != nil {
		return nil, unwindRemoteError(err, trailer)
	}
	return resp, nil
}

// SetRemoteBootstrapError attaches rbErr to ctx's outgoing trailer
// metadata so a server handler can report a typed remote-bootstrap
// error back to the client (the server-side half of unwindRemoteError).
// This module does not implement a server, but exposes this helper so
// test fakes (and any real server a host builds against this package)
// can produce the same shape the client expects to decode.
func SetRemoteBootstrapError(ctx context.Context, rbErr tcpb.RemoteBootstrapError) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rbErr); err != nil {
		return err
	}
	return grpc.SetTrailer(ctx, metadata.Pairs(remoteErrorTrailerKey, string(buf.Bytes())))
}

// unwindRemoteError classifies and marks err per spec §7's error-kind
// taxonomy before handing it back to the caller, so every RPC failure
// this package surfaces is machine-classifiable via the rpcerror.Is*
// predicates instead of being left as a bare status error:
//   - an exceeded deadline (the call's own context, or a
//     codes.DeadlineExceeded status from the remote) is TimedOut;
//   - a missing or undecodable remote_bootstrap_error extension is
//     InvalidArgument, spec §7's "undecodable remote error" trigger;
//   - a decoded extension is classified by its own symbolic code;
//   - anything else that reaches the client as a bare, non-status
//     transport failure is IOError.
// It also appends the decoded code and message to err's text, as spec
// §4.3/§7 describe: "the client decodes the inner status and appends its
// text (including the symbolic name of the error code) to the outer
// error".
func unwindRemoteError(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return rpcerror.MarkIOError(err)
	}
	if st.Code() == codes.DeadlineExceeded {
		return rpcerror.MarkTimedOut(errors.Wrap(err, "remote bootstrap RPC timed out"))
	}

	vals := trailer.Get(remoteErrorTrailerKey)
	if len(vals) == 0 {
		return rpcerror.MarkInvalidArgument(errors.Wrapf(err, "unable to decode remote bootstrap RPC error message: %s", st.Message()))
	}
	var rbErr tcpb.RemoteBootstrapError
	if decErr := gob.NewDecoder(bytes.NewReader([]byte(vals[0]))).Decode(&rbErr); decErr != nil {
		return rpcerror.MarkInvalidArgument(errors.Wrapf(err, "unable to decode remote bootstrap RPC error message: %s", st.Message()))
	}

	wrapped := errors.Wrapf(err, "received error code %s from remote service: %s", rbErr.Code, rbErr.Message)
	switch rbErr.Code {
	case tcpb.ErrTabletNotFoundError:
		return rpcerror.MarkNotFound(wrapped)
	case tcpb.ErrInvalidRemoteBootstrapRequestError:
		return rpcerror.MarkInvalidArgument(wrapped)
	case tcpb.ErrNoSessionError:
		return rpcerror.MarkIllegalState(wrapped)
	default:
		return rpcerror.MarkRemoteError(wrapped)
	}
}
