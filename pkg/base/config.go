// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package base holds the plain configuration structs consumed by the
// tablet copy client. It carries no flag-parsing or CLI machinery: this
// module is a library embedded by a tablet server process, not a
// standalone binary.
package base

import (
	"time"

	"google.golang.org/grpc"
)

// DefaultRemoteBootstrapBeginSessionTimeout is the default deadline used
// for BeginSession and EndSession RPCs.
const DefaultRemoteBootstrapBeginSessionTimeout = 10 * time.Second

// DefaultRPCMaxMessageSize mirrors the teacher's default gRPC message
// cap; FetchData chunks are sized against it minus a header margin.
const DefaultRPCMaxMessageSize = 64 << 20 // 64 MiB

// DefaultFetchTimeout is the per-chunk FetchData deadline used when the
// remote's BeginSession response carries no session idle timeout; it is
// applied afresh to every chunk rather than covering a whole file.
const DefaultFetchTimeout = 30 * time.Second

// Config carries the tunables the tablet copy client needs from its host
// process. Every field has a documented default; a zero Config is not
// usable and must be completed by NewConfig.
type Config struct {
	// RemoteBootstrapBeginSessionTimeout bounds BeginSession and
	// EndSession RPCs (spec §6.4 remote_bootstrap_begin_session_timeout_ms).
	RemoteBootstrapBeginSessionTimeout time.Duration

	// RPCMaxMessageSize bounds the size of a single FetchData chunk; the
	// streaming fetcher requests max_length = RPCMaxMessageSize - 1024.
	RPCMaxMessageSize int64

	// FetchTimeout bounds each individual FetchData call, reset fresh for
	// every chunk of every file, but only when the remote's BeginSession
	// response carries no session idle timeout; otherwise that session
	// value is the per-chunk deadline.
	FetchTimeout time.Duration

	// DialOptions are passed through to grpc.DialContext when connecting
	// to the leader peer (credentials, keepalive, interceptors, ...).
	DialOptions []grpc.DialOption
}

// NewConfig returns a Config with every documented default filled in.
func NewConfig() *Config {
	return &Config{
		RemoteBootstrapBeginSessionTimeout: DefaultRemoteBootstrapBeginSessionTimeout,
		RPCMaxMessageSize:                  DefaultRPCMaxMessageSize,
		FetchTimeout:                       DefaultFetchTimeout,
	}
}

// FetchMaxLength returns the max_length used for FetchData requests,
// reserving a 1 KiB margin for response headers (spec §4.4).
func (c *Config) FetchMaxLength() int64 {
	const headerMargin = 1024
	if c.RPCMaxMessageSize <= headerMargin {
		return 0
	}
	return c.RPCMaxMessageSize - headerMargin
}
