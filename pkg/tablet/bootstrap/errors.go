// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package bootstrap

import "github.com/zhdk123456/kudu/pkg/tablet/rpcerror"

// The local helpers below produce errors in the kinds this package
// itself raises directly (NotFound, InvalidArgument, IllegalState,
// Corruption, IOError); RemoteError and TimedOut are produced by the
// transport layer (pkg/tablet/tcrpc) and reach callers already marked.
// Every kind shares one sentinel set, defined in pkg/tablet/rpcerror, so
// errors.Is/the Is* predicates below classify errors from either layer
// identically.

func markInvalidArgument(err error) error { return rpcerror.MarkInvalidArgument(err) }
func markIOError(err error) error         { return rpcerror.MarkIOError(err) }

// newNotFound builds a freshly marked NotFound error (spec §7: leader
// absent from a committed configuration).
func newNotFound(format string, args ...interface{}) error {
	return rpcerror.NewNotFound(format, args...)
}

// newInvalidArgument builds a freshly marked InvalidArgument error (spec
// §7: missing peer address, offset mismatch).
func newInvalidArgument(format string, args ...interface{}) error {
	return rpcerror.NewInvalidArgument(format, args...)
}

// newIllegalState builds a freshly marked IllegalState error (spec §7:
// remote itself COPYING, or a phase precondition violated).
func newIllegalState(format string, args ...interface{}) error {
	return rpcerror.NewIllegalState(format, args...)
}

// newCorruption builds a freshly marked Corruption error (spec §7: CRC
// mismatch).
func newCorruption(format string, args ...interface{}) error {
	return rpcerror.NewCorruption(format, args...)
}

// IsNotFound reports whether err (or any error it wraps) is NotFound.
func IsNotFound(err error) bool { return rpcerror.IsNotFound(err) }

// IsInvalidArgument reports whether err (or any error it wraps) is
// InvalidArgument.
func IsInvalidArgument(err error) bool { return rpcerror.IsInvalidArgument(err) }

// IsIllegalState reports whether err (or any error it wraps) is
// IllegalState.
func IsIllegalState(err error) bool { return rpcerror.IsIllegalState(err) }

// IsCorruption reports whether err (or any error it wraps) is
// Corruption.
func IsCorruption(err error) bool { return rpcerror.IsCorruption(err) }

// IsRemoteError reports whether err (or any error it wraps) is
// RemoteError. Errors of this kind originate in pkg/tablet/tcrpc, the
// RPC layer that talks to the remote peer.
func IsRemoteError(err error) bool { return rpcerror.IsRemoteError(err) }

// IsIOError reports whether err (or any error it wraps) is IOError.
func IsIOError(err error) bool { return rpcerror.IsIOError(err) }

// IsTimedOut reports whether err (or any error it wraps) is TimedOut.
// Errors of this kind originate in pkg/tablet/tcrpc, which classifies an
// exceeded RPC deadline this way (spec §7).
func IsTimedOut(err error) bool { return rpcerror.IsTimedOut(err) }
