// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package rpcerror defines the error-kind taxonomy spec §7 requires
// (NotFound, InvalidArgument, IllegalState, Corruption, RemoteError,
// IOError, TimedOut), shared between the transport layer
// (pkg/tablet/tcrpc, which classifies failures as they cross the wire)
// and pkg/tablet/bootstrap (which classifies errors raised locally
// during the artifact-install phases). A single set of sentinels lives
// here so both layers mark and test the same taxonomy rather than each
// inventing its own, which would make errors.Is checks useless across
// the package boundary.
package rpcerror

import "github.com/cockroachdb/errors"

// The kinds below are marker sentinels; callers test membership with
// errors.Is (or the Is* predicates below) rather than type-asserting a
// concrete error type, the same pattern pkg/jobs/errors.go uses for
// MarkAsRetryJobError/IsPermanentJobError.
var (
	errNotFoundSentinel        = errors.New("not found")
	errInvalidArgumentSentinel = errors.New("invalid argument")
	errIllegalStateSentinel    = errors.New("illegal state")
	errCorruptionSentinel      = errors.New("corruption")
	errRemoteErrorSentinel     = errors.New("remote error")
	errIOErrorSentinel         = errors.New("io error")
	errTimedOutSentinel        = errors.New("timed out")
)

// MarkNotFound marks err as NotFound (spec §7: leader absent from a
// committed configuration, tablet absent on the remote).
func MarkNotFound(err error) error { return errors.Mark(err, errNotFoundSentinel) }

// MarkInvalidArgument marks err as InvalidArgument (spec §7: missing
// peer address, offset mismatch, undecodable remote error, malformed
// request).
func MarkInvalidArgument(err error) error { return errors.Mark(err, errInvalidArgumentSentinel) }

// MarkIllegalState marks err as IllegalState (spec §7: remote itself
// COPYING, no open session on the remote).
func MarkIllegalState(err error) error { return errors.Mark(err, errIllegalStateSentinel) }

// MarkCorruption marks err as Corruption (spec §7: CRC mismatch).
func MarkCorruption(err error) error { return errors.Mark(err, errCorruptionSentinel) }

// MarkRemoteError marks err as RemoteError (spec §7: the remote
// reported a service-side failure with no more specific code).
func MarkRemoteError(err error) error { return errors.Mark(err, errRemoteErrorSentinel) }

// MarkIOError marks err as IOError (spec §7: local disk I/O, dial
// failure, bare transport failure).
func MarkIOError(err error) error { return errors.Mark(err, errIOErrorSentinel) }

// MarkTimedOut marks err as TimedOut (spec §7: an RPC deadline was
// exceeded, locally or on the remote).
func MarkTimedOut(err error) error { return errors.Mark(err, errTimedOutSentinel) }

// NewNotFound builds a freshly marked NotFound error.
func NewNotFound(format string, args ...interface{}) error {
	return MarkNotFound(errors.Newf(format, args...))
}

// NewInvalidArgument builds a freshly marked InvalidArgument error.
func NewInvalidArgument(format string, args ...interface{}) error {
	return MarkInvalidArgument(errors.Newf(format, args...))
}

// NewIllegalState builds a freshly marked IllegalState error.
func NewIllegalState(format string, args ...interface{}) error {
	return MarkIllegalState(errors.Newf(format, args...))
}

// NewCorruption builds a freshly marked Corruption error.
func NewCorruption(format string, args ...interface{}) error {
	return MarkCorruption(errors.Newf(format, args...))
}

// IsNotFound reports whether err (or any error it wraps) is NotFound.
func IsNotFound(err error) bool { return errors.Is(err, errNotFoundSentinel) }

// IsInvalidArgument reports whether err (or any error it wraps) is
// InvalidArgument.
func IsInvalidArgument(err error) bool { return errors.Is(err, errInvalidArgumentSentinel) }

// IsIllegalState reports whether err (or any error it wraps) is
// IllegalState.
func IsIllegalState(err error) bool { return errors.Is(err, errIllegalStateSentinel) }

// IsCorruption reports whether err (or any error it wraps) is
// Corruption.
func IsCorruption(err error) bool { return errors.Is(err, errCorruptionSentinel) }

// IsRemoteError reports whether err (or any error it wraps) is
// RemoteError.
func IsRemoteError(err error) bool { return errors.Is(err, errRemoteErrorSentinel) }

// IsIOError reports whether err (or any error it wraps) is IOError.
func IsIOError(err error) bool { return errors.Is(err, errIOErrorSentinel) }

// IsTimedOut reports whether err (or any error it wraps) is TimedOut.
func IsTimedOut(err error) bool { return errors.Is(err, errTimedOutSentinel) }
