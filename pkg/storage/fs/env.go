// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package fs defines the filesystem and block-manager abstractions the
// tablet copy client consumes (spec §6.1's FsManager / Filesystem / env
// collaborators). Concrete implementations live in subpackages: diskfs
// wraps github.com/cockroachdb/pebble/vfs for real disk I/O; tests use
// pebble's vfs.NewMem() directly rather than a second bespoke fake.
package fs

import "context"

// WritableFileOptions mirrors the options accepted by NewWritableFile.
// SyncOnClose, when true, requires the returned WritableFile to fsync
// its contents as part of Close.
type WritableFileOptions struct {
	SyncOnClose bool
}

// WritableFile is an append-only file handle. Appends are sequential;
// there is no random-access write path because the streaming fetcher
// never seeks.
type WritableFile interface {
	Append(data []byte) error
	Close() error
}

// Env is the local filesystem collaborator. Every method may block on
// real disk I/O; there is no async variant.
type Env interface {
	FileExists(path string) (bool, error)
	DeleteRecursively(path string) error
	CreateDir(path string) error
	// SyncDir fsyncs the directory named by path (used on the parent of a
	// freshly created directory, per spec §3's WAL segment lifecycle).
	SyncDir(path string) error
	NewWritableFile(ctx context.Context, opts WritableFileOptions, path string) (WritableFile, error)
	// Rename atomically replaces newPath with oldPath's contents (spec
	// §4.5.4's "atomic with respect to crash recovery" requirement on
	// ReplaceSuperBlock). A crash at any point leaves either the old or
	// the new file at newPath, never a partially written one.
	Rename(oldPath, newPath string) error
	PathJoin(elem ...string) string
	PathDir(path string) string
}
