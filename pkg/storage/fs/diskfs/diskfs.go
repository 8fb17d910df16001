// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package diskfs adapts github.com/cockroachdb/pebble/vfs.FS to this
// module's fs.Env and fs.BlockManager interfaces, so that WAL segments
// and data blocks land on real disk through the same filesystem
// dependency the teacher already carries for its storage engine (see
// pkg/storage/fs/min_version.go in the teacher, which takes a vfs.FS
// directly rather than the stdlib os package).
package diskfs

import (
	"context"
	"os"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/google/uuid"

	"github.com/zhdk123456/kudu/pkg/storage/fs"
)

// Env adapts a vfs.FS to fs.Env.
type Env struct {
	FS vfs.FS
}

// New wraps fsys as an fs.Env.
func New(fsys vfs.FS) *Env {
	return &Env{FS: fsys}
}

var _ fs.Env = (*Env)(nil)

// FileExists implements fs.Env.
func (e *Env) FileExists(path string) (bool, error) {
	_, err := e.FS.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// DeleteRecursively implements fs.Env.
func (e *Env) DeleteRecursively(path string) error {
	return e.FS.RemoveAll(path)
}

// CreateDir implements fs.Env.
func (e *Env) CreateDir(path string) error {
	return e.FS.MkdirAll(path, 0755)
}

// SyncDir implements fs.Env by opening the directory and syncing it, the
// same pattern the teacher uses to fsync a parent directory after
// creating a file or subdirectory within it.
func (e *Env) SyncDir(path string) error {
	d, err := e.FS.OpenDir(path)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}

// NewWritableFile implements fs.Env.
func (e *Env) NewWritableFile(
	ctx context.Context, opts fs.WritableFileOptions, path string,
) (fs.WritableFile, error) {
	f, err := e.FS.Create(path, vfs.WriteCategoryUnspecified)
	if err != nil {
		return nil, err
	}
	return &writableFile{f: f, syncOnClose: opts.SyncOnClose}, nil
}

// Rename implements fs.Env using vfs.FS's native atomic rename.
func (e *Env) Rename(oldPath, newPath string) error {
	return e.FS.Rename(oldPath, newPath)
}

// PathJoin implements fs.Env.
func (e *Env) PathJoin(elem ...string) string { return e.FS.PathJoin(elem...) }

// PathDir implements fs.Env.
func (e *Env) PathDir(path string) string { return e.FS.PathDir(path) }

type writableFile struct {
	f           vfs.File
	syncOnClose bool
}

func (w *writableFile) Append(data []byte) error {
	_, err := w.f.Write(data)
	return err
}

func (w *writableFile) Close() error {
	if w.syncOnClose {
		if err := w.f.Sync(); err != nil {
			_ = w.f.Close()
			return err
		}
	}
	return w.f.Close()
}

// BlockManager mints local block ids and stores each block as a single
// file under root, named by the id.
type BlockManager struct {
	FS   vfs.FS
	Root string
}

// NewBlockManager returns a BlockManager rooted at root. The caller must
// ensure root exists.
func NewBlockManager(fsys vfs.FS, root string) *BlockManager {
	return &BlockManager{FS: fsys, Root: root}
}

var _ fs.BlockManager = (*BlockManager)(nil)

// CreateNewBlock implements fs.BlockManager, minting a fresh random id
// for each call (never reused, never derived from caller input).
func (m *BlockManager) CreateNewBlock(ctx context.Context) (fs.WritableBlock, error) {
	id := fs.BlockID(uuid.New().String())
	path := m.FS.PathJoin(m.Root, string(id))
	f, err := m.FS.Create(path, vfs.WriteCategoryUnspecified)
	if err != nil {
		return nil, err
	}
	return &writableBlock{f: f, id: id}, nil
}

type writableBlock struct {
	f  vfs.File
	id fs.BlockID
}

func (b *writableBlock) Append(data []byte) error {
	_, err := b.f.Write(data)
	return err
}

func (b *writableBlock) Close() error {
	if err := b.f.Sync(); err != nil {
		_ = b.f.Close()
		return err
	}
	return b.f.Close()
}

func (b *writableBlock) ID() fs.BlockID { return b.id }
