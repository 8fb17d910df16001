// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package diskfs

import (
	"context"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/require"

	"github.com/zhdk123456/kudu/pkg/storage/fs"
)

func TestEnvWritableFileAppendsSequentially(t *testing.T) {
	fsys := vfs.NewMem()
	env := New(fsys)

	f, err := env.NewWritableFile(context.Background(), fs.WritableFileOptions{SyncOnClose: true}, "/segment-1")
	require.NoError(t, err)
	require.NoError(t, f.Append([]byte("hello ")))
	require.NoError(t, f.Append([]byte("world")))
	require.NoError(t, f.Close())

	exists, err := env.FileExists("/segment-1")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestEnvFileExistsFalseForMissingPath(t *testing.T) {
	env := New(vfs.NewMem())
	exists, err := env.FileExists("/nope")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestEnvDeleteRecursivelyRemovesDirTree(t *testing.T) {
	fsys := vfs.NewMem()
	env := New(fsys)
	require.NoError(t, env.CreateDir("/a/b/c"))
	_, err := fsys.Create("/a/b/c/file", vfs.WriteCategoryUnspecified)
	require.NoError(t, err)

	require.NoError(t, env.DeleteRecursively("/a"))
	exists, err := env.FileExists("/a/b/c/file")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestBlockManagerMintsDistinctIDs(t *testing.T) {
	fsys := vfs.NewMem()
	env := New(fsys)
	require.NoError(t, env.CreateDir("/blocks"))
	bm := NewBlockManager(fsys, "/blocks")

	b1, err := bm.CreateNewBlock(context.Background())
	require.NoError(t, err)
	b2, err := bm.CreateNewBlock(context.Background())
	require.NoError(t, err)

	require.NotEqual(t, b1.ID(), b2.ID())
	require.NoError(t, b1.Append([]byte("block one")))
	require.NoError(t, b1.Close())
	require.NoError(t, b2.Append([]byte("block two")))
	require.NoError(t, b2.Close())
}
