// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package consensus

import (
	"context"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/require"

	"github.com/zhdk123456/kudu/pkg/storage/fs/diskfs"
)

func readRecord(t *testing.T, fsys vfs.FS, path string) []byte {
	t.Helper()
	f, err := fsys.Open(path)
	require.NoError(t, err)
	defer f.Close()
	buf := make([]byte, 1<<20)
	n, err := f.Read(buf)
	require.NoError(t, err)
	return buf[:n]
}

func TestCreateAndDecodeRoundTrip(t *testing.T) {
	fsys := vfs.NewMem()
	env := diskfs.New(fsys)
	require.NoError(t, env.CreateDir("/data"))

	config := RaftConfig{Peers: []Peer{
		{PermanentUUID: "uuid-1", LastKnownAddr: "host1:1"},
		{PermanentUUID: "uuid-2", LastKnownAddr: "host2:2"},
	}}

	created, err := Create(context.Background(), env, "/data/consensus-meta", "uuid-1", config, 7)
	require.NoError(t, err)
	require.Equal(t, "uuid-1", created.ThisUUID)

	decoded, err := Decode(readRecord(t, fsys, "/data/consensus-meta"))
	require.NoError(t, err)
	require.Equal(t, "uuid-1", decoded.ThisUUID)
	require.Equal(t, uint64(7), decoded.Term)
	require.Equal(t, config, decoded.Config)
}

func TestCreateRejectsEmptyLocalUUID(t *testing.T) {
	env := diskfs.New(vfs.NewMem())
	require.NoError(t, env.CreateDir("/data"))
	_, err := Create(context.Background(), env, "/data/consensus-meta", "", RaftConfig{}, 0)
	require.Error(t, err)
}

func TestDecodeRejectsTooShortRecord(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDecodeRejectsChecksumMismatch(t *testing.T) {
	fsys := vfs.NewMem()
	env := diskfs.New(fsys)
	require.NoError(t, env.CreateDir("/data"))

	_, err := Create(context.Background(), env, "/data/consensus-meta", "uuid-1", RaftConfig{}, 3)
	require.NoError(t, err)

	data := readRecord(t, fsys, "/data/consensus-meta")
	corrupted := append([]byte(nil), data...)
	corrupted[0] ^= 0xff

	_, err = Decode(corrupted)
	require.Error(t, err)
}
