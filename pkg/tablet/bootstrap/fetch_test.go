// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhdk123456/kudu/pkg/tablet/tcpb"
	"github.com/zhdk123456/kudu/pkg/tablet/tcrpc/tcrpcfake"
	"github.com/zhdk123456/kudu/pkg/util/crc32c"
)

type memSink struct {
	data []byte
}

func (s *memSink) Append(data []byte) error {
	s.data = append(s.data, data...)
	return nil
}

func chunkFor(offset uint64, data []byte, total uint64) tcpb.FetchDataResponse {
	return tcpb.FetchDataResponse{
		Chunk: tcpb.DataChunk{
			Offset:          offset,
			TotalDataLength: total,
			Data:            data,
			CRC32:           crc32c.Checksum(data),
		},
	}
}

// TestDownloadFileReassemblesChunks covers S6: a file split into
// [4MiB, 4MiB, 2MiB-7, 7] byte chunks reassembles into the original
// bytes, in order.
func TestDownloadFileReassemblesChunks(t *testing.T) {
	sizes := []int{4 << 20, 4 << 20, (2 << 20) - 7, 7}
	whole := make([]byte, 0)
	for i, n := range sizes {
		chunk := make([]byte, n)
		for j := range chunk {
			chunk[j] = byte((i*31 + j) % 256)
		}
		whole = append(whole, chunk...)
	}

	proxy := tcrpcfake.New()
	dataID := tcpb.DataId{Type: tcpb.DataIdBlock, BlockID: "remote-block-1"}
	key := tcrpcfake.DataIDKey(dataID)

	var offset uint64
	var results []tcrpcfake.FetchResult
	for _, n := range sizes {
		results = append(results, tcrpcfake.FetchResult{
			Resp: ptr(chunkFor(offset, whole[offset:offset+uint64(n)], uint64(len(whole)))),
		})
		offset += uint64(n)
	}
	proxy.Chunks[key] = results

	dst := &memSink{}
	err := downloadFile(context.Background(), proxy, "session-1", time.Second, 8<<20, dataID, dst)
	require.NoError(t, err)
	require.Equal(t, whole, dst.data)
}

// TestDownloadFileDetectsCorruption covers S2: a chunk whose CRC32C does
// not match its data aborts the download with a Corruption error.
func TestDownloadFileDetectsCorruption(t *testing.T) {
	proxy := tcrpcfake.New()
	dataID := tcpb.DataId{Type: tcpb.DataIdBlock, BlockID: "remote-block-2"}
	key := tcrpcfake.DataIDKey(dataID)

	resp := chunkFor(0, []byte("hello"), 5)
	resp.Chunk.CRC32 ^= 0xffffffff // flip every bit, guaranteed mismatch
	proxy.Chunks[key] = []tcrpcfake.FetchResult{{Resp: &resp}}

	dst := &memSink{}
	err := downloadFile(context.Background(), proxy, "session-1", time.Second, 8<<20, dataID, dst)
	require.Error(t, err)
	require.True(t, IsCorruption(err))
	require.Contains(t, err.Error(), "Error validating data item")
}

// TestDownloadFileDetectsOffsetSkew covers S3: the remote hands back a
// chunk starting at an offset the client did not ask for.
func TestDownloadFileDetectsOffsetSkew(t *testing.T) {
	proxy := tcrpcfake.New()
	dataID := tcpb.DataId{Type: tcpb.DataIdBlock, BlockID: "remote-block-3"}
	key := tcrpcfake.DataIDKey(dataID)

	resp := chunkFor(100, []byte("hello"), 200)
	proxy.Chunks[key] = []tcrpcfake.FetchResult{{Resp: &resp}}

	dst := &memSink{}
	err := downloadFile(context.Background(), proxy, "session-1", time.Second, 8<<20, dataID, dst)
	require.Error(t, err)
	require.True(t, IsInvalidArgument(err))
	require.Contains(t, err.Error(), "Error validating data item")
	require.Contains(t, err.Error(), "Offset did not match what was asked for: 0 vs 100")
}

func ptr(r tcpb.FetchDataResponse) *tcpb.FetchDataResponse { return &r }
