// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package bootstrap

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/zhdk123456/kudu/pkg/tablet/tcpb"
	"github.com/zhdk123456/kudu/pkg/tablet/tcrpc"
	"github.com/zhdk123456/kudu/pkg/util/crc32c"
	"github.com/zhdk123456/kudu/pkg/util/log"
)

// sink is the small append-only capability the streaming fetcher writes
// through (Design Notes "Generic sink"). Both a WAL segment file and a
// newly-created data block satisfy it.
type sink interface {
	Append(data []byte) error
}

// downloadFile is the Streaming Fetcher (spec §4.4): it issues
// chunked FetchData calls against dataID until the server's declared
// total_data_length has been covered, verifying every chunk's offset and
// CRC32C before appending it to dst. There is no per-chunk retry: any
// transport error, offset mismatch, or CRC mismatch aborts the whole
// file immediately (spec §4.4 "Failure semantics").
func downloadFile(
	ctx context.Context,
	proxy tcrpc.Proxy,
	sessionID string,
	fetchTimeout time.Duration,
	maxLength int64,
	dataID tcpb.DataId,
	dst sink,
) error {
	var offset uint64
	for {
		log.VEventf(ctx, 2, "Fetching data item %+v at offset %d", dataID, offset)
		callCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		resp, err := proxy.FetchData(callCtx, &tcpb.FetchDataRequest{
			SessionID: sessionID,
			DataID:    dataID,
			Offset:    offset,
			MaxLength: maxLength,
		})
		cancel()
		if err != nil {
			// err is already classified (NotFound, TimedOut,
			// InvalidArgument, RemoteError, ...) by the transport
			// layer's unwindRemoteError; add context without
			// overwriting its kind.
			return errors.Wrap(err, "unable to fetch data from remote")
		}

		if err := verifyChunk(offset, resp.Chunk); err != nil {
			return errors.Wrapf(err, "Error validating data item %+v", dataID)
		}

		if err := dst.Append(resp.Chunk.Data); err != nil {
			return markIOError(errors.Wrap(err, "appending fetched data"))
		}

		offset += uint64(len(resp.Chunk.Data))
		if offset == resp.Chunk.TotalDataLength {
			return nil
		}
	}
}

// verifyChunk checks a fetched chunk's reported offset against what the
// client expected, then its CRC32C against its own data (spec §4.4
// step 2, S2/S3 scenarios).
func verifyChunk(expectedOffset uint64, chunk tcpb.DataChunk) error {
	if expectedOffset != chunk.Offset {
		return newInvalidArgument("Offset did not match what was asked for: %d vs %d", expectedOffset, chunk.Offset)
	}
	if got := crc32c.Checksum(chunk.Data); got != chunk.CRC32 {
		return newCorruption(
			"CRC32 does not match at offset %d size %d: %d vs %d",
			chunk.Offset, len(chunk.Data), got, chunk.CRC32,
		)
	}
	return nil
}
