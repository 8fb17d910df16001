// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package consensus holds the committed Raft configuration/term shapes
// the bootstrap client receives from the remote and the durable local
// consensus metadata record it writes before the superblock swap (spec
// §3's initial_committed_consensus_state, §4.5.3 WriteConsensusMetadata).
package consensus

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"

	"github.com/cockroachdb/errors"

	"github.com/zhdk123456/kudu/pkg/storage/fs"
	"github.com/zhdk123456/kudu/pkg/util/crc32c"
)

// Peer is one member of a replication group.
type Peer struct {
	PermanentUUID string
	// LastKnownAddr is host:port, empty if the remote never learned it.
	LastKnownAddr string
}

// RaftConfig is the set of peers a committed configuration names.
type RaftConfig struct {
	Peers []Peer
}

// State is the committed consensus state received from the remote at
// session begin (spec §3's initial_committed_consensus_state /
// committed_cstate): a configuration, the term it was committed under,
// and (for the remote's own state, used by the peer locator) a leader.
type State struct {
	Config      RaftConfig
	CurrentTerm uint64
	LeaderUUID  string
}

// Metadata is the durable local consensus record a tablet server
// consults to re-enter its replication group after a bootstrap (spec
// §6.1's ConsensusMetadata collaborator).
type Metadata struct {
	ThisUUID string
	Config   RaftConfig
	Term     uint64
}

// record is the on-disk encoding: a gob payload plus a CRC32C footer so
// a truncated or bit-flipped metadata file is detected rather than
// silently mis-parsed.
type record struct {
	ThisUUID string
	Config   RaftConfig
	Term     uint64
}

// Create durably writes the local consensus metadata record for a tablet
// at path, using thisUUID as the local server's identity and config/term
// as the committed configuration received from the remote (spec
// §4.5.3). This must complete before ReplaceSuperBlock runs.
func Create(
	ctx context.Context,
	env fs.Env,
	path string,
	thisUUID string,
	config RaftConfig,
	term uint64,
) (*Metadata, error) {
	if thisUUID == "" {
		return nil, errors.AssertionFailedf("consensus.Create called with an empty local uuid")
	}

	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(record{ThisUUID: thisUUID, Config: config, Term: term}); err != nil {
		return nil, errors.Wrap(err, "encoding consensus metadata")
	}

	checksum := crc32c.Checksum(payload.Bytes())
	var out bytes.Buffer
	out.Write(payload.Bytes())
	var footer [4]byte
	binary.LittleEndian.PutUint32(footer[:], checksum)
	out.Write(footer[:])

	f, err := env.NewWritableFile(ctx, fs.WritableFileOptions{SyncOnClose: true}, path)
	if err != nil {
		return nil, errors.Wrap(err, "opening consensus metadata file")
	}
	if err := f.Append(out.Bytes()); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "writing consensus metadata file")
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, "closing consensus metadata file")
	}

	return &Metadata{ThisUUID: thisUUID, Config: config, Term: term}, nil
}

// Decode parses a record previously written by Create, verifying its
// CRC32C footer.
func Decode(data []byte) (*Metadata, error) {
	if len(data) < 4 {
		return nil, errors.New("consensus metadata record too short")
	}
	payload, footer := data[:len(data)-4], data[len(data)-4:]
	want := binary.LittleEndian.Uint32(footer)
	if got := crc32c.Checksum(payload); got != want {
		return nil, errors.Newf("consensus metadata checksum mismatch: got %d want %d", got, want)
	}
	var r record
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "decoding consensus metadata")
	}
	return &Metadata{ThisUUID: r.ThisUUID, Config: r.Config, Term: r.Term}, nil
}
