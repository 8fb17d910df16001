// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tablet

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/cockroachdb/errors"

	"github.com/zhdk123456/kudu/pkg/storage/fs"
)

// Metadata is the tablet metadata store collaborator spec §6.1 lists as
// external: tablet_id(), remote_bootstrap_state(), ReplaceSuperBlock().
// DiskMetadata below is this module's own reference implementation,
// supplied because the end-to-end scenarios in spec §8 need a concrete
// collaborator to assert against; a host process is free to supply its
// own instead.
type Metadata interface {
	TabletID() string
	RemoteBootstrapState() RemoteBootstrapState
	// ReplaceSuperBlock is the single atomic cutover point (spec §4.5.4):
	// it must durably install sb and transition the tablet from COPYING
	// to DONE, or fail leaving the tablet exactly as it was.
	ReplaceSuperBlock(ctx context.Context, sb *SuperBlock) error
}

// DiskMetadata is a durable, file-backed Metadata. The superblock is
// written to a temporary file and atomically renamed over the live
// path via fs.Env.Rename, so a crash either leaves the previous
// superblock in place or the new one — never a partially written file
// (spec §4.5.4's atomicity requirement).
type DiskMetadata struct {
	env   fs.Env
	path  string
	id    string
	state RemoteBootstrapState
}

// NewDiskMetadata creates the on-disk record for a tablet about to
// undergo a bootstrap copy. Per spec §3 invariant 6, the tablet starts
// the run in COPYING.
func NewDiskMetadata(env fs.Env, path, tabletID string) *DiskMetadata {
	return &DiskMetadata{env: env, path: path, id: tabletID, state: StateCopying}
}

var _ Metadata = (*DiskMetadata)(nil)

// TabletID implements Metadata.
func (m *DiskMetadata) TabletID() string { return m.id }

// RemoteBootstrapState implements Metadata.
func (m *DiskMetadata) RemoteBootstrapState() RemoteBootstrapState { return m.state }

// ReplaceSuperBlock implements Metadata.
func (m *DiskMetadata) ReplaceSuperBlock(ctx context.Context, sb *SuperBlock) error {
	if sb == nil {
		return errors.AssertionFailedf("ReplaceSuperBlock called with a nil superblock")
	}
	if len(sb.OrphanedBlocks) != 0 {
		return errors.AssertionFailedf("ReplaceSuperBlock called with a non-empty orphan list")
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(sb); err != nil {
		return errors.Wrap(err, "encoding superblock")
	}

	tmpPath := m.path + ".tmp"
	f, err := m.env.NewWritableFile(ctx, fs.WritableFileOptions{SyncOnClose: true}, tmpPath)
	if err != nil {
		return errors.Wrap(err, "opening temporary superblock file")
	}
	if err := f.Append(buf.Bytes()); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "writing temporary superblock file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing temporary superblock file")
	}

	if err := m.env.Rename(tmpPath, m.path); err != nil {
		return errors.Wrap(err, "installing new superblock file")
	}

	m.state = StateDone
	return nil
}
