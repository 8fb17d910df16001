// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package bootstrap

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/zhdk123456/kudu/pkg/consensus"
	"github.com/zhdk123456/kudu/pkg/storage/fs"
	"github.com/zhdk123456/kudu/pkg/tablet"
	"github.com/zhdk123456/kudu/pkg/tablet/tcpb"
	"github.com/zhdk123456/kudu/pkg/util/log"
)

// downloadWALs is the Artifact Installer's WAL phase (spec §4.5.1): the
// tablet's WAL directory is wiped and recreated, then every segment the
// remote named in BeginSessionResponse is fetched in order.
func (c *Client) downloadWALs(ctx context.Context) error {
	dir := c.walDir(c.tabletID)

	if err := c.env.DeleteRecursively(dir); err != nil {
		if exists, existsErr := c.env.FileExists(dir); existsErr == nil && exists {
			return markIOError(errors.Wrap(err, "clearing existing WAL directory"))
		}
	}
	if err := c.env.CreateDir(dir); err != nil {
		return markIOError(errors.Wrap(err, "creating WAL directory"))
	}
	if err := c.env.SyncDir(c.env.PathDir(dir)); err != nil {
		return markIOError(errors.Wrap(err, "fsyncing WAL directory's parent"))
	}

	total := len(c.walSeqnos)
	for i, seqno := range c.walSeqnos {
		updateStatus(c.statusSink, "Downloading WAL segment with seq. number %d (%d/%d)", seqno, i+1, total)
		log.Infof(ctx, "Downloading WAL segment with seq. number %d (%d/%d)", seqno, i+1, total)

		path := c.walSegmentFile(c.tabletID, seqno)
		f, err := c.env.NewWritableFile(ctx, fs.WritableFileOptions{SyncOnClose: true}, path)
		if err != nil {
			return markIOError(errors.Wrapf(err, "opening WAL segment file for seq. number %d", seqno))
		}

		dataID := tcpb.DataId{Type: tcpb.DataIdLogSegment, WALSegmentSeqno: seqno}
		if err := downloadFile(ctx, c.proxy, c.sessionID, c.fetchTimeout(), c.cfg.FetchMaxLength(), dataID, f); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "downloading WAL segment with seq. number %d", seqno)
		}
		if err := f.Close(); err != nil {
			return markIOError(errors.Wrapf(err, "closing WAL segment file for seq. number %d", seqno))
		}
	}
	return nil
}

// downloadBlocks is the Artifact Installer's block phase (spec §4.5.2).
// It works against a deep copy of the remote's superblock so that the
// original snapshot handed back by BeginSession is never mutated; the
// copy becomes c.newSuperblock only once every reference in it has been
// rewritten to a local block id.
func (c *Client) downloadBlocks(ctx context.Context) error {
	working := c.remoteSuperblock.DeepCopy()
	total := working.NumBlockRefs()
	done := 0

	for i := range working.RowSets {
		rs := &working.RowSets[i]
		err := rs.ForEachBlockRef(func(ref *tablet.BlockRef) error {
			return c.downloadOneBlock(ctx, ref, &done, total)
		})
		if err != nil {
			return err
		}
	}

	working.OrphanedBlocks = nil
	c.newSuperblock = working
	return nil
}

func (c *Client) downloadOneBlock(ctx context.Context, ref *tablet.BlockRef, done *int, total int) error {
	oldID := ref.BlockID
	*done++
	updateStatus(c.statusSink, "Downloading block %s (%d/%d)", oldID, *done, total)
	log.Infof(ctx, "Downloading block %s (%d/%d)", oldID, *done, total)

	block, err := c.blockMgr.CreateNewBlock(ctx)
	if err != nil {
		return markIOError(errors.Wrapf(err, "creating local block to receive remote block %s", oldID))
	}

	dataID := tcpb.DataId{Type: tcpb.DataIdBlock, BlockID: oldID}
	if err := downloadFile(ctx, c.proxy, c.sessionID, c.fetchTimeout(), c.cfg.FetchMaxLength(), dataID, block); err != nil {
		_ = block.Close()
		return errors.Wrapf(err, "downloading block %s", oldID)
	}
	if err := block.Close(); err != nil {
		return markIOError(errors.Wrapf(err, "closing local block received for remote block %s", oldID))
	}

	ref.BlockID = block.ID().String()
	return nil
}

// writeConsensusMetadata is the Artifact Installer's consensus phase
// (spec §4.5.3): it durably records the committed configuration the
// remote sent at BeginSession time, under this server's own permanent
// uuid. It must succeed before the superblock is swapped in, since the
// superblock alone does not let a tablet rejoin its replication group.
func (c *Client) writeConsensusMetadata(ctx context.Context) error {
	updateStatus(c.statusSink, "Writing consensus metadata")
	path := c.consensusMetaFile(c.tabletID)
	_, err := consensus.Create(ctx, c.env, path, c.permanentUUID, c.committedState.Config, c.committedState.CurrentTerm)
	if err != nil {
		return markIOError(err)
	}
	return nil
}
