// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package bootstrap is the Session Coordinator and Artifact Installer
// (spec §4.1, §4.5): it drives one remote-bootstrap run end to end. A
// Client is single-use: once RunRemoteBootstrap returns (success or
// failure), the instance must be discarded (spec §3 invariant 1, §4.5.6).
package bootstrap

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"

	"github.com/zhdk123456/kudu/pkg/base"
	"github.com/zhdk123456/kudu/pkg/consensus"
	"github.com/zhdk123456/kudu/pkg/storage/fs"
	"github.com/zhdk123456/kudu/pkg/tablet"
	"github.com/zhdk123456/kudu/pkg/tablet/tcpb"
	"github.com/zhdk123456/kudu/pkg/tablet/tcrpc"
	"github.com/zhdk123456/kudu/pkg/util/log"
)

// phase is the state variable spec §3/§4.5.6 describes.
type phase int

const (
	phaseNoSession phase = iota
	phaseSessionStarted
)

// Dialer abstracts tcrpc.Dial so tests can substitute an in-memory Proxy
// (tcrpc/tcrpcfake) without going through a real gRPC dial.
type Dialer func(ctx context.Context, addr string, opts ...grpc.DialOption) (tcrpc.Proxy, error)

// Client drives a single bootstrap run (spec §4.1's Session
// Coordinator). Construct one per bootstrap attempt with NewClient.
type Client struct {
	env               fs.Env
	blockMgr          fs.BlockManager
	walDir            func(tabletID string) string
	walSegmentFile    func(tabletID string, seqno uint64) string
	consensusMetaFile func(tabletID string) string
	permanentUUID     string
	cfg               *base.Config
	dial              Dialer

	phase      phase
	tabletID   string
	proxy      tcrpc.Proxy
	statusSink StatusSink

	sessionID               string
	sessionIdleTimeoutMillis int64
	walSeqnos               []uint64
	committedState          consensus.State

	// remoteSuperblock is the untouched snapshot the remote returned; it
	// is never mutated (Design Notes "Working copy before commit").
	remoteSuperblock *tablet.SuperBlock
	// newSuperblock becomes non-nil only once every block reference has
	// been rewritten to a local id (spec §3 invariant 2).
	newSuperblock *tablet.SuperBlock
}

// NewClient constructs a Client (spec §6.2's exposed
// RemoteBootstrapClient constructor).
func NewClient(
	env fs.Env,
	blockMgr fs.BlockManager,
	walDir func(tabletID string) string,
	walSegmentFile func(tabletID string, seqno uint64) string,
	consensusMetaFile func(tabletID string) string,
	permanentUUID string,
	cfg *base.Config,
) *Client {
	return &Client{
		env:               env,
		blockMgr:          blockMgr,
		walDir:            walDir,
		walSegmentFile:    walSegmentFile,
		consensusMetaFile: consensusMetaFile,
		permanentUUID:     permanentUUID,
		cfg:               cfg,
		dial:              tcrpc.Dial,
		phase:             phaseNoSession,
	}
}

// WithDialer overrides how the client connects to the leader peer. Tests
// use this to inject an in-process tcrpc.Proxy.
func (c *Client) WithDialer(d Dialer) *Client {
	c.dial = d
	return c
}

// RunRemoteBootstrap is the Session Coordinator's top-level operation
// (spec §4.1). meta must be in COPYING; on success meta transitions to
// DONE via ReplaceSuperBlock and the tablet is locally usable.
func (c *Client) RunRemoteBootstrap(
	ctx context.Context, meta tablet.Metadata, cstate consensus.State, sink StatusSink,
) error {
	if sink == nil {
		sink = noopSink{}
	}
	if meta.RemoteBootstrapState() != tablet.StateCopying {
		return newIllegalState(
			"RunRemoteBootstrap called on tablet %s in state %s, want COPYING",
			meta.TabletID(), meta.RemoteBootstrapState())
	}

	if err := c.beginSession(ctx, meta.TabletID(), cstate, sink); err != nil {
		log.Errorf(ctx, "Unable to begin remote bootstrap session for tablet %s: %v", meta.TabletID(), err)
		return errors.Wrap(err, "Unable to begin remote bootstrap session")
	}
	if err := c.downloadWALs(ctx); err != nil {
		log.Errorf(ctx, "Unable to download WAL segments for tablet %s: %v", c.tabletID, err)
		return errors.Wrap(err, "Unable to download WAL segments")
	}
	if err := c.downloadBlocks(ctx); err != nil {
		log.Errorf(ctx, "Unable to download blocks for tablet %s: %v", c.tabletID, err)
		return errors.Wrap(err, "Unable to download blocks")
	}
	if err := c.writeConsensusMetadata(ctx); err != nil {
		log.Errorf(ctx, "Unable to write consensus metadata for tablet %s: %v", c.tabletID, err)
		return errors.Wrap(err, "Unable to write consensus metadata")
	}

	log.Infof(ctx, "Tablet %s remote bootstrap complete. Replacing superblock.", c.tabletID)
	updateStatus(sink, "Replacing tablet superblock")
	if err := meta.ReplaceSuperBlock(ctx, c.newSuperblock); err != nil {
		log.Errorf(ctx, "Unable to replace superblock for tablet %s: %v", c.tabletID, err)
		return errors.Wrap(err, "Unable to replace tablet superblock")
	}

	// Best-effort: ending the session only releases remote anchors. Its
	// failure does not unwind the bootstrap that already succeeded
	// (spec §4.1 step 6, §7 "Non-fatal conditions").
	if err := c.endSession(ctx, true); err != nil {
		log.Warningf(ctx, "Failure ending remote bootstrap session: %v", err)
	}

	return nil
}

func (c *Client) beginSession(
	ctx context.Context, tabletID string, cstate consensus.State, sink StatusSink,
) error {
	if c.phase != phaseNoSession {
		return newIllegalState("beginSession called twice on the same Client")
	}
	c.tabletID = tabletID
	c.statusSink = sink

	updateStatus(sink, "Initializing remote bootstrap")

	leader, err := ExtractLeader(cstate)
	if err != nil {
		return errors.Wrapf(err, "cannot find leader tablet in config to remotely bootstrap from: %+v", cstate)
	}
	addr, err := ResolveAddr(leader)
	if err != nil {
		return err
	}

	log.Infof(ctx, "Beginning remote bootstrap session on tablet %s from leader %s", tabletID, addr)
	updateStatus(sink, "Beginning remote bootstrap session with leader "+addr)

	proxy, err := c.dial(ctx, addr, c.cfg.DialOptions...)
	if err != nil {
		return markIOError(err)
	}
	c.proxy = proxy

	beginCtx, cancel := context.WithTimeout(ctx, c.cfg.RemoteBootstrapBeginSessionTimeout)
	defer cancel()

	resp, err := c.proxy.BeginSession(beginCtx, &tcpb.BeginSessionRequest{
		RequestorUUID: c.permanentUUID,
		TabletID:      tabletID,
	})
	if err != nil {
		return err
	}

	if tablet.RemoteBootstrapState(resp.SuperBlock.RemoteBootstrapState) != tablet.StateDone {
		return newIllegalState(
			"leader of config (%+v) is currently remotely bootstrapping itself! (%+v)", cstate, resp.SuperBlock)
	}

	c.sessionID = resp.SessionID
	c.sessionIdleTimeoutMillis = resp.SessionIdleTimeoutMillis
	c.walSeqnos = append([]uint64(nil), resp.WALSegmentSeqnos...)
	c.committedState = resp.InitialCommittedState
	c.remoteSuperblock = superBlockFromWire(tabletID, resp.SuperBlock)

	c.phase = phaseSessionStarted
	return nil
}

// fetchTimeout returns the per-chunk FetchData deadline: the session's
// own idle timeout, as returned by BeginSession (spec §3's
// session_idle_timeout_ms, spec §5 "the fetch timeout (per-session value
// returned by BeginSession)"), falling back to the static config value
// only if the remote didn't specify one.
func (c *Client) fetchTimeout() time.Duration {
	if c.sessionIdleTimeoutMillis > 0 {
		return time.Duration(c.sessionIdleTimeoutMillis) * time.Millisecond
	}
	return c.cfg.FetchTimeout
}

func (c *Client) endSession(ctx context.Context, isSuccess bool) error {
	if c.phase != phaseSessionStarted {
		return newIllegalState("endSession called with no active session")
	}
	updateStatus(c.statusSink, "Ending remote bootstrap session")

	endCtx, cancel := context.WithTimeout(ctx, c.cfg.RemoteBootstrapBeginSessionTimeout)
	defer cancel()

	_, err := c.proxy.EndSession(endCtx, &tcpb.EndSessionRequest{
		SessionID: c.sessionID,
		IsSuccess: isSuccess,
	})
	if closeErr := c.proxy.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrap(err, "Failure ending remote bootstrap session")
	}
	updateStatus(c.statusSink, "Remote bootstrap complete")
	return nil
}

func superBlockFromWire(tabletID string, w tcpb.SuperBlockWire) *tablet.SuperBlock {
	sb := &tablet.SuperBlock{
		TabletID:             tabletID,
		RemoteBootstrapState: tablet.RemoteBootstrapState(w.RemoteBootstrapState),
		RowSets:              make([]tablet.RowSetData, len(w.RowSets)),
		OrphanedBlocks:       append([]string(nil), w.OrphanedBlocks...),
	}
	for i, rs := range w.RowSets {
		sb.RowSets[i] = rowSetFromWire(rs)
	}
	return sb
}

func rowSetFromWire(w tcpb.RowSetWire) tablet.RowSetData {
	rs := tablet.RowSetData{
		Columns:    blockRefsFromWire(w.Columns),
		RedoDeltas: blockRefsFromWire(w.RedoDeltas),
		UndoDeltas: blockRefsFromWire(w.UndoDeltas),
	}
	if w.Bloom != nil {
		rs.Bloom = &tablet.BlockRef{BlockID: *w.Bloom}
	}
	if w.AdHocIndex != nil {
		rs.AdHocIndex = &tablet.BlockRef{BlockID: *w.AdHocIndex}
	}
	return rs
}

func blockRefsFromWire(ids []string) []tablet.BlockRef {
	if ids == nil {
		return nil
	}
	out := make([]tablet.BlockRef, len(ids))
	for i, id := range ids {
		out[i] = tablet.BlockRef{BlockID: id}
	}
	return out
}
