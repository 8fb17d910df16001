// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package bootstrap

import (
	"net"

	"github.com/cockroachdb/errors"

	"github.com/zhdk123456/kudu/pkg/consensus"
)

// ExtractLeader is the Peer Locator (spec §4.2): it scans cstate's
// configured peers for the one whose PermanentUUID matches
// cstate.LeaderUUID. An absent or empty LeaderUUID fails fast without
// scanning peers at all, mirroring the original's short-circuiting
// BOOST_FOREACH loop (it breaks out on the very first iteration if
// leader_uuid is unset, rather than scanning to the end and reporting
// not-found only then).
func ExtractLeader(cstate consensus.State) (consensus.Peer, error) {
	if cstate.LeaderUUID == "" {
		return consensus.Peer{}, newNotFound("No leader found in config")
	}
	for _, peer := range cstate.Config.Peers {
		if peer.PermanentUUID == cstate.LeaderUUID {
			return peer, nil
		}
	}
	return consensus.Peer{}, newNotFound("No leader found in config")
}

// ResolveAddr converts peer's advertised host:port into a concrete
// socket address. Only one address is used; there is no multi-address
// fallback (spec §4.2).
func ResolveAddr(peer consensus.Peer) (string, error) {
	if peer.LastKnownAddr == "" {
		return "", markInvalidArgument(errors.Newf("unknown address for config leader %s", peer.PermanentUUID))
	}
	addr, err := net.ResolveTCPAddr("tcp", peer.LastKnownAddr)
	if err != nil {
		return "", markInvalidArgument(errors.Wrapf(err, "resolving leader address %q", peer.LastKnownAddr))
	}
	return addr.String(), nil
}
