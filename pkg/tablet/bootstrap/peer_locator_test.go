// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhdk123456/kudu/pkg/consensus"
)

func TestExtractLeaderFindsConfiguredPeer(t *testing.T) {
	cstate := consensus.State{
		LeaderUUID: "uuid-2",
		Config: consensus.RaftConfig{Peers: []consensus.Peer{
			{PermanentUUID: "uuid-1", LastKnownAddr: "host1:1"},
			{PermanentUUID: "uuid-2", LastKnownAddr: "host2:2"},
		}},
	}
	leader, err := ExtractLeader(cstate)
	require.NoError(t, err)
	require.Equal(t, "uuid-2", leader.PermanentUUID)
	require.Equal(t, "host2:2", leader.LastKnownAddr)
}

// TestExtractLeaderShortCircuitsOnEmptyLeaderUUID covers S5: an unset
// leader uuid fails immediately without scanning the peer list, even
// when a peer happens to have an empty PermanentUUID that would
// otherwise "match" an empty LeaderUUID.
func TestExtractLeaderShortCircuitsOnEmptyLeaderUUID(t *testing.T) {
	cstate := consensus.State{
		LeaderUUID: "",
		Config: consensus.RaftConfig{Peers: []consensus.Peer{
			{PermanentUUID: "", LastKnownAddr: "host1:1"},
		}},
	}
	_, err := ExtractLeader(cstate)
	require.Error(t, err)
	require.True(t, IsNotFound(err))
}

func TestExtractLeaderNotFoundWhenAbsentFromConfig(t *testing.T) {
	cstate := consensus.State{
		LeaderUUID: "uuid-missing",
		Config: consensus.RaftConfig{Peers: []consensus.Peer{
			{PermanentUUID: "uuid-1", LastKnownAddr: "host1:1"},
		}},
	}
	_, err := ExtractLeader(cstate)
	require.Error(t, err)
	require.True(t, IsNotFound(err))
}

func TestResolveAddrRejectsEmptyAddr(t *testing.T) {
	_, err := ResolveAddr(consensus.Peer{PermanentUUID: "uuid-1"})
	require.Error(t, err)
	require.True(t, IsInvalidArgument(err))
}

func TestResolveAddrResolvesHostPort(t *testing.T) {
	addr, err := ResolveAddr(consensus.Peer{PermanentUUID: "uuid-1", LastKnownAddr: "127.0.0.1:12345"})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:12345", addr)
}
