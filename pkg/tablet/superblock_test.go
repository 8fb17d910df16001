// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tablet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForEachBlockRefVisitsInDeterministicOrder(t *testing.T) {
	bloom := BlockRef{BlockID: "bloom-1"}
	adhoc := BlockRef{BlockID: "adhoc-1"}
	rs := RowSetData{
		Columns:    []BlockRef{{BlockID: "col-1"}, {BlockID: "col-2"}},
		RedoDeltas: []BlockRef{{BlockID: "redo-1"}},
		UndoDeltas: []BlockRef{{BlockID: "undo-1"}},
		Bloom:      &bloom,
		AdHocIndex: &adhoc,
	}

	var order []string
	err := rs.ForEachBlockRef(func(ref *BlockRef) error {
		order = append(order, ref.BlockID)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"col-1", "col-2", "redo-1", "undo-1", "bloom-1", "adhoc-1"}, order)
	require.Equal(t, 6, rs.NumBlockRefs())
}

func TestForEachBlockRefRewritesInPlace(t *testing.T) {
	rs := RowSetData{Columns: []BlockRef{{BlockID: "remote-1"}}}
	err := rs.ForEachBlockRef(func(ref *BlockRef) error {
		ref.BlockID = "local-1"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "local-1", rs.Columns[0].BlockID)
}

func TestSuperBlockDeepCopyIsIndependent(t *testing.T) {
	bloom := BlockRef{BlockID: "bloom-1"}
	sb := &SuperBlock{
		TabletID: "tablet-1",
		RowSets: []RowSetData{
			{Columns: []BlockRef{{BlockID: "col-1"}}, Bloom: &bloom},
		},
		OrphanedBlocks: []string{"orphan-1"},
	}

	copy := sb.DeepCopy()
	copy.RowSets[0].Columns[0].BlockID = "mutated"
	copy.RowSets[0].Bloom.BlockID = "mutated-bloom"
	copy.OrphanedBlocks[0] = "mutated-orphan"

	require.Equal(t, "col-1", sb.RowSets[0].Columns[0].BlockID)
	require.Equal(t, "bloom-1", sb.RowSets[0].Bloom.BlockID)
	require.Equal(t, "orphan-1", sb.OrphanedBlocks[0])
}

func TestSuperBlockNumBlockRefsSumsAcrossRowSets(t *testing.T) {
	bloom := BlockRef{BlockID: "bloom-1"}
	sb := &SuperBlock{
		RowSets: []RowSetData{
			{Columns: []BlockRef{{BlockID: "col-1"}, {BlockID: "col-2"}}},
			{RedoDeltas: []BlockRef{{BlockID: "redo-1"}}, Bloom: &bloom},
		},
	}
	require.Equal(t, 4, sb.NumBlockRefs())
}
