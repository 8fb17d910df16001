// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package tablet defines the on-disk tablet metadata snapshot and the
// Metadata collaborator the bootstrap client swaps in atomically at the
// end of a successful run (spec §3, §4.5.4).
package tablet

// RemoteBootstrapState is the tablet's bootstrap lifecycle state (spec
// §3's remote_bootstrap_state field).
type RemoteBootstrapState int

const (
	// StateNew is a tablet that has never started a bootstrap copy.
	StateNew RemoteBootstrapState = iota
	// StateCopying is a tablet whose local state is not yet trustworthy;
	// a run must complete before the tablet is usable.
	StateCopying
	// StateDone is a tablet whose on-disk state is complete and consistent.
	StateDone
)

func (s RemoteBootstrapState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateCopying:
		return "COPYING"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// BlockRef is a single block reference inside a RowSetData. It starts
// life holding a remote block id (as received from the peer) and is
// rewritten in place to hold a local block id once the referenced block
// has been downloaded (spec §3 invariant 3).
type BlockRef struct {
	BlockID string
}

// RowSetData describes one rowset's on-disk blocks (spec §3).
type RowSetData struct {
	Columns     []BlockRef
	RedoDeltas  []BlockRef
	UndoDeltas  []BlockRef
	Bloom       *BlockRef
	AdHocIndex  *BlockRef
}

// NumBlockRefs returns the number of block references this rowset
// carries, in the traversal order used by the block phase (spec §4.5.2:
// columns, redo deltas, undo deltas, bloom, adhoc index).
func (r *RowSetData) NumBlockRefs() int {
	n := len(r.Columns) + len(r.RedoDeltas) + len(r.UndoDeltas)
	if r.Bloom != nil {
		n++
	}
	if r.AdHocIndex != nil {
		n++
	}
	return n
}

// ForEachBlockRef visits every block reference in this rowset in the
// deterministic order spec §4.5.2 requires, calling fn with a pointer so
// the caller can rewrite the reference in place.
func (r *RowSetData) ForEachBlockRef(fn func(ref *BlockRef) error) error {
	for i := range r.Columns {
		if err := fn(&r.Columns[i]); err != nil {
			return err
		}
	}
	for i := range r.RedoDeltas {
		if err := fn(&r.RedoDeltas[i]); err != nil {
			return err
		}
	}
	for i := range r.UndoDeltas {
		if err := fn(&r.UndoDeltas[i]); err != nil {
			return err
		}
	}
	if r.Bloom != nil {
		if err := fn(r.Bloom); err != nil {
			return err
		}
	}
	if r.AdHocIndex != nil {
		if err := fn(r.AdHocIndex); err != nil {
			return err
		}
	}
	return nil
}

// DeepCopy returns an independent copy of r, so that callers can mutate
// block references without disturbing the original.
func (r *RowSetData) DeepCopy() RowSetData {
	out := RowSetData{
		Columns:    append([]BlockRef(nil), r.Columns...),
		RedoDeltas: append([]BlockRef(nil), r.RedoDeltas...),
		UndoDeltas: append([]BlockRef(nil), r.UndoDeltas...),
	}
	if r.Bloom != nil {
		b := *r.Bloom
		out.Bloom = &b
	}
	if r.AdHocIndex != nil {
		a := *r.AdHocIndex
		out.AdHocIndex = &a
	}
	return out
}

// SuperBlock is the root metadata record of a tablet (GLOSSARY
// "Superblock"): its rowsets and their block ids, plus bookkeeping
// fields that are meaningless once copied locally.
type SuperBlock struct {
	TabletID             string
	RemoteBootstrapState RemoteBootstrapState
	RowSets              []RowSetData
	// OrphanedBlocks is always cleared on a locally-installed superblock
	// (spec §3 invariant 4); the remote's orphan list has no meaning here.
	OrphanedBlocks []string
}

// NumBlockRefs returns the total number of block references across
// every rowset, used to size the block-phase progress counter (spec
// §4.5.2).
func (s *SuperBlock) NumBlockRefs() int {
	n := 0
	for i := range s.RowSets {
		n += s.RowSets[i].NumBlockRefs()
	}
	return n
}

// DeepCopy returns an independent copy of s. The block phase operates on
// a deep copy and only publishes it once every reference has been
// rewritten (spec §3 invariant 2, Design Notes "Working copy before
// commit") — never mutate the snapshot the remote handed back.
func (s *SuperBlock) DeepCopy() *SuperBlock {
	out := &SuperBlock{
		TabletID:             s.TabletID,
		RemoteBootstrapState: s.RemoteBootstrapState,
		RowSets:              make([]RowSetData, len(s.RowSets)),
		OrphanedBlocks:       append([]string(nil), s.OrphanedBlocks...),
	}
	for i := range s.RowSets {
		out.RowSets[i] = s.RowSets[i].DeepCopy()
	}
	return out
}
