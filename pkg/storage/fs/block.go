// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package fs

import "context"

// BlockID is an opaque identifier assigned by the local block manager.
// It is never portable across servers: a BlockID minted by one tablet
// server's block manager means nothing to another's (GLOSSARY "Block
// id"). The zero value is not a valid id.
type BlockID string

// String implements fmt.Stringer so BlockIDs read cleanly in progress
// messages and error text (spec §4.5.2 "Downloading block <old_id>").
func (b BlockID) String() string { return string(b) }

// Empty reports whether b is the zero value.
func (b BlockID) Empty() bool { return b == "" }

// WritableBlock is a newly created, append-only data block. Its ID is
// assigned by the block manager at creation time and is fixed for the
// life of the block.
type WritableBlock interface {
	Append(data []byte) error
	// Close finalizes the block, making its bytes durable and visible
	// under ID().
	Close() error
	ID() BlockID
}

// BlockManager is the local storage manager's block-allocation surface
// (spec §6.1 FsManager.CreateNewBlock). It is the only source of local
// block ids; no remote id is ever installed without first passing
// through CreateNewBlock (spec §3 invariant 3).
type BlockManager interface {
	CreateNewBlock(ctx context.Context) (WritableBlock, error)
}
