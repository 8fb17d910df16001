// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package crc32c computes the Castagnoli variant of CRC-32, used to
// verify the integrity of every chunk transferred by the streaming
// fetcher.
package crc32c

import "hash/crc32"

var table = crc32.MakeTable(crc32.Castagnoli)

// Checksum computes the Castagnoli CRC32 of data.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, table)
}
