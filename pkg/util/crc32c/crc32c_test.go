// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package crc32c

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksumIsDeterministic(t *testing.T) {
	data := []byte("remote bootstrap chunk payload")
	require.Equal(t, Checksum(data), Checksum(append([]byte(nil), data...)))
}

func TestChecksumDetectsSingleBitFlip(t *testing.T) {
	data := []byte("remote bootstrap chunk payload")
	flipped := append([]byte(nil), data...)
	flipped[0] ^= 0x01
	require.NotEqual(t, Checksum(data), Checksum(flipped))
}
