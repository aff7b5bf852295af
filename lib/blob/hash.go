// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

// Package blob implements the vault's content store: immutable byte
// blobs addressed by BLAKE3 hash, deduplicated across versions and
// keys, held compressed in memory. The store is append-only — blobs
// live for the lifetime of the vault and are only released when the
// whole vault is released.
package blob

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest identifying a blob's content.
// Equal content produces equal hashes; collision probability is
// treated as negligible.
type Hash [32]byte

// contentDomainKey is the 32-byte key for BLAKE3 keyed hashing.
// Domain separation keeps promptvault content hashes from ever
// colliding with hashes another system computed over the same bytes.
// The value is the ASCII domain name zero-padded to 32 bytes —
// readable in hex dumps, and BLAKE3 keyed mode treats it as an opaque
// 32-byte value regardless.
var contentDomainKey = [32]byte{
	'p', 'r', 'o', 'm', 'p', 't', 'v', 'a', 'u', 'l', 't', '.',
	'c', 'o', 'n', 't', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashBytes computes the content-domain BLAKE3 keyed hash of data.
// This is the hash stored in version records and used for
// deduplication.
func HashBytes(data []byte) Hash {
	// NewKeyed requires exactly 32 bytes, which the fixed-size key
	// guarantees, so the error path is unreachable.
	hasher, err := blake3.NewKeyed(contentDomainKey[:])
	if err != nil {
		panic("blob: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// FormatHash returns the hex-encoded string representation of a hash.
// This is the canonical format used in history output and logs.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing content hash: %w", err)
	}
	if len(decoded) != 32 {
		return hash, fmt.Errorf("content hash is %d bytes, want 32", len(decoded))
	}
	copy(hash[:], decoded)
	return hash, nil
}
