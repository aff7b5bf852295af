// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"time"

	"github.com/promptvault/promptvault/lib/blob"
)

// VersionRecord describes one immutable revision of a key. Version
// numbers are contiguous per key, starting at 1; every record's
// Parent is Version-1 (0 marks the first version, which has no
// parent). History is strictly linear — no branching.
type VersionRecord struct {
	// Key is the name this revision belongs to.
	Key string `cbor:"key"`

	// Version is the 1-based position in the key's history.
	Version uint64 `cbor:"version"`

	// Timestamp is the creation instant.
	Timestamp time.Time `cbor:"timestamp"`

	// Parent is the version number of the prior revision, 0 for the
	// first version.
	Parent uint64 `cbor:"parent"`

	// Message is optional free text supplied on update.
	Message string `cbor:"message,omitempty"`

	// ObjectHash is the content hash of this revision's full resolved
	// content. Identical content always has an identical ObjectHash,
	// whatever form it is stored in.
	ObjectHash blob.Hash `cbor:"object_hash"`

	// PayloadHash addresses the stored payload in the content store:
	// the full content for snapshots, the encoded delta otherwise.
	PayloadHash blob.Hash `cbor:"payload_hash"`

	// Snapshot is true when the payload is full content, false when
	// it is a delta against the parent.
	Snapshot bool `cbor:"snapshot"`

	// Tags lists the tag names currently pointing at this version.
	// This is a denormalized view kept in step with the tag table,
	// which remains the canonical source.
	Tags []string `cbor:"tags,omitempty"`
}

// HasParent reports whether the record has a prior revision.
func (r VersionRecord) HasParent() bool {
	return r.Parent != 0
}

// HasTag reports whether the record's denormalized tag view contains
// name.
func (r VersionRecord) HasTag(name string) bool {
	for _, tag := range r.Tags {
		if tag == name {
			return true
		}
	}
	return false
}
