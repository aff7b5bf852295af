// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"
	"sort"

	"github.com/promptvault/promptvault/lib/blob"
)

// KeyState is the serializable form of one key: its version records
// and its tag table. The persistence codec turns a vault into a slice
// of these (plus the content store's blobs) and back.
type KeyState struct {
	Key     string            `cbor:"key"`
	Records []VersionRecord   `cbor:"records"`
	Tags    map[string]uint64 `cbor:"tags,omitempty"`
}

// ExportState returns the vault's entries as KeyStates, sorted by key
// for deterministic serialization.
func (v *Vault) ExportState() []KeyState {
	states := make([]KeyState, 0, len(v.entries))
	for _, key := range v.Keys() {
		e := v.entries[key]

		records := make([]VersionRecord, len(e.records))
		copy(records, e.records)
		for i := range records {
			records[i].Tags = append([]string(nil), e.records[i].Tags...)
		}

		tags := make(map[string]uint64, len(e.tags))
		for name, version := range e.tags {
			tags[name] = version
		}

		states = append(states, KeyState{Key: key, Records: records, Tags: tags})
	}
	return states
}

// Restore builds a vault from deserialized key states and a content
// store already holding the referenced blobs. Every structural
// invariant is re-checked — versions contiguous from 1, parent links,
// first version a snapshot, tags in range, payloads present — so a
// tampered or truncated file is rejected here rather than surfacing
// later as a bad reconstruction. The denormalized per-record tag view
// is rebuilt from the tag table, which is canonical.
func Restore(options Options, store *blob.Store, states []KeyState) (*Vault, error) {
	v := New(options)
	v.store = store

	for _, state := range states {
		if state.Key == "" {
			return nil, fmt.Errorf("key state has empty key")
		}
		if _, exists := v.entries[state.Key]; exists {
			return nil, fmt.Errorf("key %q appears twice", state.Key)
		}
		if len(state.Records) == 0 {
			return nil, fmt.Errorf("key %q has no versions", state.Key)
		}

		e := newEntry()
		e.records = make([]VersionRecord, len(state.Records))
		copy(e.records, state.Records)

		for i := range e.records {
			record := &e.records[i]
			wantVersion := uint64(i) + 1
			if record.Version != wantVersion {
				return nil, fmt.Errorf("key %q: record %d has version %d, want %d",
					state.Key, i, record.Version, wantVersion)
			}
			if record.Parent != wantVersion-1 {
				return nil, fmt.Errorf("key %q: version %d has parent %d, want %d",
					state.Key, record.Version, record.Parent, wantVersion-1)
			}
			if record.Key != state.Key {
				return nil, fmt.Errorf("key %q: version %d is recorded under key %q",
					state.Key, record.Version, record.Key)
			}
			if i == 0 && !record.Snapshot {
				return nil, fmt.Errorf("key %q: version 1 is not a snapshot", state.Key)
			}
			if !store.Contains(record.PayloadHash) {
				return nil, fmt.Errorf("key %q: version %d references missing blob %s",
					state.Key, record.Version, blob.FormatHash(record.PayloadHash))
			}
			// Rebuilt below from the tag table.
			record.Tags = nil
		}

		latest := uint64(len(e.records))
		tagNames := make([]string, 0, len(state.Tags))
		for name := range state.Tags {
			tagNames = append(tagNames, name)
		}
		sort.Strings(tagNames)
		for _, name := range tagNames {
			version := state.Tags[name]
			if version == 0 || version > latest {
				return nil, fmt.Errorf("key %q: tag %q points at nonexistent version %d",
					state.Key, name, version)
			}
			e.setTag(name, version)
		}

		v.entries[state.Key] = e
	}
	return v, nil
}
