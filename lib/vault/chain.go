// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"
	"sort"
	"time"

	"github.com/promptvault/promptvault/lib/blob"
	"github.com/promptvault/promptvault/lib/delta"
)

// entry is the per-key state: the version chain plus the tag table.
// Records are stored oldest first; records[i] is version i+1, so the
// contiguity invariant (versions 1..N, no gaps) holds by construction.
type entry struct {
	records []VersionRecord
	tags    map[string]uint64
}

func newEntry() *entry {
	return &entry{tags: make(map[string]uint64)}
}

// latestVersion returns the newest version number, or 0 for an empty
// chain. Empty chains only exist transiently inside Add — the vault
// never exposes a key without at least one version.
func (e *entry) latestVersion() uint64 {
	return uint64(len(e.records))
}

// record returns a pointer to the record for version, which must be
// in range.
func (e *entry) record(version uint64) *VersionRecord {
	return &e.records[version-1]
}

// trailingDeltas counts the consecutive delta-form records at the tail
// of the chain. The append path forces a snapshot once this reaches
// the configured interval, bounding reconstruction cost for any
// version.
func (e *entry) trailingDeltas() int {
	count := 0
	for i := len(e.records) - 1; i >= 0 && !e.records[i].Snapshot; i-- {
		count++
	}
	return count
}

// reconstruct returns the full content of the given version, replaying
// deltas forward from the nearest preceding snapshot. The version must
// be in range.
func (e *entry) reconstruct(store *blob.Store, version uint64) ([]byte, error) {
	target := int(version) - 1

	// Walk back to the closest snapshot. Version 1 is always a
	// snapshot, so the walk terminates.
	start := target
	for start > 0 && !e.records[start].Snapshot {
		start--
	}

	record := e.records[start]
	content, err := store.Get(record.PayloadHash)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot for %s@%d: %w", record.Key, record.Version, err)
	}

	for i := start + 1; i <= target; i++ {
		record = e.records[i]
		payload, err := store.Get(record.PayloadHash)
		if err != nil {
			return nil, fmt.Errorf("loading payload for %s@%d: %w", record.Key, record.Version, err)
		}
		content, err = delta.Decode(content, payload, record.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("reconstructing %s@%d: %w", record.Key, record.Version, err)
		}
	}

	// The final content must hash to what the record promised. A
	// mismatch means stored data is corrupt, never a caller mistake.
	final := e.records[target]
	if blob.HashBytes(content) != final.ObjectHash {
		return nil, fmt.Errorf("%w: reconstructed content for %s@%d does not match its recorded hash",
			delta.ErrCorruptDelta, final.Key, final.Version)
	}
	return content, nil
}

// append encodes content against the current latest version and adds
// the resulting record to the chain. snapshotInterval forces a full
// snapshot after that many consecutive deltas; threshold is the
// delta-size fraction passed through to the codec.
func (e *entry) append(store *blob.Store, key string, content []byte, message string,
	timestamp time.Time, snapshotInterval int, threshold float64) (VersionRecord, error) {

	var parentContent []byte
	if latest := e.latestVersion(); latest > 0 {
		reconstructed, err := e.reconstruct(store, latest)
		if err != nil {
			return VersionRecord{}, err
		}
		parentContent = reconstructed
	}

	payload, isSnapshot, err := delta.Encode(parentContent, content, threshold)
	if err != nil {
		return VersionRecord{}, err
	}
	if !isSnapshot && e.trailingDeltas() >= snapshotInterval {
		payload = append([]byte(nil), content...)
		isSnapshot = true
	}

	version := e.latestVersion() + 1
	record := VersionRecord{
		Key:         key,
		Version:     version,
		Timestamp:   timestamp,
		Parent:      version - 1,
		Message:     message,
		ObjectHash:  blob.HashBytes(content),
		PayloadHash: store.Put(payload),
		Snapshot:    isSnapshot,
	}
	e.records = append(e.records, record)
	return record, nil
}

// setTag points tag at version, keeping the denormalized Tags view on
// the affected records consistent. The version must be in range; the
// caller enforces the "dev" rule.
func (e *entry) setTag(tag string, version uint64) {
	if previous, exists := e.tags[tag]; exists && previous != version {
		e.removeTagFromRecord(previous, tag)
	}
	e.tags[tag] = version
	e.addTagToRecord(version, tag)
}

func (e *entry) addTagToRecord(version uint64, tag string) {
	record := e.record(version)
	if record.HasTag(tag) {
		return
	}
	record.Tags = append(record.Tags, tag)
	sort.Strings(record.Tags)
}

func (e *entry) removeTagFromRecord(version uint64, tag string) {
	record := e.record(version)
	for i, existing := range record.Tags {
		if existing == tag {
			record.Tags = append(record.Tags[:i], record.Tags[i+1:]...)
			return
		}
	}
}
