// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault implements the versioned prompt store: per-key linear
// version chains, mutable tags, and selector resolution, backed by a
// deduplicating content store and a snapshot/delta codec.
//
// A Vault is a passive data structure — nothing here spawns goroutines
// or touches the filesystem. Concurrent callers go through
// lib/manager; persistence goes through lib/vaultfile.
//
// Vault methods are not safe for unsynchronized concurrent use.
package vault

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/promptvault/promptvault/lib/blob"
	"github.com/promptvault/promptvault/lib/clock"
)

// DefaultSnapshotInterval is the number of consecutive delta versions
// after which the next append is forced to store a full snapshot,
// bounding the replay cost of reconstructing any version.
const DefaultSnapshotInterval = 10

// DevTag is the tag that always tracks the latest version of a key.
// Update re-points it on every append; SetTag refuses to pin it
// anywhere else.
const DevTag = "dev"

// Options configures a Vault. The zero value selects production
// defaults: the real clock, DefaultSnapshotInterval, and the delta
// codec's default snapshot threshold.
type Options struct {
	// Clock supplies version timestamps. Defaults to clock.Real().
	Clock clock.Clock

	// SnapshotInterval forces a full snapshot after this many
	// consecutive deltas. Defaults to DefaultSnapshotInterval.
	SnapshotInterval int

	// SnapshotThreshold is the delta-to-content size ratio above
	// which a version is stored as a snapshot. Zero selects the delta
	// codec's default (0.7).
	SnapshotThreshold float64
}

// Vault maps keys to version chains and tag tables, sharing one
// content store across all keys so identical content is stored once.
type Vault struct {
	store   *blob.Store
	entries map[string]*entry

	clock             clock.Clock
	snapshotInterval  int
	snapshotThreshold float64
}

// New returns an empty vault.
func New(options Options) *Vault {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.SnapshotInterval <= 0 {
		options.SnapshotInterval = DefaultSnapshotInterval
	}
	return &Vault{
		store:             blob.NewStore(),
		entries:           make(map[string]*entry),
		clock:             options.Clock,
		snapshotInterval:  options.SnapshotInterval,
		snapshotThreshold: options.SnapshotThreshold,
	}
}

// Add creates a new key with content as version 1. Fails with
// ErrKeyExists if the key is already active. A key deleted earlier can
// be re-added; it starts over at version 1 with no memory of its
// prior history.
func (v *Vault) Add(key, content string) (VersionRecord, error) {
	if _, exists := v.entries[key]; exists {
		return VersionRecord{}, fmt.Errorf("%w: %q", ErrKeyExists, key)
	}

	e := newEntry()
	record, err := e.append(v.store, key, []byte(content), "",
		v.clock.Now().UTC(), v.snapshotInterval, v.snapshotThreshold)
	if err != nil {
		return VersionRecord{}, err
	}
	v.entries[key] = e
	return record, nil
}

// Update appends a new version of an existing key. message may be
// empty. Fails with ErrNotFound if the key is absent and ErrNoChanges
// if content is byte-identical to the current latest version. The
// "dev" tag is re-pointed at the new version.
func (v *Vault) Update(key, content, message string) (VersionRecord, error) {
	e, err := v.entry(key)
	if err != nil {
		return VersionRecord{}, err
	}

	current, err := e.reconstruct(v.store, e.latestVersion())
	if err != nil {
		return VersionRecord{}, err
	}
	if bytes.Equal(current, []byte(content)) {
		return VersionRecord{}, fmt.Errorf("%w: %q", ErrNoChanges, key)
	}

	record, err := e.append(v.store, key, []byte(content), message,
		v.clock.Now().UTC(), v.snapshotInterval, v.snapshotThreshold)
	if err != nil {
		return VersionRecord{}, err
	}

	// "dev" always rides the newest version.
	e.setTag(DevTag, record.Version)
	return *e.record(record.Version), nil
}

// Get resolves selector against key and returns the full content of
// the selected version.
func (v *Vault) Get(key string, selector Selector) (string, error) {
	e, err := v.entry(key)
	if err != nil {
		return "", err
	}

	version, err := v.resolveVersion(key, e, selector)
	if err != nil {
		return "", err
	}

	content, err := e.reconstruct(v.store, version)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// History returns every version record for key, oldest first. The
// returned slice and its tag views are copies; mutating them does not
// affect the vault.
func (v *Vault) History(key string) ([]VersionRecord, error) {
	e, err := v.entry(key)
	if err != nil {
		return nil, err
	}

	records := make([]VersionRecord, len(e.records))
	copy(records, e.records)
	for i := range records {
		records[i].Tags = append([]string(nil), e.records[i].Tags...)
	}
	return records, nil
}

// SetTag points tag at an explicit version of key. Overwrites any
// prior mapping for the tag. Fails with ErrNotFound if the key or
// version does not exist, and ErrDevTagPinned when asked to point
// "dev" anywhere but the latest version.
func (v *Vault) SetTag(key, tag string, version uint64) error {
	e, err := v.entry(key)
	if err != nil {
		return err
	}
	if version == 0 || version > e.latestVersion() {
		return fmt.Errorf("%w: version %d of key %q", ErrNotFound, version, key)
	}
	if tag == DevTag && version != e.latestVersion() {
		return fmt.Errorf("%w (latest is %d)", ErrDevTagPinned, e.latestVersion())
	}

	e.setTag(tag, version)
	return nil
}

// Promote re-points tag at the latest version of key.
func (v *Vault) Promote(key, tag string) error {
	e, err := v.entry(key)
	if err != nil {
		return err
	}
	e.setTag(tag, e.latestVersion())
	return nil
}

// Tags returns a copy of key's tag table.
func (v *Vault) Tags(key string) (map[string]uint64, error) {
	e, err := v.entry(key)
	if err != nil {
		return nil, err
	}

	tags := make(map[string]uint64, len(e.tags))
	for name, version := range e.tags {
		tags[name] = version
	}
	return tags, nil
}

// LatestVersion returns the newest version number of key. Active keys
// always have at least one version, so the only failure is an absent
// key.
func (v *Vault) LatestVersion(key string) (uint64, error) {
	e, err := v.entry(key)
	if err != nil {
		return 0, err
	}
	return e.latestVersion(), nil
}

// Delete removes key entirely: all version records and all tags. The
// content store keeps its blobs (it is append-only and shared), but
// nothing references them afterwards. Re-adding the key starts a
// fresh chain at version 1.
func (v *Vault) Delete(key string) error {
	if _, exists := v.entries[key]; !exists {
		return fmt.Errorf("%w: key %q", ErrNotFound, key)
	}
	delete(v.entries, key)
	return nil
}

// Keys returns all active keys in sorted order.
func (v *Vault) Keys() []string {
	keys := make([]string, 0, len(v.entries))
	for key := range v.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Store exposes the shared content store. The persistence codec reads
// blobs through this; nothing else should need it.
func (v *Vault) Store() *blob.Store {
	return v.store
}

func (v *Vault) entry(key string) (*entry, error) {
	e, exists := v.entries[key]
	if !exists {
		return nil, fmt.Errorf("%w: key %q", ErrNotFound, key)
	}
	return e, nil
}

// resolveVersion turns a selector into a concrete version number for
// an existing entry.
func (v *Vault) resolveVersion(key string, e *entry, selector Selector) (uint64, error) {
	switch selector.kind {
	case selectLatest:
		return e.latestVersion(), nil

	case selectVersion:
		if selector.version == 0 || selector.version > e.latestVersion() {
			return 0, fmt.Errorf("%w: version %d of key %q", ErrNotFound, selector.version, key)
		}
		return selector.version, nil

	case selectTag:
		version, exists := e.tags[selector.tag]
		if !exists {
			return 0, fmt.Errorf("%w: tag %q of key %q", ErrNotFound, selector.tag, key)
		}
		return version, nil

	default:
		return 0, fmt.Errorf("%w: unknown selector kind", ErrInvalidSelector)
	}
}
