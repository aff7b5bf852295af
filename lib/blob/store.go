// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrBlobNotFound is returned by Get and Stored when no blob with the
// requested hash exists in the store.
var ErrBlobNotFound = errors.New("blob: not found")

// StoredBlob is the at-rest form of a blob: the compressed bytes plus
// enough metadata to reverse the compression and verify integrity.
// This is the unit the persistence codec reads and writes.
type StoredBlob struct {
	// Compression identifies how Data is encoded.
	Compression CompressionTag `cbor:"compression"`

	// Size is the uncompressed content length in bytes.
	Size int `cbor:"size"`

	// Data is the compressed (or raw, for CompressionNone) bytes.
	Data []byte `cbor:"data"`
}

// Store is an in-memory, append-only content store. Identical content
// is stored once regardless of how many versions or keys reference
// it. Blobs are held compressed; Get decompresses on demand.
//
// Store is safe for concurrent use. There is no delete operation —
// reclaiming storage is out of scope for the vault engine.
type Store struct {
	mu    sync.RWMutex
	blobs map[Hash]StoredBlob
}

// NewStore returns an empty content store.
func NewStore() *Store {
	return &Store{blobs: make(map[Hash]StoredBlob)}
}

// Put stores data if its hash is not already present and returns the
// hash. Idempotent: putting identical content twice stores one blob
// and returns the same hash both times.
func (s *Store) Put(data []byte) Hash {
	hash := HashBytes(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[hash]; exists {
		return hash
	}

	compressed, tag := compress(data)
	s.blobs[hash] = StoredBlob{
		Compression: tag,
		Size:        len(data),
		Data:        compressed,
	}
	return hash
}

// Get returns the decompressed content for hash. Returns
// ErrBlobNotFound if the hash is unknown.
func (s *Store) Get(hash Hash) ([]byte, error) {
	s.mu.RLock()
	stored, exists := s.blobs[hash]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, FormatHash(hash))
	}

	data, err := decompress(stored.Data, stored.Compression, stored.Size)
	if err != nil {
		return nil, fmt.Errorf("blob %s: %w", FormatHash(hash), err)
	}
	return data, nil
}

// Contains reports whether a blob with the given hash is stored.
func (s *Store) Contains(hash Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.blobs[hash]
	return exists
}

// Len returns the number of distinct blobs in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blobs)
}

// Hashes returns every stored hash in lexicographic order. The sorted
// order makes serialized vault files deterministic.
func (s *Store) Hashes() []Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes := make([]Hash, 0, len(s.blobs))
	for hash := range s.blobs {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return string(hashes[i][:]) < string(hashes[j][:])
	})
	return hashes
}

// Stored returns the at-rest form of a blob for serialization, without
// decompressing. Returns ErrBlobNotFound if the hash is unknown.
func (s *Store) Stored(hash Hash) (StoredBlob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.blobs[hash]
	if !exists {
		return StoredBlob{}, fmt.Errorf("%w: %s", ErrBlobNotFound, FormatHash(hash))
	}
	return stored, nil
}

// PutStored inserts a blob in its at-rest form during restore. The
// blob is decompressed and rehashed to verify that hash, compression
// metadata, and data agree; a mismatch means the vault file is corrupt.
func (s *Store) PutStored(hash Hash, stored StoredBlob) error {
	data, err := decompress(stored.Data, stored.Compression, stored.Size)
	if err != nil {
		return fmt.Errorf("blob %s: %w", FormatHash(hash), err)
	}
	if HashBytes(data) != hash {
		return fmt.Errorf("blob %s: content does not match its hash", FormatHash(hash))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[hash] = stored
	return nil
}
