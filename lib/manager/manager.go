// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

// Package manager wraps a vault for concurrent use and ties it to its
// on-disk file. Every method takes the manager's mutex, so goroutines
// can share one Manager freely; every mutation writes the vault file
// through before returning, so a crash loses at most the operation in
// flight.
//
// The package also hosts the process-wide shared manager: Init opens
// it once, Shared hands it out everywhere else. CLI commands use the
// shared manager; library consumers who want isolation call Open and
// keep their own reference.
package manager

import (
	"errors"
	"sync"

	"github.com/promptvault/promptvault/lib/secret"
	"github.com/promptvault/promptvault/lib/vault"
	"github.com/promptvault/promptvault/lib/vaultfile"
)

// ErrNotInitialized is returned by Shared before Init has succeeded.
var ErrNotInitialized = errors.New("manager: not initialized")

// Manager serializes access to one vault and persists it to one file.
type Manager struct {
	mu       sync.Mutex
	path     string
	password *secret.Buffer
	vault    *vault.Vault
}

// Open loads the vault file at path, or starts an empty vault if the
// file does not exist yet. password may be nil for unencrypted files;
// the manager keeps the reference for write-through saves, so the
// caller must not close it while the manager is in use.
func Open(path string, options vault.Options, password *secret.Buffer) (*Manager, error) {
	v, err := vaultfile.RestoreOrDefault(path, options, password)
	if err != nil {
		return nil, err
	}
	return &Manager{path: path, password: password, vault: v}, nil
}

var (
	sharedMu      sync.Mutex
	sharedDone    bool
	sharedManager *Manager
	sharedErr     error
)

// Init opens the process-wide shared manager. The first call wins;
// later calls return the already-open manager regardless of their
// arguments, including calls racing the first one.
func Init(path string, options vault.Options, password *secret.Buffer) (*Manager, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if !sharedDone {
		sharedManager, sharedErr = Open(path, options, password)
		sharedDone = true
	}
	return sharedManager, sharedErr
}

// Shared returns the manager opened by Init. Fails with
// ErrNotInitialized if Init has not been called (or did not succeed).
func Shared() (*Manager, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if !sharedDone {
		return nil, ErrNotInitialized
	}
	return sharedManager, sharedErr
}

// Path returns the vault file location this manager persists to.
func (m *Manager) Path() string {
	return m.path
}

// save writes the vault file through. Callers hold m.mu.
func (m *Manager) save() error {
	return vaultfile.Dump(m.path, m.vault, m.password)
}

// Add creates a new key at version 1 and persists the vault.
func (m *Manager) Add(key, content string) (vault.VersionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, err := m.vault.Add(key, content)
	if err != nil {
		return vault.VersionRecord{}, err
	}
	if err := m.save(); err != nil {
		return vault.VersionRecord{}, err
	}
	return record, nil
}

// Update appends a new version of key and persists the vault.
func (m *Manager) Update(key, content, message string) (vault.VersionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, err := m.vault.Update(key, content, message)
	if err != nil {
		return vault.VersionRecord{}, err
	}
	if err := m.save(); err != nil {
		return vault.VersionRecord{}, err
	}
	return record, nil
}

// Get resolves selector against key and returns the content.
func (m *Manager) Get(key string, selector vault.Selector) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.vault.Get(key, selector)
}

// History returns every version record of key, oldest first.
func (m *Manager) History(key string) ([]vault.VersionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.vault.History(key)
}

// SetTag points tag at version and persists the vault.
func (m *Manager) SetTag(key, tag string, version uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.vault.SetTag(key, tag, version); err != nil {
		return err
	}
	return m.save()
}

// Promote re-points tag at the latest version and persists the vault.
func (m *Manager) Promote(key, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.vault.Promote(key, tag); err != nil {
		return err
	}
	return m.save()
}

// Tags returns a copy of key's tag table.
func (m *Manager) Tags(key string) (map[string]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.vault.Tags(key)
}

// LatestVersion returns key's newest version number.
func (m *Manager) LatestVersion(key string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.vault.LatestVersion(key)
}

// Delete removes key and all its versions, then persists the vault.
func (m *Manager) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.vault.Delete(key); err != nil {
		return err
	}
	return m.save()
}

// Keys returns all active keys in sorted order.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.vault.Keys()
}

// Backup writes the current vault to an alternate path with the same
// protection as the primary file. The primary file is untouched.
func (m *Manager) Backup(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return vaultfile.Dump(path, m.vault, m.password)
}

// BackupToRecipients writes the current vault to an alternate path
// encrypted to age public keys, independent of the primary file's
// protection. Useful for escrow copies readable without the password.
func (m *Manager) BackupToRecipients(path string, recipientKeys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return vaultfile.DumpToRecipients(path, m.vault, recipientKeys)
}
