// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import "errors"

// Sentinel errors for the vault's public operations. Callers match
// with errors.Is; the wrapped message carries the key, version, or tag
// involved.
var (
	// ErrNotFound is returned when a key, version number, or tag does
	// not exist.
	ErrNotFound = errors.New("vault: not found")

	// ErrKeyExists is returned by Add when the key already has a
	// version chain. Use Update to append to an existing key.
	ErrKeyExists = errors.New("vault: key already exists")

	// ErrInvalidSelector is returned when a selector string is
	// malformed (empty, or a version number of zero).
	ErrInvalidSelector = errors.New("vault: invalid selector")

	// ErrNoChanges is returned by Update when the new content is
	// byte-identical to the current latest version.
	ErrNoChanges = errors.New("vault: no changes detected in content")

	// ErrDevTagPinned is returned by SetTag when asked to point the
	// "dev" tag at anything but the latest version. "dev" always
	// tracks the newest revision; Update re-points it automatically.
	ErrDevTagPinned = errors.New(`vault: "dev" tag can only point at the latest version`)
)
