// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"
	"strconv"
	"strings"
)

// selectorKind discriminates the Selector union.
type selectorKind uint8

const (
	selectLatest selectorKind = iota
	selectVersion
	selectTag
)

// Selector picks a version of a key: the latest, an explicit version
// number, or whatever version a tag currently points at. Construct
// with Latest, Version, or Tag; parse user input with ParseSelector.
type Selector struct {
	kind    selectorKind
	version uint64
	tag     string
}

// Latest selects the newest version of a key.
func Latest() Selector {
	return Selector{kind: selectLatest}
}

// Version selects an explicit version number.
func Version(n uint64) Selector {
	return Selector{kind: selectVersion, version: n}
}

// Tag selects the version a tag currently points at.
func Tag(name string) Selector {
	return Selector{kind: selectTag, tag: name}
}

// ParseSelector interprets a user-supplied selector string: "latest"
// is special, a string of digits is a version number, anything else
// is a tag name. An empty (or all-whitespace) string is
// ErrInvalidSelector, as is an explicit version of zero.
func ParseSelector(raw string) (Selector, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Selector{}, fmt.Errorf("%w: empty selector", ErrInvalidSelector)
	}
	if trimmed == "latest" {
		return Latest(), nil
	}
	if number, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		if number == 0 {
			return Selector{}, fmt.Errorf("%w: version numbers start at 1", ErrInvalidSelector)
		}
		return Version(number), nil
	}
	return Tag(trimmed), nil
}

// String renders the selector the way ParseSelector would accept it.
func (s Selector) String() string {
	switch s.kind {
	case selectVersion:
		return strconv.FormatUint(s.version, 10)
	case selectTag:
		return s.tag
	default:
		return "latest"
	}
}
