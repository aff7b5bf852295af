// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package browse

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard bindings for the browse UI. The help
// bar renders from the bindings' help text, so bindings and
// documentation cannot drift apart.
type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	OlderVersion  key.Binding
	NewerVersion  key.Binding
	LatestVersion key.Binding
	ToggleFocus   key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	ToggleHistory key.Binding
	Quit          key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "previous key"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "next key"),
	),
	OlderVersion: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "older version"),
	),
	NewerVersion: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "newer version"),
	),
	LatestVersion: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "latest version"),
	),
	ToggleFocus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch pane"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("ctrl+u", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("ctrl+d", "scroll down"),
	),
	ToggleHistory: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "toggle history"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}
