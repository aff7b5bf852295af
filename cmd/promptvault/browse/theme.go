// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package browse

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the color palette for the browse UI. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Version forms.
	SnapshotAccent lipgloss.Color
	DeltaAccent    lipgloss.Color

	// Tags.
	TagForeground lipgloss.Color
	DevTagAccent  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
}

// darkTheme is the palette for dark-background terminals (the common
// case for development environments and tmux sessions).
var darkTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	SnapshotAccent: lipgloss.Color("114"), // green
	DeltaAccent:    lipgloss.Color("75"),  // blue

	TagForeground: lipgloss.Color("141"), // light purple
	DevTagAccent:  lipgloss.Color("220"), // amber

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
}

// lightTheme adjusts the text and chrome colors for light-background
// terminals; the semantic accents carry over.
var lightTheme = Theme{
	NormalText: lipgloss.Color("235"),
	FaintText:  lipgloss.Color("243"),

	SelectedBackground: lipgloss.Color("254"),
	SelectedForeground: lipgloss.Color("232"),

	SnapshotAccent: lipgloss.Color("28"), // dark green
	DeltaAccent:    lipgloss.Color("26"), // dark blue

	TagForeground: lipgloss.Color("92"),  // purple
	DevTagAccent:  lipgloss.Color("130"), // dark amber

	HeaderForeground: lipgloss.Color("232"),
	BorderColor:      lipgloss.Color("249"),
	HelpText:         lipgloss.Color("246"),
}

// DefaultTheme picks a palette based on the terminal background.
func DefaultTheme() Theme {
	if termenv.HasDarkBackground() {
		return darkTheme
	}
	return lightTheme
}
