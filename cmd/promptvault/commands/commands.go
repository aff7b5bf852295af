// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete promptvault CLI command tree.
package commands

import (
	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

// Root builds and returns the complete promptvault command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "promptvault",
		Description: `promptvault: versioned storage for prompt text.

Every prompt is a named key with an append-only version history.
Updates store compact deltas against the previous version, identical
content is stored once, and the whole vault persists as a single
encrypted file.`,
		Subcommands: []*cli.Command{
			addCommand(),
			updateCommand(),
			getCommand(),
			historyCommand(),
			tagCommand(),
			latestCommand(),
			deleteCommand(),
			keysCommand(),
			dumpCommand(),
			restoreCommand(),
			browseCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Store a new prompt",
				Command:     "promptvault add greeting 'You are a helpful assistant.'",
			},
			{
				Description: "Revise it and pin the old wording",
				Command:     "promptvault update greeting --file greeting.txt -m 'softer tone'",
			},
			{
				Description: "Fetch the version tagged stable",
				Command:     "promptvault get greeting stable",
			},
		},
	}
}
