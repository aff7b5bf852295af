// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/browse"
	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

func browseCommand() *cli.Command {
	var flags vaultFlags

	return &cli.Command{
		Name:    "browse",
		Summary: "Browse the vault interactively",
		Description: `Open a read-only terminal UI over the vault: keys on the left, the
selected version's content on the right. Use [ and ] to walk through
a key's versions and h to toggle the history panel.`,
		Usage: "promptvault browse [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("browse", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("expected no arguments, got %d", len(args))
			}

			m, err := flags.open(flags.logger("browse"))
			if err != nil {
				return err
			}
			return browse.Run(m)
		},
	}
}
