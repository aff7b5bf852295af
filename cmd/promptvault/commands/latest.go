// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

func latestCommand() *cli.Command {
	var flags vaultFlags

	return &cli.Command{
		Name:    "latest",
		Summary: "Print a prompt's newest version number",
		Usage:   "promptvault latest [flags] <key>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("latest", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected <key>, got %d arguments", len(args))
			}

			m, err := flags.open(flags.logger("latest").With("key", args[0]))
			if err != nil {
				return err
			}
			latest, err := m.LatestVersion(args[0])
			if err != nil {
				return err
			}
			fmt.Println(latest)
			return nil
		},
	}
}
