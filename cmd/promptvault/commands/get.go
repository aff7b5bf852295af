// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
	"github.com/promptvault/promptvault/lib/vault"
)

func getCommand() *cli.Command {
	var flags vaultFlags
	var output string

	return &cli.Command{
		Name:    "get",
		Summary: "Print a prompt's content",
		Description: `Print the content of a prompt version to standard output.

The selector picks the version: "latest" (the default), an explicit
version number, or a tag name.`,
		Usage: "promptvault get [flags] <key> [selector]",
		Examples: []cli.Example{
			{
				Description: "Latest version",
				Command:     "promptvault get greeting",
			},
			{
				Description: "An old version by number",
				Command:     "promptvault get greeting 3",
			},
			{
				Description: "Whatever 'stable' points at, written to a file",
				Command:     "promptvault get greeting stable --output greeting.txt",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.StringVarP(&output, "output", "o", "", "write content to this file instead of stdout")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("expected <key> [selector], got %d arguments", len(args))
			}
			key := args[0]
			selector := vault.Latest()
			if len(args) == 2 {
				parsed, err := vault.ParseSelector(args[1])
				if err != nil {
					return err
				}
				selector = parsed
			}

			m, err := flags.open(flags.logger("get").With("key", key))
			if err != nil {
				return err
			}
			content, err := m.Get(key, selector)
			if err != nil {
				return err
			}

			if output != "" {
				return os.WriteFile(output, []byte(content), 0o644)
			}
			fmt.Print(content)
			return nil
		},
	}
}
