// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

func updateCommand() *cli.Command {
	var flags vaultFlags
	var file string
	var message string

	return &cli.Command{
		Name:    "update",
		Summary: "Store a new version of a prompt",
		Description: `Append a new version of an existing key. The previous versions stay
reachable; the "dev" tag moves to the new version. Content identical
to the current latest version is rejected.

Content can be given inline, read from a file with --file, or piped on
standard input.`,
		Usage: "promptvault update [flags] <key> [content]",
		Examples: []cli.Example{
			{
				Description: "Update with a change message",
				Command:     "promptvault update greeting --file greeting.txt -m 'softer tone'",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("update", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.StringVar(&file, "file", "", "read content from this file (\"-\" for stdin)")
			flagSet.StringVarP(&message, "message", "m", "", "describe what changed in this version")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("expected <key> [content], got %d arguments", len(args))
			}
			key := args[0]
			positional := ""
			if len(args) == 2 {
				positional = args[1]
			}

			content, err := readContent(positional, file)
			if err != nil {
				return err
			}

			logger := flags.logger("update").With("key", key)
			m, err := flags.open(logger)
			if err != nil {
				return err
			}
			record, err := m.Update(key, content, message)
			if err != nil {
				return err
			}

			kind := "delta"
			if record.Snapshot {
				kind = "snapshot"
			}
			logger.Info("version stored", "version", record.Version, "form", kind)
			fmt.Printf("%s@%d stored (%s)\n", record.Key, record.Version, kind)
			return nil
		},
	}
}
