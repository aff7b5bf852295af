// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

func addCommand() *cli.Command {
	var flags vaultFlags
	var file string

	return &cli.Command{
		Name:    "add",
		Summary: "Store a new prompt",
		Description: `Store a new prompt under a key. The key must not already exist; the
content becomes version 1.

Content can be given inline, read from a file with --file, or piped on
standard input.`,
		Usage: "promptvault add [flags] <key> [content]",
		Examples: []cli.Example{
			{
				Description: "Inline content",
				Command:     "promptvault add greeting 'You are a helpful assistant.'",
			},
			{
				Description: "From a file",
				Command:     "promptvault add greeting --file greeting.txt",
			},
			{
				Description: "From a pipe",
				Command:     "cat greeting.txt | promptvault add greeting",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("add", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.StringVar(&file, "file", "", "read content from this file (\"-\" for stdin)")
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

			logger := flags.logger("add").With("key", key)
			m, err := flags.open(logger)
			if err != nil {
				return err
			}
			record, err := m.Add(key, content)
			if err != nil {
				return err
			}
			logger.Info("prompt stored", "version", record.Version, "bytes", len(content))

			fmt.Printf("%s@%d stored (%d bytes)\n", record.Key, record.Version, len(content))
			return nil
		},
	}
}
