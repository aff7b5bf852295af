// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

func deleteCommand() *cli.Command {
	var flags vaultFlags
	var force bool

	return &cli.Command{
		Name:    "delete",
		Summary: "Remove a prompt and all its versions",
		Description: `Remove a key entirely: every version and every tag. There is no
undelete — re-adding the key starts a fresh history at version 1.

Asks for confirmation on a terminal unless --force is given.`,
		Usage: "promptvault delete [flags] <key>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.BoolVarP(&force, "force", "f", false, "delete without confirmation")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected <key>, got %d arguments", len(args))
			}
			key := args[0]

			if !force {
				info, err := os.Stdin.Stat()
				interactive := err == nil && (info.Mode()&os.ModeCharDevice) != 0
				if !interactive {
					return fmt.Errorf("refusing to delete %q without confirmation; pass --force", key)
				}
				fmt.Fprintf(os.Stderr, "Delete %q and all its versions? [y/N] ", key)
				answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading confirmation: %w", err)
				}
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(os.Stderr, "aborted")
					return &cli.ExitError{Code: 1}
				}
			}

			logger := flags.logger("delete").With("key", key)
			m, err := flags.open(logger)
			if err != nil {
				return err
			}
			if err := m.Delete(key); err != nil {
				return err
			}
			logger.Info("prompt deleted")
			fmt.Printf("%s deleted\n", key)
			return nil
		},
	}
}
