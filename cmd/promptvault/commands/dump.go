// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

func dumpCommand() *cli.Command {
	var flags vaultFlags
	var recipients []string

	return &cli.Command{
		Name:    "dump",
		Summary: "Write a copy of the vault to another file",
		Description: `Write the current vault to another path. By default the copy uses the
same protection as the primary file. With --age-recipient the copy is
encrypted to age public keys instead — useful for escrow copies that
can be restored without the vault password.`,
		Usage: "promptvault dump [flags] <path>",
		Examples: []cli.Example{
			{
				Description: "Plain copy alongside the vault",
				Command:     "promptvault dump /backups/prompts-2026-08-23.bin",
			},
			{
				Description: "Escrow copy for the team key",
				Command:     "promptvault dump --age-recipient age1ql3z... /backups/escrow.bin",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("dump", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.StringArrayVar(&recipients, "age-recipient", nil, "encrypt the copy to this age public key (repeatable)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected <path>, got %d arguments", len(args))
			}
			destination := args[0]

			logger := flags.logger("dump").With("destination", destination)
			m, err := flags.open(logger)
			if err != nil {
				return err
			}

			if len(recipients) > 0 {
				if err := m.BackupToRecipients(destination, recipients); err != nil {
					return err
				}
				logger.Info("vault dumped", "recipients", len(recipients))
			} else {
				if err := m.Backup(destination); err != nil {
					return err
				}
				logger.Info("vault dumped")
			}

			fmt.Printf("vault written to %s\n", destination)
			return nil
		},
	}
}
