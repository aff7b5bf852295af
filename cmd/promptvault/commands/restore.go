// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
	"github.com/promptvault/promptvault/lib/secret"
	"github.com/promptvault/promptvault/lib/vault"
	"github.com/promptvault/promptvault/lib/vaultfile"
)

func restoreCommand() *cli.Command {
	var flags vaultFlags
	var identityFile string
	var force bool

	return &cli.Command{
		Name:    "restore",
		Summary: "Replace the vault with the contents of a dump file",
		Description: `Read a vault file produced by dump and install it as the primary
vault, replacing whatever is there. Password-protected dumps use
--password-file or the interactive prompt; age-encrypted dumps need
--identity-file pointing at the matching age private key.

The restored vault keeps the dump's password protection. An
age-encrypted dump restores to a plaintext primary unless --encrypt
is given.`,
		Usage: "promptvault restore [flags] <path>",
		Examples: []cli.Example{
			{
				Description: "Restore a plain or password-protected dump",
				Command:     "promptvault restore /backups/prompts-2026-08-23.bin",
			},
			{
				Description: "Restore an escrow copy with the team key",
				Command:     "promptvault restore --identity-file team.key /backups/escrow.bin",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("restore", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.StringVar(&identityFile, "identity-file", "", "age private key file for age-encrypted dumps (\"-\" for stdin)")
			flagSet.BoolVarP(&force, "force", "f", false, "overwrite an existing vault without confirmation")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected <path>, got %d arguments", len(args))
			}
			source := args[0]

			logger := flags.logger("restore").With("source", source)

			configuration, err := flags.loadConfig()
			if err != nil {
				return err
			}
			options := configuration.VaultOptions()

			// The restored vault keeps the password that opened the
			// dump; age dumps carry no password, so password stays nil
			// for those unless --encrypt asks for one.
			var password *secret.Buffer
			var restored *vault.Vault
			if identityFile != "" {
				identity, err := secret.ReadFromPath(identityFile)
				if err != nil {
					return err
				}
				defer identity.Close()
				restored, err = vaultfile.RestoreWithIdentity(source, options, identity)
				if err != nil {
					return err
				}
			} else {
				protected, err := vaultfile.NeedsPassword(source)
				if err != nil {
					return err
				}
				if protected {
					password, err = cli.ReadPassword(flags.passwordFile, false)
					if err != nil {
						return err
					}
				}
				restored, err = vaultfile.Restore(source, options, password)
				if err != nil {
					return err
				}
			}

			if password == nil && flags.encrypt {
				password, err = cli.ReadPassword(flags.passwordFile, flags.passwordFile == "")
				if err != nil {
					return err
				}
			}

			destination := configuration.Vault.Path
			if _, err := os.Stat(destination); err == nil && !force {
				return fmt.Errorf("vault file %s already exists; pass --force to replace it", destination)
			}

			if err := vaultfile.Dump(destination, restored, password); err != nil {
				return err
			}
			logger.Info("vault restored", "destination", destination, "keys", len(restored.Keys()))
			fmt.Printf("vault restored to %s (%d keys)\n", destination, len(restored.Keys()))
			return nil
		},
	}
}
