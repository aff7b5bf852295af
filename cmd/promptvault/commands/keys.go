// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

func keysCommand() *cli.Command {
	var flags vaultFlags
	var outputJSON bool

	return &cli.Command{
		Name:    "keys",
		Summary: "List all prompts",
		Usage:   "promptvault keys [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("keys", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON instead of a table")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("expected no arguments, got %d", len(args))
			}

			m, err := flags.open(flags.logger("keys"))
			if err != nil {
				return err
			}
			keys := m.Keys()

			if outputJSON {
				if keys == nil {
					keys = []string{}
				}
				data, err := json.MarshalIndent(keys, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLATEST")
			for _, key := range keys {
				latest, err := m.LatestVersion(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\n", key, latest)
			}
			return tw.Flush()
		},
	}
}
