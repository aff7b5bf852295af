// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

func historyCommand() *cli.Command {
	var flags vaultFlags
	var outputJSON bool

	return &cli.Command{
		Name:    "history",
		Summary: "Show a prompt's version history",
		Description: `Show every version of a key, oldest first: version number, timestamp,
whether it is stored as a snapshot or a delta, its tags, and the
change message.`,
		Usage: "promptvault history [flags] <key>",
		Examples: []cli.Example{
			{
				Description: "Table output",
				Command:     "promptvault history greeting",
			},
			{
				Description: "JSON for scripts",
				Command:     "promptvault history greeting --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("history", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON instead of a table")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected <key>, got %d arguments", len(args))
			}

			m, err := flags.open(flags.logger("history").With("key", args[0]))
			if err != nil {
				return err
			}
			history, err := m.History(args[0])
			if err != nil {
				return err
			}

			if outputJSON {
				type versionEntry struct {
					Version   uint64    `json:"version"`
					Timestamp time.Time `json:"timestamp"`
					Snapshot  bool      `json:"snapshot"`
					Tags      []string  `json:"tags,omitempty"`
					Message   string    `json:"message,omitempty"`
				}
				entries := make([]versionEntry, 0, len(history))
				for _, record := range history {
					entries = append(entries, versionEntry{
						Version:   record.Version,
						Timestamp: record.Timestamp,
						Snapshot:  record.Snapshot,
						Tags:      record.Tags,
						Message:   record.Message,
					})
				}
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tTIMESTAMP\tFORM\tTAGS\tMESSAGE")
			for _, record := range history {
				form := "delta"
				if record.Snapshot {
					form = "snapshot"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					record.Version,
					record.Timestamp.Local().Format("2006-01-02 15:04:05"),
					form,
					strings.Join(record.Tags, ","),
					record.Message)
			}
			return tw.Flush()
		},
	}
}
