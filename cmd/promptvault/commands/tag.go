// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
)

func tagCommand() *cli.Command {
	return &cli.Command{
		Name:    "tag",
		Summary: "Manage version tags",
		Description: `Manage a key's tags. A tag is a mutable name for one version: "stable"
can point at version 3 today and version 7 after the next promote,
while the version numbers themselves never move.

The "dev" tag is special — it always tracks the latest version and
cannot be pinned anywhere else.`,
		Subcommands: []*cli.Command{
			tagSetCommand(),
			tagPromoteCommand(),
			tagListCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Pin the current wording",
				Command:     "promptvault tag set greeting stable 3",
			},
			{
				Description: "Move stable to the newest version",
				Command:     "promptvault tag promote greeting stable",
			},
		},
	}
}

func tagSetCommand() *cli.Command {
	var flags vaultFlags

	return &cli.Command{
		Name:    "set",
		Summary: "Point a tag at a version",
		Usage:   "promptvault tag set [flags] <key> <tag> <version>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("set", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 3 {
				return fmt.Errorf("expected <key> <tag> <version>, got %d arguments", len(args))
			}
			version, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("version %q is not a number", args[2])
			}

			logger := flags.logger("tag/set").With("key", args[0], "tag", args[1])
			m, err := flags.open(logger)
			if err != nil {
				return err
			}
			if err := m.SetTag(args[0], args[1], version); err != nil {
				return err
			}
			logger.Info("tag set", "version", version)
			fmt.Printf("%s: %s -> %d\n", args[0], args[1], version)
			return nil
		},
	}
}

func tagPromoteCommand() *cli.Command {
	var flags vaultFlags

	return &cli.Command{
		Name:    "promote",
		Summary: "Point a tag at the latest version",
		Usage:   "promptvault tag promote [flags] <key> <tag>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("promote", pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <key> <tag>, got %d arguments", len(args))
			}

			logger := flags.logger("tag/promote").With("key", args[0], "tag", args[1])
			m, err := flags.open(logger)
			if err != nil {
				return err
			}
			if err := m.Promote(args[0], args[1]); err != nil {
				return err
			}
			latest, err := m.LatestVersion(args[0])
			if err != nil {
				return err
			}
			logger.Info("tag promoted", "version", latest)
			fmt.Printf("%s: %s -> %d\n", args[0], args[1], latest)
			return nil
		},
	}
}

func tagListCommand() *cli.Command {
	var flags vaultFlags
	var outputJSON bool

	return &cli.Command{
		Name:    "list",
		Summary: "List a key's tags",
		Usage:   "promptvault tag list [flags] <key>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.register(flagSet)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON instead of a table")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected <key>, got %d arguments", len(args))
			}

			m, err := flags.open(flags.logger("tag/list").With("key", args[0]))
			if err != nil {
				return err
			}
			tags, err := m.Tags(args[0])
			if err != nil {
				return err
			}

			if outputJSON {
				data, err := json.MarshalIndent(tags, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			names := make([]string, 0, len(tags))
			for name := range tags {
				names = append(names, name)
			}
			sort.Strings(names)

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "TAG\tVERSION")
			for _, name := range names {
				fmt.Fprintf(tw, "%s\t%d\n", name, tags[name])
			}
			return tw.Flush()
		},
	}
}
