// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/promptvault/promptvault/cmd/promptvault/cli"
	"github.com/promptvault/promptvault/lib/config"
	"github.com/promptvault/promptvault/lib/manager"
	"github.com/promptvault/promptvault/lib/secret"
	"github.com/promptvault/promptvault/lib/vaultfile"
)

// vaultFlags are the flags every command that touches the vault
// shares: where the config lives, how to obtain the password, whether
// a newly created vault should be encrypted, and how chatty the
// structured log on stderr is.
type vaultFlags struct {
	configPath   string
	passwordFile string
	encrypt      bool
	verbose      bool
}

func (f *vaultFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "config file (default: $PROMPTVAULT_CONFIG, then ~/.promptvault/config.yaml)")
	flagSet.StringVar(&f.passwordFile, "password-file", "", "read the vault password from this file (\"-\" for stdin)")
	flagSet.BoolVar(&f.encrypt, "encrypt", false, "encrypt the vault with a password when creating it")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log command progress to stderr")
}

// logger builds the command's structured logger. Results go to stdout;
// the log goes to stderr, at warn level unless --verbose lowers it to
// debug.
func (f *vaultFlags) logger(command string) *slog.Logger {
	level := slog.Leveler(slog.LevelWarn)
	if f.verbose {
		level = slog.LevelDebug
	}
	return cli.NewCommandLogger(level).With("command", command)
}

// open loads the configuration, resolves the password, and opens the
// process-wide shared manager. An existing password-protected vault
// always gets a password (from --password-file, the config's
// password_file, or an interactive prompt). A vault being created is
// plaintext unless --encrypt or a password file says otherwise.
func (f *vaultFlags) open(logger *slog.Logger) (*manager.Manager, error) {
	configuration, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	passwordFile := f.passwordFile
	if passwordFile == "" {
		passwordFile = configuration.Vault.PasswordFile
	}

	protected, err := vaultfile.NeedsPassword(configuration.Vault.Path)
	if err != nil {
		return nil, err
	}
	logger.Debug("opening vault", "path", configuration.Vault.Path, "protected", protected)

	var password *secret.Buffer
	switch {
	case protected:
		password, err = cli.ReadPassword(passwordFile, false)
	case f.encrypt:
		// Creating (or converting to) an encrypted vault: confirm an
		// interactively typed password before committing to it.
		password, err = cli.ReadPassword(passwordFile, passwordFile == "")
	case passwordFile != "":
		password, err = cli.ReadPassword(passwordFile, false)
	}
	if err != nil {
		return nil, err
	}

	return manager.Init(configuration.Vault.Path, configuration.VaultOptions(), password)
}

func (f *vaultFlags) loadConfig() (*config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.Load()
}

// readContent resolves prompt content for add/update: an explicit
// positional argument wins, then --file (with "-" for stdin), then
// stdin when it is piped. Returns an error if nothing supplies
// content.
func readContent(positional, file string) (string, error) {
	if positional != "" {
		return positional, nil
	}
	if file != "" {
		if file == "-" {
			return readStdin()
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading content: %w", err)
		}
		return string(data), nil
	}

	info, err := os.Stdin.Stat()
	if err == nil && (info.Mode()&os.ModeCharDevice) == 0 {
		return readStdin()
	}
	return "", fmt.Errorf("no content given: pass it as an argument, via --file, or on stdin")
}

func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
