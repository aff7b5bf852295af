// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/promptvault/promptvault/lib/secret"
)

// ReadPassword obtains the vault password as a secret.Buffer. If
// passwordFile is non-empty the password is read from that file ("-"
// means standard input, trailing whitespace trimmed). Otherwise the
// user is prompted on the terminal with echo disabled; confirm asks
// twice and requires both entries to match (for operations that set a
// new password).
//
// Fails if no password file is given and standard input is not a
// terminal — scripts must pass --password-file rather than rely on an
// interactive prompt.
func ReadPassword(passwordFile string, confirm bool) (*secret.Buffer, error) {
	if passwordFile != "" {
		return secret.ReadFromPath(passwordFile)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("standard input is not a terminal; use --password-file to supply the password")
	}

	first, err := promptPassword("Password: ")
	if err != nil {
		return nil, err
	}
	if !confirm {
		return secret.NewFromBytes(first)
	}

	second, err := promptPassword("Confirm password: ")
	if err != nil {
		secret.Zero(first)
		return nil, err
	}
	if !bytes.Equal(first, second) {
		secret.Zero(first)
		secret.Zero(second)
		return nil, fmt.Errorf("passwords do not match")
	}
	secret.Zero(second)
	return secret.NewFromBytes(first)
}

// promptPassword writes the prompt to stderr and reads a line with
// echo disabled. The returned bytes are on the heap; the caller moves
// them into a secret.Buffer (which zeros them) or zeros them itself.
func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return password, nil
}
