// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for promptvault.
//
// Configuration is a single YAML file resolved in this order:
//   - the --config flag (commands pass its value to LoadFile)
//   - the PROMPTVAULT_CONFIG environment variable
//   - ~/.promptvault/config.yaml, if it exists
//   - built-in defaults
//
// The config file never holds secrets. Passwords come from the
// terminal or a password file at run time; the config only says where
// the vault file lives and how the engine encodes versions.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/promptvault/promptvault/lib/vault"
)

// Config is the complete promptvault configuration.
type Config struct {
	// Vault configures the store location and version encoding.
	Vault VaultConfig `yaml:"vault"`
}

// VaultConfig configures the vault file and the engine.
type VaultConfig struct {
	// Path is the vault file location.
	// Default: ~/.promptvault/vault.bin
	Path string `yaml:"path"`

	// PasswordFile, if set, is read for the vault password instead of
	// prompting. "-" means standard input. Commands' --password-file
	// flag overrides it.
	PasswordFile string `yaml:"password_file"`

	// SnapshotInterval forces a full snapshot after this many
	// consecutive delta versions. Zero selects the engine default.
	SnapshotInterval int `yaml:"snapshot_interval"`

	// SnapshotThreshold is the delta-to-content size ratio above which
	// a version is stored as a snapshot. Zero selects the engine
	// default (0.7). Must be below 1.
	SnapshotThreshold float64 `yaml:"snapshot_threshold"`
}

// Default returns the built-in configuration. Used directly when no
// config file exists, and as the base the file merges into.
func Default() *Config {
	homeDirectory, _ := os.UserHomeDir()
	root := filepath.Join(homeDirectory, ".promptvault")

	return &Config{
		Vault: VaultConfig{
			Path: filepath.Join(root, "vault.bin"),
		},
	}
}

// DefaultPath returns the location Load checks when PROMPTVAULT_CONFIG
// is not set.
func DefaultPath() string {
	homeDirectory, _ := os.UserHomeDir()
	return filepath.Join(homeDirectory, ".promptvault", "config.yaml")
}

// Load resolves the configuration without an explicit path: the
// PROMPTVAULT_CONFIG environment variable if set (the file must then
// exist), otherwise ~/.promptvault/config.yaml if present, otherwise
// the defaults.
func Load() (*Config, error) {
	if path := os.Getenv("PROMPTVAULT_CONFIG"); path != "" {
		return LoadFile(path)
	}

	path := DefaultPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from an explicit file path, merging it
// over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	configuration := Default()
	if err := yaml.Unmarshal(data, configuration); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return configuration, nil
}

// Validate checks the configuration for values the engine would
// reject or silently misbehave on.
func (c *Config) Validate() error {
	if c.Vault.Path == "" {
		return fmt.Errorf("vault.path must not be empty")
	}
	if c.Vault.SnapshotInterval < 0 {
		return fmt.Errorf("vault.snapshot_interval must not be negative (got %d)", c.Vault.SnapshotInterval)
	}
	if c.Vault.SnapshotThreshold < 0 || c.Vault.SnapshotThreshold >= 1 {
		return fmt.Errorf("vault.snapshot_threshold must be in [0, 1) (got %g)", c.Vault.SnapshotThreshold)
	}
	return nil
}

// VaultOptions translates the configuration into engine options.
func (c *Config) VaultOptions() vault.Options {
	return vault.Options{
		SnapshotInterval:  c.Vault.SnapshotInterval,
		SnapshotThreshold: c.Vault.SnapshotThreshold,
	}
}
