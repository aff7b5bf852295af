// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/promptvault/promptvault/lib/vault"
)

func TestDefault(t *testing.T) {
	configuration := Default()

	if configuration.Vault.Path == "" {
		t.Error("default vault path is empty")
	}
	if !strings.HasSuffix(configuration.Vault.Path, filepath.Join(".promptvault", "vault.bin")) {
		t.Errorf("default vault path = %q, want it under ~/.promptvault", configuration.Vault.Path)
	}
	if err := configuration.Validate(); err != nil {
		t.Errorf("default configuration fails validation: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
vault:
  path: /data/prompts.bin
  snapshot_interval: 5
  snapshot_threshold: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	configuration, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if configuration.Vault.Path != "/data/prompts.bin" {
		t.Errorf("vault.path = %q, want /data/prompts.bin", configuration.Vault.Path)
	}
	if configuration.Vault.SnapshotInterval != 5 {
		t.Errorf("snapshot_interval = %d, want 5", configuration.Vault.SnapshotInterval)
	}
	if configuration.Vault.SnapshotThreshold != 0.5 {
		t.Errorf("snapshot_threshold = %g, want 0.5", configuration.Vault.SnapshotThreshold)
	}
}

func TestLoadFilePartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
vault:
  snapshot_interval: 3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	configuration, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if configuration.Vault.Path != Default().Vault.Path {
		t.Errorf("vault.path = %q, want the default %q", configuration.Vault.Path, Default().Vault.Path)
	}
	if configuration.Vault.SnapshotInterval != 3 {
		t.Errorf("snapshot_interval = %d, want 3", configuration.Vault.SnapshotInterval)
	}
}

func TestLoadFileErrors(t *testing.T) {
	directory := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(directory, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("writing config: %v", err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(directory, "absent.yaml")},
		{"malformed yaml", write("bad.yaml", "vault: [not a map")},
		{"empty path", write("empty-path.yaml", "vault:\n  path: \"\"\n")},
		{"negative interval", write("interval.yaml", "vault:\n  snapshot_interval: -1\n")},
		{"threshold too high", write("threshold.yaml", "vault:\n  snapshot_threshold: 1.5\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFile(tt.path); err == nil {
				t.Errorf("LoadFile(%s) succeeded, want error", tt.name)
			}
		})
	}
}

func TestLoadHonorsEnvironmentVariable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "vault:\n  path: /env/vault.bin\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("PROMPTVAULT_CONFIG", path)

	configuration, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if configuration.Vault.Path != "/env/vault.bin" {
		t.Errorf("vault.path = %q, want /env/vault.bin", configuration.Vault.Path)
	}
}

func TestLoadMissingEnvironmentFileFails(t *testing.T) {
	t.Setenv("PROMPTVAULT_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Error("Load with PROMPTVAULT_CONFIG pointing at a missing file succeeded, want error")
	}
}

func TestVaultOptions(t *testing.T) {
	configuration := &Config{
		Vault: VaultConfig{
			Path:              "/v.bin",
			SnapshotInterval:  7,
			SnapshotThreshold: 0.4,
		},
	}

	options := configuration.VaultOptions()
	want := vault.Options{SnapshotInterval: 7, SnapshotThreshold: 0.4}
	if options.SnapshotInterval != want.SnapshotInterval || options.SnapshotThreshold != want.SnapshotThreshold {
		t.Errorf("VaultOptions() = %+v, want %+v", options, want)
	}
}
