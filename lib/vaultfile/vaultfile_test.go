// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package vaultfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filippo.io/age"

	"github.com/promptvault/promptvault/lib/clock"
	"github.com/promptvault/promptvault/lib/secret"
	"github.com/promptvault/promptvault/lib/vault"
)

func testOptions() vault.Options {
	return vault.Options{
		Clock: clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
}

// populatedVault builds a vault with a few keys, versions, and tags so
// round trips exercise records, tags, and the blob store together.
func populatedVault(t *testing.T) *vault.Vault {
	t.Helper()
	v := vault.New(testOptions())

	if _, err := v.Add("greet", "Hello"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := v.Update("greet", "Hello there", "expanded greeting"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := v.SetTag("greet", "stable", 1); err != nil {
		t.Fatalf("SetTag failed: %v", err)
	}
	if _, err := v.Add("farewell", "Goodbye"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return v
}

// verifyRestored checks that a restored vault reproduces the state
// populatedVault built.
func verifyRestored(t *testing.T, v *vault.Vault) {
	t.Helper()

	content, err := v.Get("greet", vault.Latest())
	if err != nil {
		t.Fatalf("Get(latest) failed: %v", err)
	}
	if content != "Hello there" {
		t.Errorf("Get(latest) = %q, want %q", content, "Hello there")
	}

	content, err = v.Get("greet", vault.Tag("stable"))
	if err != nil {
		t.Fatalf("Get(stable) failed: %v", err)
	}
	if content != "Hello" {
		t.Errorf("Get(stable) = %q, want %q", content, "Hello")
	}

	history, err := v.History("greet")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d records, want 2", len(history))
	}
	if history[1].Message != "expanded greeting" {
		t.Errorf("version 2 message = %q, want %q", history[1].Message, "expanded greeting")
	}
	if !history[0].HasTag("stable") {
		t.Error("version 1 lost its tag across the round trip")
	}
	if !history[0].Timestamp.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("version 1 timestamp = %v, want the fake clock's time", history[0].Timestamp)
	}

	content, err = v.Get("farewell", vault.Latest())
	if err != nil {
		t.Fatalf("Get(farewell) failed: %v", err)
	}
	if content != "Goodbye" {
		t.Errorf("Get(farewell) = %q, want %q", content, "Goodbye")
	}
}

func TestPlainRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")

	if err := Dump(path, populatedVault(t), nil); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	restored, err := Restore(path, testOptions(), nil)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	verifyRestored(t, restored)
}

func TestPasswordRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")
	password := testPassword(t, "correct horse battery staple")

	if err := Dump(path, populatedVault(t), password); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	restored, err := Restore(path, testOptions(), password)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	verifyRestored(t, restored)
}

func TestWrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")

	if err := Dump(path, populatedVault(t), testPassword(t, "right")); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if _, err := Restore(path, testOptions(), testPassword(t, "wrong")); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Restore with wrong password: err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestPasswordRequired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")

	if err := Dump(path, populatedVault(t), testPassword(t, "secret")); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if _, err := Restore(path, testOptions(), nil); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("Restore without password: err = %v, want ErrPasswordRequired", err)
	}
}

func TestAgeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("generating identity: %v", err)
	}
	privateKey := testPassword(t, identity.String())

	if err := DumpToRecipients(path, populatedVault(t), []string{identity.Recipient().String()}); err != nil {
		t.Fatalf("DumpToRecipients failed: %v", err)
	}
	restored, err := RestoreWithIdentity(path, testOptions(), privateKey)
	if err != nil {
		t.Fatalf("RestoreWithIdentity failed: %v", err)
	}
	verifyRestored(t, restored)

	// A password read of an age file must say so, not fail auth.
	if _, err := Restore(path, testOptions(), testPassword(t, "anything")); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("password Restore of age file: err = %v, want ErrPasswordRequired", err)
	}

	// The wrong identity fails authentication.
	other, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("generating identity: %v", err)
	}
	wrongKey := testPassword(t, other.String())
	if _, err := RestoreWithIdentity(path, testOptions(), wrongKey); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("RestoreWithIdentity with wrong key: err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestRestoreOrDefaultMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.bin")

	v, err := RestoreOrDefault(path, testOptions(), nil)
	if err != nil {
		t.Fatalf("RestoreOrDefault failed: %v", err)
	}
	if len(v.Keys()) != 0 {
		t.Errorf("fresh vault has keys %v, want none", v.Keys())
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("RestoreOrDefault created a file; the first dump should")
	}
}

func TestCorruptFiles(t *testing.T) {
	directory := t.TempDir()

	write := func(name string, data []byte) string {
		t.Helper()
		path := filepath.Join(directory, name)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
		return path
	}

	good := filepath.Join(directory, "good.bin")
	if err := Dump(good, populatedVault(t), nil); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	goodData, err := os.ReadFile(good)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"bad magic", write("magic.bin", []byte("NOPE\x01\x00rest")), ErrCorruptFile},
		{"too short", write("short.bin", []byte("PV")), ErrCorruptFile},
		{"future version", write("future.bin", []byte("PVLT\x07\x00")), ErrUnsupportedFormat},
		{"unknown mode", write("mode.bin", []byte("PVLT\x01\x09payload")), ErrUnsupportedFormat},
		{"truncated body", write("truncated.bin", goodData[:len(goodData)-10]), ErrCorruptFile},
		{"garbage body", write("garbage.bin", append(append([]byte(nil), goodData[:6]...), []byte("not zstd at all")...)), ErrCorruptFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Restore(tt.path, testOptions(), nil); !errors.Is(err, tt.want) {
				t.Errorf("Restore(%s): err = %v, want %v", tt.name, err, tt.want)
			}
		})
	}
}

func TestTamperedCiphertext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")
	password := testPassword(t, "secret")

	if err := Dump(path, populatedVault(t), password); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}

	// Flip one bit in the ciphertext.
	data[len(data)-1] ^= 0x01
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing tampered file: %v", err)
	}
	if _, err := Restore(path, testOptions(), password); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Restore of tampered file: err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestTamperedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")
	password := testPassword(t, "secret")

	if err := Dump(path, populatedVault(t), password); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}

	// Lower the argon2 memory parameter in the header. The header is
	// authenticated, so the downgrade must fail even though the
	// ciphertext is untouched.
	data[13] ^= 0xFF
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing tampered file: %v", err)
	}
	if _, err := Restore(path, testOptions(), password); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Restore with downgraded KDF header: err = %v, want ErrAuthenticationFailed", err)
	}
}

func TestDumpIsDeterministic(t *testing.T) {
	directory := t.TempDir()
	first := filepath.Join(directory, "first.bin")
	second := filepath.Join(directory, "second.bin")

	v := populatedVault(t)
	if err := Dump(first, v, nil); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if err := Dump(second, v, nil); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	firstData, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("reading first dump: %v", err)
	}
	secondData, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("reading second dump: %v", err)
	}
	if string(firstData) != string(secondData) {
		t.Error("two plain dumps of the same vault differ")
	}
}

func TestDumpOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")

	if err := Dump(path, populatedVault(t), nil); err != nil {
		t.Fatalf("first Dump failed: %v", err)
	}

	v := vault.New(testOptions())
	if _, err := v.Add("only", "content"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := Dump(path, v, nil); err != nil {
		t.Fatalf("second Dump failed: %v", err)
	}

	restored, err := Restore(path, testOptions(), nil)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	keys := restored.Keys()
	if len(keys) != 1 || keys[0] != "only" {
		t.Errorf("Keys() = %v, want [only]", keys)
	}

	// No stray temporary files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("listing directory: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Errorf("directory contains %v, want just the vault file", names)
	}
}

func testPassword(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromBytes([]byte(value))
	if err != nil {
		t.Fatalf("creating secret buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}
