// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/promptvault/promptvault/lib/clock"
	"github.com/promptvault/promptvault/lib/vault"
	"github.com/promptvault/promptvault/lib/vaultfile"
)

func testOptions() vault.Options {
	return vault.Options{
		Clock: clock.NewFake(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)),
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "vault.bin"), testOptions(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(m.Keys()) != 0 {
		t.Errorf("fresh manager has keys %v, want none", m.Keys())
	}
}

func TestMutationsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")

	m, err := Open(path, testOptions(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := m.Add("greet", "Hello"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := m.Update("greet", "Hello there", ""); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := m.SetTag("greet", "stable", 1); err != nil {
		t.Fatalf("SetTag failed: %v", err)
	}

	// A second manager reading the same file sees everything: each
	// mutation wrote through.
	reopened, err := Open(path, testOptions(), nil)
	if err != nil {
		t.Fatalf("reopening failed: %v", err)
	}
	content, err := reopened.Get("greet", vault.Tag("stable"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if content != "Hello" {
		t.Errorf("Get(stable) = %q, want %q", content, "Hello")
	}
	latest, err := reopened.LatestVersion("greet")
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if latest != 2 {
		t.Errorf("LatestVersion = %d, want 2", latest)
	}
}

func TestFailedMutationDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")

	m, err := Open(path, testOptions(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := m.Add("greet", "Hello"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := m.Add("greet", "again"); !errors.Is(err, vault.ErrKeyExists) {
		t.Fatalf("duplicate Add: err = %v, want ErrKeyExists", err)
	}

	reopened, err := Open(path, testOptions(), nil)
	if err != nil {
		t.Fatalf("reopening failed: %v", err)
	}
	content, err := reopened.Get("greet", vault.Latest())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if content != "Hello" {
		t.Errorf("Get = %q, want the original %q", content, "Hello")
	}
}

func TestConcurrentUpdates(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "vault.bin"), testOptions(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := m.Add("counter", "version 0"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	const writers = 8
	var group sync.WaitGroup
	for i := 0; i < writers; i++ {
		group.Add(1)
		go func(worker int) {
			defer group.Done()
			_, err := m.Update("counter", fmt.Sprintf("from worker %d", worker), "")
			// Two workers may race to write identical content; the
			// loser gets ErrNoChanges, which is fine. Anything else
			// is not.
			if err != nil && !errors.Is(err, vault.ErrNoChanges) {
				t.Errorf("worker %d: Update failed: %v", worker, err)
			}
		}(i)
	}
	group.Wait()

	history, err := m.History("counter")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	for i, record := range history {
		if record.Version != uint64(i)+1 {
			t.Fatalf("record %d has version %d; concurrent updates broke contiguity", i, record.Version)
		}
	}
	if len(history) < 2 || len(history) > writers+1 {
		t.Errorf("history has %d records after %d concurrent updates", len(history), writers)
	}
}

func TestConcurrentMixedOperations(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "vault.bin"), testOptions(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	const workers = 6
	var group sync.WaitGroup
	for i := 0; i < workers; i++ {
		group.Add(1)
		go func(worker int) {
			defer group.Done()
			key := fmt.Sprintf("key-%d", worker)
			if _, err := m.Add(key, "initial"); err != nil {
				t.Errorf("Add(%s) failed: %v", key, err)
				return
			}
			if _, err := m.Update(key, "revised", ""); err != nil {
				t.Errorf("Update(%s) failed: %v", key, err)
				return
			}
			if err := m.SetTag(key, "stable", 1); err != nil {
				t.Errorf("SetTag(%s) failed: %v", key, err)
				return
			}
			if _, err := m.Get(key, vault.Tag("stable")); err != nil {
				t.Errorf("Get(%s) failed: %v", key, err)
			}
		}(i)
	}
	group.Wait()

	if len(m.Keys()) != workers {
		t.Errorf("manager has %d keys, want %d", len(m.Keys()), workers)
	}
}

func TestBackup(t *testing.T) {
	directory := t.TempDir()

	m, err := Open(filepath.Join(directory, "vault.bin"), testOptions(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := m.Add("greet", "Hello"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	backupPath := filepath.Join(directory, "backup.bin")
	if err := m.Backup(backupPath); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	restored, err := vaultfile.Restore(backupPath, testOptions(), nil)
	if err != nil {
		t.Fatalf("restoring backup failed: %v", err)
	}
	content, err := restored.Get("greet", vault.Latest())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if content != "Hello" {
		t.Errorf("backup content = %q, want %q", content, "Hello")
	}

	// The backup is independent: mutating the live vault does not
	// touch it.
	if _, err := m.Update("greet", "changed", ""); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	restored, err = vaultfile.Restore(backupPath, testOptions(), nil)
	if err != nil {
		t.Fatalf("restoring backup failed: %v", err)
	}
	latest, err := restored.LatestVersion("greet")
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if latest != 1 {
		t.Errorf("backup latest version = %d, want 1", latest)
	}
}

func TestSharedSingleton(t *testing.T) {
	// The shared manager is process-global state; this test owns it.
	// Running it alongside another test that calls Init would be a
	// test bug, not a package bug.
	if _, err := Shared(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Shared before Init: err = %v, want ErrNotInitialized", err)
	}

	path := filepath.Join(t.TempDir(), "vault.bin")

	// Shared calls racing the first Init must be safe under the race
	// detector: each sees either ErrNotInitialized or the manager the
	// winning Init opened, never a torn read.
	const racers = 8
	var wg sync.WaitGroup
	racedManagers := make([]*Manager, racers)
	racedErrs := make([]error, racers)
	for i := range racedManagers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			racedManagers[i], racedErrs[i] = Shared()
		}()
	}
	first, err := Init(path, testOptions(), nil)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	wg.Wait()
	for i := range racedManagers {
		switch {
		case racedErrs[i] == nil && racedManagers[i] != first:
			t.Errorf("racing Shared %d returned a different manager", i)
		case racedErrs[i] != nil && !errors.Is(racedErrs[i], ErrNotInitialized):
			t.Errorf("racing Shared %d: err = %v, want nil or ErrNotInitialized", i, racedErrs[i])
		}
	}

	// A second Init with a different path does not reopen.
	second, err := Init(filepath.Join(t.TempDir(), "other.bin"), testOptions(), nil)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	if second != first {
		t.Error("second Init returned a different manager")
	}
	if second.Path() != path {
		t.Errorf("shared manager path = %q, want the first Init's %q", second.Path(), path)
	}

	shared, err := Shared()
	if err != nil {
		t.Fatalf("Shared failed: %v", err)
	}
	if shared != first {
		t.Error("Shared returned a different manager than Init")
	}
}
