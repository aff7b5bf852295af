// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"strings"
	"testing"

	"github.com/promptvault/promptvault/lib/blob"
)

func TestExportRestoreRoundTrip(t *testing.T) {
	v, _ := testVault()
	mustAdd(t, v, "greet", "Hello")
	mustUpdate(t, v, "greet", "Hello there")
	if err := v.SetTag("greet", "stable", 1); err != nil {
		t.Fatalf("SetTag failed: %v", err)
	}
	mustAdd(t, v, "farewell", "Goodbye")

	restored, err := Restore(Options{}, v.Store(), v.ExportState())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	content, err := restored.Get("greet", Tag("stable"))
	if err != nil {
		t.Fatalf("Get(stable) failed: %v", err)
	}
	if content != "Hello" {
		t.Errorf("Get(stable) = %q, want %q", content, "Hello")
	}
	content, err = restored.Get("greet", Latest())
	if err != nil {
		t.Fatalf("Get(latest) failed: %v", err)
	}
	if content != "Hello there" {
		t.Errorf("Get(latest) = %q, want %q", content, "Hello there")
	}

	history, err := restored.History("greet")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if !history[0].HasTag("stable") {
		t.Error("denormalized tag view was not rebuilt from the tag table")
	}
	if !history[1].HasTag(DevTag) {
		t.Error("dev tag did not survive the round trip")
	}

	keys := restored.Keys()
	if len(keys) != 2 || keys[0] != "farewell" || keys[1] != "greet" {
		t.Errorf("Keys() = %v, want [farewell greet]", keys)
	}
}

func TestExportStateIsDeepCopy(t *testing.T) {
	v, _ := testVault()
	mustAdd(t, v, "k", "one")
	if err := v.SetTag("k", "stable", 1); err != nil {
		t.Fatalf("SetTag failed: %v", err)
	}

	states := v.ExportState()
	states[0].Records[0].Message = "mutated"
	states[0].Tags["stable"] = 99

	history, _ := v.History("k")
	if history[0].Message == "mutated" {
		t.Error("mutating an exported record leaked into the vault")
	}
	tags, _ := v.Tags("k")
	if tags["stable"] != 1 {
		t.Error("mutating an exported tag table leaked into the vault")
	}
}

func TestRestoreRejectsCorruptState(t *testing.T) {
	build := func() (*blob.Store, []KeyState) {
		v, _ := testVault()
		mustAdd(t, v, "k", "one")
		mustUpdate(t, v, "k", "two")
		return v.Store(), v.ExportState()
	}

	tests := []struct {
		name    string
		mutate  func(states []KeyState) []KeyState
		message string
	}{
		{
			name: "empty key",
			mutate: func(states []KeyState) []KeyState {
				states[0].Key = ""
				return states
			},
			message: "empty key",
		},
		{
			name: "duplicate key",
			mutate: func(states []KeyState) []KeyState {
				return append(states, states[0])
			},
			message: "appears twice",
		},
		{
			name: "no records",
			mutate: func(states []KeyState) []KeyState {
				states[0].Records = nil
				return states
			},
			message: "no versions",
		},
		{
			name: "version gap",
			mutate: func(states []KeyState) []KeyState {
				states[0].Records[1].Version = 3
				return states
			},
			message: "has version",
		},
		{
			name: "broken parent link",
			mutate: func(states []KeyState) []KeyState {
				states[0].Records[1].Parent = 5
				return states
			},
			message: "has parent",
		},
		{
			name: "record under wrong key",
			mutate: func(states []KeyState) []KeyState {
				states[0].Records[0].Key = "other"
				return states
			},
			message: "recorded under key",
		},
		{
			name: "first version not a snapshot",
			mutate: func(states []KeyState) []KeyState {
				states[0].Records[0].Snapshot = false
				return states
			},
			message: "not a snapshot",
		},
		{
			name: "missing blob",
			mutate: func(states []KeyState) []KeyState {
				states[0].Records[0].PayloadHash = blob.Hash{0xde, 0xad}
				return states
			},
			message: "missing blob",
		},
		{
			name: "tag out of range",
			mutate: func(states []KeyState) []KeyState {
				states[0].Tags = map[string]uint64{"stable": 9}
				return states
			},
			message: "nonexistent version",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, states := build()
			_, err := Restore(Options{}, store, tt.mutate(states))
			if err == nil {
				t.Fatal("Restore accepted corrupt state")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", err, tt.message)
			}
		})
	}
}
