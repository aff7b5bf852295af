// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := NewStore()

	tests := []struct {
		name    string
		content string
	}{
		{"short", "Hello"},
		{"empty", ""},
		{"repetitive", strings.Repeat("You are a helpful assistant.\n", 200)},
		{"binaryish", "\x00\x01\x02\xff prompt with embedded bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := store.Put([]byte(tt.content))
			got, err := store.Get(hash)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !bytes.Equal(got, []byte(tt.content)) {
				t.Errorf("round trip changed content: got %q, want %q", got, tt.content)
			}
		})
	}
}

func TestPutIsIdempotent(t *testing.T) {
	store := NewStore()
	content := []byte("identical content, stored once")

	first := store.Put(content)
	second := store.Put(content)

	if first != second {
		t.Errorf("same content produced different hashes: %s vs %s",
			FormatHash(first), FormatHash(second))
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d after duplicate puts, want 1", store.Len())
	}
}

func TestGetUnknownHash(t *testing.T) {
	store := NewStore()
	_, err := store.Get(HashBytes([]byte("never stored")))
	if !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("Get on unknown hash: err = %v, want ErrBlobNotFound", err)
	}
}

func TestRepetitiveTextCompresses(t *testing.T) {
	store := NewStore()
	content := []byte(strings.Repeat("system: respond in formal English.\n", 500))
	hash := store.Put(content)

	stored, err := store.Stored(hash)
	if err != nil {
		t.Fatalf("Stored failed: %v", err)
	}
	if stored.Compression == CompressionNone {
		t.Error("highly repetitive text stored uncompressed")
	}
	if len(stored.Data) >= len(content) {
		t.Errorf("compressed size %d not smaller than original %d", len(stored.Data), len(content))
	}
	if stored.Size != len(content) {
		t.Errorf("Size = %d, want %d", stored.Size, len(content))
	}
}

func TestHashesSorted(t *testing.T) {
	store := NewStore()
	for _, content := range []string{"c", "a", "b", "d"} {
		store.Put([]byte(content))
	}

	hashes := store.Hashes()
	if len(hashes) != 4 {
		t.Fatalf("Hashes() returned %d entries, want 4", len(hashes))
	}
	for i := 1; i < len(hashes); i++ {
		if string(hashes[i-1][:]) >= string(hashes[i][:]) {
			t.Fatal("Hashes() is not in lexicographic order")
		}
	}
}

func TestPutStoredVerifiesIntegrity(t *testing.T) {
	source := NewStore()
	content := []byte(strings.Repeat("verify me ", 100))
	hash := source.Put(content)
	stored, err := source.Stored(hash)
	if err != nil {
		t.Fatalf("Stored failed: %v", err)
	}

	t.Run("valid", func(t *testing.T) {
		target := NewStore()
		if err := target.PutStored(hash, stored); err != nil {
			t.Fatalf("PutStored of valid blob failed: %v", err)
		}
		got, err := target.Get(hash)
		if err != nil {
			t.Fatalf("Get after PutStored failed: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Error("PutStored round trip changed content")
		}
	})

	t.Run("wrong hash", func(t *testing.T) {
		target := NewStore()
		wrongHash := HashBytes([]byte("something else"))
		if err := target.PutStored(wrongHash, stored); err == nil {
			t.Error("PutStored with mismatched hash should fail")
		}
	})

	t.Run("wrong size", func(t *testing.T) {
		target := NewStore()
		tampered := stored
		tampered.Size = stored.Size + 1
		if err := target.PutStored(hash, tampered); err == nil {
			t.Error("PutStored with wrong size should fail")
		}
	})
}

func TestParseFormatHash(t *testing.T) {
	hash := HashBytes([]byte("some content"))
	parsed, err := ParseHash(FormatHash(hash))
	if err != nil {
		t.Fatalf("ParseHash failed: %v", err)
	}
	if parsed != hash {
		t.Error("ParseHash(FormatHash(h)) != h")
	}

	if _, err := ParseHash("zz"); err == nil {
		t.Error("ParseHash of non-hex should fail")
	}
	if _, err := ParseHash("abcd"); err == nil {
		t.Error("ParseHash of short hex should fail")
	}
}
