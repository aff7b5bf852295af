// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

// Package vaultfile serializes a vault to a single binary file and
// back. The file layout is:
//
//	"PVLT" magic | format version byte | mode byte | mode header | payload
//
// The payload is the vault body (key states plus content blobs) as
// deterministic CBOR, zstd-compressed, then protected according to the
// mode:
//
//	mode 0 (plain):    payload stored as-is
//	mode 1 (password): argon2id-derived key, XChaCha20-Poly1305; the
//	                   KDF parameters, salt, and nonce live in the mode
//	                   header and are authenticated as associated data
//	mode 2 (age):      payload encrypted to age x25519 recipients
//
// Readers reject unknown format versions with ErrUnsupportedFormat
// before touching anything else, so a newer tool can change the body
// layout freely by bumping the version byte.
package vaultfile

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/promptvault/promptvault/lib/blob"
	"github.com/promptvault/promptvault/lib/codec"
	"github.com/promptvault/promptvault/lib/secret"
	"github.com/promptvault/promptvault/lib/vault"
)

// Sentinel errors for the persistence layer. Callers match with
// errors.Is; the wrapped messages carry the specifics.
var (
	// ErrCorruptFile means the file's structure is damaged: bad magic,
	// truncated header, undecodable body, or a body whose contents
	// violate the vault's structural invariants.
	ErrCorruptFile = errors.New("vaultfile: corrupt file")

	// ErrAuthenticationFailed means decryption failed — wrong password,
	// wrong identity, or tampered ciphertext. Deliberately
	// indistinguishable: the AEAD cannot tell these apart and the error
	// must not leak which it was.
	ErrAuthenticationFailed = errors.New("vaultfile: authentication failed")

	// ErrUnsupportedFormat means the file carries a format version or
	// protection mode this build does not understand.
	ErrUnsupportedFormat = errors.New("vaultfile: unsupported format")

	// ErrPasswordRequired means the file is password-protected and no
	// password was supplied.
	ErrPasswordRequired = errors.New("vaultfile: password required")

	// ErrIO wraps filesystem failures while reading or writing the
	// vault file, as distinct from problems with the file's contents.
	ErrIO = errors.New("vaultfile: io failure")
)

const (
	magic         = "PVLT"
	formatVersion = 1

	modePlain    = 0
	modePassword = 1
	modeAge      = 2

	saltSize = 16
)

// Argon2id parameters for password mode. These are the write-side
// defaults; reads always use the parameters recorded in the file
// header, so they can change without breaking old files.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	keySize      = chacha20poly1305.KeySize
)

// passwordHeaderSize is the mode-1 header: time (4) + memory (4) +
// threads (1) + salt + nonce.
const passwordHeaderSize = 4 + 4 + 1 + saltSize + chacha20poly1305.NonceSizeX

// fileBody is the CBOR structure inside the envelope: every key's
// state plus every content blob, both in deterministic order.
type fileBody struct {
	Keys  []vault.KeyState `cbor:"keys"`
	Blobs []blobEntry      `cbor:"blobs"`
}

type blobEntry struct {
	Hash blob.Hash       `cbor:"hash"`
	Blob blob.StoredBlob `cbor:"blob"`
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic("vaultfile: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("vaultfile: zstd decoder initialization failed: " + err.Error())
	}
}

// Dump writes the vault to path. A non-nil password selects password
// mode (argon2id + XChaCha20-Poly1305); a nil password writes an
// unencrypted file. The file is written to a temporary sibling and
// renamed into place, so a crash mid-write never leaves a truncated
// vault file behind.
func Dump(path string, v *vault.Vault, password *secret.Buffer) error {
	payload, err := encodeBody(v)
	if err != nil {
		return err
	}

	var envelope []byte
	if password == nil {
		envelope = append(envelopePrefix(modePlain), payload...)
	} else {
		envelope, err = sealWithPassword(payload, password)
		if err != nil {
			return err
		}
	}
	return writeAtomic(path, envelope)
}

// DumpToRecipients writes the vault to path encrypted to one or more
// age x25519 public keys. Anyone holding a matching identity can
// restore it; no password is involved.
func DumpToRecipients(path string, v *vault.Vault, recipientKeys []string) error {
	if len(recipientKeys) == 0 {
		return fmt.Errorf("vaultfile: at least one recipient is required")
	}
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return fmt.Errorf("vaultfile: parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	payload, err := encodeBody(v)
	if err != nil {
		return err
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return fmt.Errorf("vaultfile: creating age encryptor: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		return fmt.Errorf("vaultfile: encrypting: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("vaultfile: finalizing encryption: %w", err)
	}

	envelope := append(envelopePrefix(modeAge), ciphertext.Bytes()...)
	return writeAtomic(path, envelope)
}

// Restore reads the vault file at path. password is required for
// password-mode files and ignored for plain files; age-mode files need
// RestoreWithIdentity instead.
func Restore(path string, options vault.Options, password *secret.Buffer) (*vault.Vault, error) {
	mode, header, payload, err := readEnvelope(path)
	if err != nil {
		return nil, err
	}

	switch mode {
	case modePlain:
		return decodeBody(options, payload)

	case modePassword:
		if password == nil {
			return nil, fmt.Errorf("%w: %s", ErrPasswordRequired, path)
		}
		plaintext, err := openWithPassword(header, payload, password)
		if err != nil {
			return nil, err
		}
		return decodeBody(options, plaintext)

	case modeAge:
		return nil, fmt.Errorf("%w: file is encrypted to age recipients, not a password", ErrPasswordRequired)

	default:
		return nil, fmt.Errorf("%w: unknown protection mode %d", ErrUnsupportedFormat, mode)
	}
}

// RestoreWithIdentity reads an age-mode vault file using the given
// age x25519 private key.
func RestoreWithIdentity(path string, options vault.Options, privateKey *secret.Buffer) (*vault.Vault, error) {
	mode, _, payload, err := readEnvelope(path)
	if err != nil {
		return nil, err
	}
	if mode != modeAge {
		return nil, fmt.Errorf("%w: file is not age-encrypted (mode %d)", ErrUnsupportedFormat, mode)
	}

	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("vaultfile: parsing private key: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(payload), identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	return decodeBody(options, plaintext)
}

// RestoreOrDefault is Restore, except a missing file yields a fresh
// empty vault instead of an error. First-run convenience: the file
// appears on the first dump.
func RestoreOrDefault(path string, options vault.Options, password *secret.Buffer) (*vault.Vault, error) {
	v, err := Restore(path, options, password)
	if errors.Is(err, os.ErrNotExist) {
		return vault.New(options), nil
	}
	return v, err
}

// NeedsPassword reports whether the file at path is password-
// protected. A missing file needs no password. Lets interactive
// callers decide whether to prompt before attempting a restore.
func NeedsPassword(path string) (bool, error) {
	mode, _, _, err := readEnvelope(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return mode == modePassword, nil
}

// envelopePrefix returns magic + version + mode.
func envelopePrefix(mode byte) []byte {
	prefix := make([]byte, 0, len(magic)+2)
	prefix = append(prefix, magic...)
	return append(prefix, formatVersion, mode)
}

func encodeBody(v *vault.Vault) ([]byte, error) {
	store := v.Store()
	hashes := store.Hashes()
	blobs := make([]blobEntry, 0, len(hashes))
	for _, hash := range hashes {
		stored, err := store.Stored(hash)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blobEntry{Hash: hash, Blob: stored})
	}

	body, err := codec.Marshal(fileBody{Keys: v.ExportState(), Blobs: blobs})
	if err != nil {
		return nil, fmt.Errorf("vaultfile: encoding body: %w", err)
	}
	return zstdEncoder.EncodeAll(body, nil), nil
}

func decodeBody(options vault.Options, payload []byte) (*vault.Vault, error) {
	raw, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing body: %v", ErrCorruptFile, err)
	}

	var body fileBody
	if err := codec.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrCorruptFile, err)
	}

	store := blob.NewStore()
	for _, entry := range body.Blobs {
		if err := store.PutStored(entry.Hash, entry.Blob); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
	}

	v, err := vault.Restore(options, store, body.Keys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return v, nil
}

// sealWithPassword builds a complete mode-1 envelope. The header
// (magic, version, mode, KDF parameters, salt, nonce) doubles as the
// AEAD's associated data, so tampering with any of it — downgrading
// the KDF cost, swapping the salt — fails authentication.
func sealWithPassword(payload []byte, password *secret.Buffer) ([]byte, error) {
	salt := make([]byte, saltSize)
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if err := randomBytes(salt); err != nil {
		return nil, err
	}
	if err := randomBytes(nonce); err != nil {
		return nil, err
	}

	header := envelopePrefix(modePassword)
	header = binary.BigEndian.AppendUint32(header, argonTime)
	header = binary.BigEndian.AppendUint32(header, argonMemory)
	header = append(header, argonThreads)
	header = append(header, salt...)
	header = append(header, nonce...)

	key := argon2.IDKey(password.Bytes(), salt, argonTime, argonMemory, argonThreads, keySize)
	defer secret.Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("vaultfile: creating cipher: %w", err)
	}
	return aead.Seal(header, nonce, payload, header), nil
}

// openWithPassword decrypts a mode-1 payload. header is the full
// envelope header including magic, version, and mode bytes, exactly as
// read from disk; it must match the associated data sealed at write
// time.
func openWithPassword(header, payload []byte, password *secret.Buffer) ([]byte, error) {
	kdf := header[len(magic)+2:]
	time := binary.BigEndian.Uint32(kdf[0:4])
	memory := binary.BigEndian.Uint32(kdf[4:8])
	threads := kdf[8]
	salt := kdf[9 : 9+saltSize]
	nonce := kdf[9+saltSize:]

	if time == 0 || memory == 0 || threads == 0 {
		return nil, fmt.Errorf("%w: invalid key derivation parameters", ErrCorruptFile)
	}

	key := argon2.IDKey(password.Bytes(), salt, time, memory, threads, keySize)
	defer secret.Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("vaultfile: creating cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, payload, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAuthenticationFailed,
			"wrong password or tampered file")
	}
	return plaintext, nil
}

func randomBytes(destination []byte) error {
	if _, err := rand.Read(destination); err != nil {
		return fmt.Errorf("vaultfile: reading random bytes: %w", err)
	}
	return nil
}

// readEnvelope loads the file and splits it into mode, header (the
// authenticated prefix, for password mode), and payload.
func readEnvelope(path string) (mode byte, header, payload []byte, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return 0, nil, nil, fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
	}

	if len(data) < len(magic)+2 || string(data[:len(magic)]) != magic {
		return 0, nil, nil, fmt.Errorf("%w: %s is not a vault file", ErrCorruptFile, path)
	}
	version := data[len(magic)]
	if version != formatVersion {
		return 0, nil, nil, fmt.Errorf("%w: file format version %d (this build reads version %d)",
			ErrUnsupportedFormat, version, formatVersion)
	}
	mode = data[len(magic)+1]

	headerSize := len(magic) + 2
	if mode == modePassword {
		headerSize += passwordHeaderSize
		if len(data) < headerSize {
			return 0, nil, nil, fmt.Errorf("%w: truncated header in %s", ErrCorruptFile, path)
		}
	}
	return mode, data[:headerSize], data[headerSize:], nil
}

// writeAtomic writes data to path via a temporary sibling file and
// rename. The vault file holds everything, so a partial write must
// never replace a good file.
func writeAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIO, directory, err)
	}

	temporary, err := os.CreateTemp(directory, ".vault-*")
	if err != nil {
		return fmt.Errorf("%w: creating temporary file: %v", ErrIO, err)
	}
	defer os.Remove(temporary.Name())

	if err := temporary.Chmod(0o600); err != nil {
		temporary.Close()
		return fmt.Errorf("%w: setting permissions: %v", ErrIO, err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
	}
	if err := temporary.Sync(); err != nil {
		temporary.Close()
		return fmt.Errorf("%w: syncing %s: %v", ErrIO, path, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", ErrIO, path, err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return fmt.Errorf("%w: replacing %s: %v", ErrIO, path, err)
	}
	return nil
}
