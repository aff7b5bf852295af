// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm used for a
// stored blob. Tags are persisted in vault files (1 byte each), so
// these values are format constants — changing them breaks existing
// dumps.
type CompressionTag uint8

const (
	// CompressionNone indicates uncompressed data. Chosen when the
	// probe finds the blob incompressible (short prompts, content
	// that is already dense).
	CompressionNone CompressionTag = 0

	// CompressionLZ4 indicates LZ4 block compression. Fast fallback
	// when the blob compresses, but not well enough to justify zstd.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd indicates zstd at the default level. The common
	// case for prompt text, which is highly compressible.
	CompressionZstd CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("blob: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("blob: zstd decoder initialization failed: " + err.Error())
	}
}

// compress probes data and returns the smallest useful encoding along
// with the tag describing it. Zstd is tried first: a ratio of 1.5x or
// better selects it. Between 1.1x and 1.5x, LZ4 wins on speed. Below
// 1.1x the data is stored raw (a copy, so the store never aliases
// caller memory).
func compress(data []byte) ([]byte, CompressionTag) {
	if len(data) == 0 {
		return []byte{}, CompressionNone
	}

	zstdOutput := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(zstdOutput))

	switch {
	case ratio >= 1.5:
		return zstdOutput, CompressionZstd

	case ratio >= 1.1:
		bound := lz4.CompressBlockBound(len(data))
		destination := make([]byte, bound)
		written, err := lz4.CompressBlock(data, destination, nil)
		// CompressBlock returns 0 for incompressible input. Either
		// failure mode falls back to the zstd output we already have.
		if err != nil || written == 0 || written >= len(zstdOutput) {
			return zstdOutput, CompressionZstd
		}
		return destination[:written], CompressionLZ4

	default:
		stored := make([]byte, len(data))
		copy(stored, data)
		return stored, CompressionNone
	}
}

// decompress reverses compress. The uncompressedSize must match the
// original data length exactly — a mismatch means the stored blob is
// corrupt and returns an error.
func decompress(stored []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(stored) != uncompressedSize {
			return nil, fmt.Errorf("uncompressed blob: size %d does not match expected %d",
				len(stored), uncompressedSize)
		}
		result := make([]byte, len(stored))
		copy(result, stored)
		return result, nil

	case CompressionLZ4:
		destination := make([]byte, uncompressedSize)
		read, err := lz4.UncompressBlock(stored, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != uncompressedSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
		}
		return destination, nil

	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(stored, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != uncompressedSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), uncompressedSize)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}
