// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

// Package delta encodes a revision either as a full snapshot or as a
// delta against its parent revision, and decodes either form back to
// full content.
//
// Deltas are computed with a line-oriented Myers diff
// (hexops/gotextdiff) and stored as byte-offset splice edits in
// deterministic CBOR. Applying a delta is a plain splice loop with
// strict validation: the parent's hash and length are carried inside
// the payload, so supplying the wrong parent fails cleanly instead of
// producing garbage.
package delta

import (
	"errors"
	"fmt"

	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/promptvault/promptvault/lib/blob"
	"github.com/promptvault/promptvault/lib/codec"
)

// ErrCorruptDelta is returned when a delta payload cannot be applied
// to the given parent content: wrong parent, malformed edits, or a
// payload that fails to decode.
var ErrCorruptDelta = errors.New("delta: corrupt delta")

// DefaultSnapshotThreshold is the delta-to-content size ratio above
// which Encode stores a full snapshot instead. Keeping deltas under
// 70% of the full content bounds worst-case reconstruction cost
// without giving up much space on typical prompt edits.
const DefaultSnapshotThreshold = 0.7

// spliceEdit replaces parent[Start:End] with Insert. Offsets are byte
// offsets into the parent content. Edits are stored sorted by Start
// and never overlap.
type spliceEdit struct {
	Start  int    `cbor:"start"`
	End    int    `cbor:"end"`
	Insert []byte `cbor:"insert"`
}

// payload is the serialized form of a delta.
type payload struct {
	// ParentHash is the content hash of the revision this delta
	// applies to. Decode rejects any other parent.
	ParentHash blob.Hash `cbor:"parent_hash"`

	// ParentSize is the parent content length in bytes, checked
	// before the hash for a cheap early mismatch signal.
	ParentSize int `cbor:"parent_size"`

	// ResultSize is the expected length of the reconstructed content.
	ResultSize int `cbor:"result_size"`

	Edits []spliceEdit `cbor:"edits"`
}

// Encode encodes newContent either as a snapshot or as a delta against
// parentContent. A nil parent (first version of a key) always produces
// a snapshot. Otherwise a delta is computed, and a snapshot is chosen
// instead when the encoded delta exceeds threshold × the full content
// size. A threshold of zero or below selects DefaultSnapshotThreshold.
//
// Returns the payload to store and whether it is a snapshot.
func Encode(parentContent, newContent []byte, threshold float64) ([]byte, bool, error) {
	if parentContent == nil {
		return snapshotPayload(newContent), true, nil
	}
	if threshold <= 0 {
		threshold = DefaultSnapshotThreshold
	}

	edits := computeEdits(parentContent, newContent)
	if edits == nil {
		// Offset conversion failed; never expected for edits the
		// library computed itself, but a snapshot is always a safe
		// answer.
		return snapshotPayload(newContent), true, nil
	}

	encoded, err := codec.Marshal(payload{
		ParentHash: blob.HashBytes(parentContent),
		ParentSize: len(parentContent),
		ResultSize: len(newContent),
		Edits:      edits,
	})
	if err != nil {
		return nil, false, fmt.Errorf("encoding delta payload: %w", err)
	}

	if float64(len(encoded)) > threshold*float64(len(newContent)) {
		return snapshotPayload(newContent), true, nil
	}
	return encoded, false, nil
}

// Decode reverses Encode. For snapshots the payload is the content
// itself. For deltas the payload is validated against parentContent
// and applied; any mismatch returns ErrCorruptDelta.
func Decode(parentContent, storedPayload []byte, isSnapshot bool) ([]byte, error) {
	if isSnapshot {
		content := make([]byte, len(storedPayload))
		copy(content, storedPayload)
		return content, nil
	}

	if parentContent == nil {
		return nil, fmt.Errorf("%w: delta has no parent content", ErrCorruptDelta)
	}

	var p payload
	if err := codec.Unmarshal(storedPayload, &p); err != nil {
		return nil, fmt.Errorf("%w: undecodable payload: %v", ErrCorruptDelta, err)
	}

	if len(parentContent) != p.ParentSize {
		return nil, fmt.Errorf("%w: parent is %d bytes, delta expects %d",
			ErrCorruptDelta, len(parentContent), p.ParentSize)
	}
	if blob.HashBytes(parentContent) != p.ParentHash {
		return nil, fmt.Errorf("%w: parent content does not match delta's parent hash", ErrCorruptDelta)
	}

	result, err := applyEdits(parentContent, p.Edits)
	if err != nil {
		return nil, err
	}
	if len(result) != p.ResultSize {
		return nil, fmt.Errorf("%w: reconstructed %d bytes, expected %d",
			ErrCorruptDelta, len(result), p.ResultSize)
	}
	return result, nil
}

// snapshotPayload copies content so the stored payload never aliases
// caller memory.
func snapshotPayload(content []byte) []byte {
	stored := make([]byte, len(content))
	copy(stored, content)
	return stored
}

// computeEdits runs the Myers diff and converts the resulting
// line/column spans to byte offsets. Returns nil if any span fails to
// convert.
func computeEdits(parentContent, newContent []byte) []spliceEdit {
	textEdits := myers.ComputeEdits(span.URI(""), string(parentContent), string(newContent))
	if len(textEdits) == 0 {
		return []spliceEdit{}
	}

	converter := span.NewContentConverter("", parentContent)
	edits := make([]spliceEdit, 0, len(textEdits))
	for _, textEdit := range textEdits {
		withOffsets, err := textEdit.Span.WithOffset(converter)
		if err != nil {
			return nil
		}
		edits = append(edits, spliceEdit{
			Start:  withOffsets.Start().Offset(),
			End:    withOffsets.End().Offset(),
			Insert: []byte(textEdit.NewText),
		})
	}
	sortEdits(edits)
	return edits
}

// sortEdits orders edits by start offset. The Myers implementation
// already emits them in order; sorting keeps the stored form canonical
// regardless.
func sortEdits(edits []spliceEdit) {
	for i := 1; i < len(edits); i++ {
		for j := i; j > 0 && edits[j].Start < edits[j-1].Start; j-- {
			edits[j], edits[j-1] = edits[j-1], edits[j]
		}
	}
}

// applyEdits splices the edits into parent. Edits must be sorted,
// non-overlapping, and within bounds.
func applyEdits(parent []byte, edits []spliceEdit) ([]byte, error) {
	result := make([]byte, 0, len(parent))
	cursor := 0
	for index, edit := range edits {
		if edit.Start < cursor || edit.End < edit.Start || edit.End > len(parent) {
			return nil, fmt.Errorf("%w: edit %d [%d:%d) is out of bounds or overlaps a prior edit",
				ErrCorruptDelta, index, edit.Start, edit.End)
		}
		result = append(result, parent[cursor:edit.Start]...)
		result = append(result, edit.Insert...)
		cursor = edit.End
	}
	result = append(result, parent[cursor:]...)
	return result, nil
}
