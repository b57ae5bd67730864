package core

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	snerrors "github.com/standardbeagle/snip/internal/errors"
	"github.com/standardbeagle/snip/internal/types"
)

// SourceBuffer holds the exact bytes a syntax tree was parsed from.
// All offsets handed out by the parser index into Content. The buffer is
// never mutated after construction.
type SourceBuffer struct {
	Path        string
	Content     []byte
	LineOffsets []uint32 // Byte offsets for start of each line
	FastHash    uint64   // xxhash for quick equality checks
}

// NewSourceBuffer wraps content read from path.
func NewSourceBuffer(path string, content []byte) *SourceBuffer {
	return &SourceBuffer{
		Path:        path,
		Content:     content,
		LineOffsets: computeLineOffsets(content),
		FastHash:    xxhash.Sum64(content),
	}
}

// LoadSourceBuffer reads path from disk, refusing files larger than maxSize
// (maxSize <= 0 disables the limit).
func LoadSourceBuffer(path string, maxSize int64) (*SourceBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, snerrors.NewFileError("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, snerrors.NewFileError("stat", path, err)
	}
	if info.IsDir() {
		return nil, snerrors.NewFileError("read", path, fmt.Errorf("is a directory"))
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, snerrors.NewFileTooLargeError(path, info.Size(), maxSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, snerrors.NewFileError("read", path, err)
	}
	return NewSourceBuffer(path, content), nil
}

// Len returns the buffer size in bytes
func (b *SourceBuffer) Len() int {
	return len(b.Content)
}

// Slice returns the bytes in r. The returned slice aliases the buffer.
func (b *SourceBuffer) Slice(r types.ByteRange) ([]byte, error) {
	if !r.Valid(len(b.Content)) {
		return nil, fmt.Errorf("range %s outside buffer of %d bytes", r, len(b.Content))
	}
	return b.Content[r.Start:r.End], nil
}

// Text returns the UTF-8 text in [start, end). Out of range or invalid
// UTF-8 text yields an EncodingError.
func (b *SourceBuffer) Text(start, end uint) (string, error) {
	if start > end || end > uint(len(b.Content)) {
		return "", snerrors.NewEncodingError(b.Path, start, end)
	}
	raw := b.Content[start:end]
	if !utf8.Valid(raw) {
		return "", snerrors.NewEncodingError(b.Path, start, end)
	}
	return string(raw), nil
}

// LineAt returns the 1-based line containing offset.
func (b *SourceBuffer) LineAt(offset uint) int {
	if len(b.LineOffsets) == 0 {
		return 1
	}
	// First line start strictly greater than offset, minus one
	idx := sort.Search(len(b.LineOffsets), func(i int) bool {
		return uint(b.LineOffsets[i]) > offset
	})
	return idx
}

// SameContent reports whether other holds byte-identical content.
func (b *SourceBuffer) SameContent(other *SourceBuffer) bool {
	if other == nil {
		return false
	}
	if b.FastHash != other.FastHash || len(b.Content) != len(other.Content) {
		return false
	}
	return bytes.Equal(b.Content, other.Content)
}

// computeLineOffsets computes byte offsets for each line in the content
func computeLineOffsets(content []byte) []uint32 {
	if len(content) == 0 {
		return nil
	}

	estimatedLines := len(content)/80 + 2
	if estimatedLines > 1000 {
		estimatedLines = 1000
	}

	offsets := make([]uint32, 1, estimatedLines)
	offsets[0] = 0

	for i, c := range content {
		if c == '\n' && i+1 < len(content) {
			offsets = append(offsets, uint32(i+1))
		}
	}

	return offsets
}
