// Package source provides byte-offset indexing over a source buffer.
//
// An Index precomputes line-start offsets in a single O(n) scan so that
// offset-to-position lookups cost O(log n). Line numbers and columns are
// 1-based; columns count UTF-8 code points within the line, not bytes.
package source

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Position is a resolved (line, column) pair for a byte offset.
// Both fields are 1-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String formats a position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// OutOfBoundsError reports a byte offset that cannot be resolved against the
// indexed buffer: either it exceeds the buffer length, or it lands in the
// middle of a multi-byte UTF-8 sequence.
type OutOfBoundsError struct {
	// Offset is the offending byte offset.
	Offset int

	// Length is the length of the indexed buffer.
	Length int

	// SplitsRune is true when the offset is inside a multi-byte character.
	SplitsRune bool
}

// Error implements the error interface.
func (e *OutOfBoundsError) Error() string {
	if e.SplitsRune {
		return fmt.Sprintf("offset %d splits a multi-byte character", e.Offset)
	}
	return fmt.Sprintf("offset %d out of bounds (buffer length %d)", e.Offset, e.Length)
}

// Index maps byte offsets in a source buffer to line/column positions.
// It is immutable after construction and safe to share by reference for
// the lifetime of processing one file.
type Index struct {
	// buf is the raw source content.
	buf []byte

	// lineOffsets[i] is the byte offset where 1-based line i+1 starts.
	lineOffsets []int
}

// NewIndex builds an Index over buf with a single scan for line starts.
func NewIndex(buf []byte) *Index {
	// Line 1 always starts at offset 0, even for an empty buffer.
	lineOffsets := []int{0}
	for i, b := range buf {
		if b == '\n' {
			lineOffsets = append(lineOffsets, i+1)
		}
	}
	return &Index{buf: buf, lineOffsets: lineOffsets}
}

// Len returns the length of the indexed buffer in bytes.
func (ix *Index) Len() int {
	return len(ix.buf)
}

// LineCount returns the total number of lines. A trailing newline counts as
// starting a final empty line, matching how editors number lines.
func (ix *Index) LineCount() int {
	return len(ix.lineOffsets)
}

// checkOffset validates that offset lies within the buffer and does not
// split a multi-byte character. Offsets equal to the buffer length are
// valid: half-open spans may end there.
func (ix *Index) checkOffset(offset int) error {
	if offset < 0 || offset > len(ix.buf) {
		return &OutOfBoundsError{Offset: offset, Length: len(ix.buf)}
	}
	if offset < len(ix.buf) && !utf8.RuneStart(ix.buf[offset]) {
		return &OutOfBoundsError{Offset: offset, Length: len(ix.buf), SplitsRune: true}
	}
	return nil
}

// LineOf returns the 1-based line number containing offset.
func (ix *Index) LineOf(offset int) (int, error) {
	if err := ix.checkOffset(offset); err != nil {
		return 0, err
	}
	// First line whose start is past the offset; the offset belongs to the
	// line before it.
	n := sort.Search(len(ix.lineOffsets), func(i int) bool {
		return ix.lineOffsets[i] > offset
	})
	return n, nil
}

// ColumnOf returns the 1-based column of offset within its line, counting
// code points.
func (ix *Index) ColumnOf(offset int) (int, error) {
	line, err := ix.LineOf(offset)
	if err != nil {
		return 0, err
	}
	start := ix.lineOffsets[line-1]
	return utf8.RuneCount(ix.buf[start:offset]) + 1, nil
}

// PositionOf resolves offset to a (line, column) position.
func (ix *Index) PositionOf(offset int) (Position, error) {
	line, err := ix.LineOf(offset)
	if err != nil {
		return Position{}, err
	}
	start := ix.lineOffsets[line-1]
	return Position{
		Line:   line,
		Column: utf8.RuneCount(ix.buf[start:offset]) + 1,
	}, nil
}

// LineStart returns the byte offset where the 1-based line starts.
func (ix *Index) LineStart(line int) (int, error) {
	if line < 1 || line > len(ix.lineOffsets) {
		return 0, &OutOfBoundsError{Offset: -1, Length: len(ix.buf)}
	}
	return ix.lineOffsets[line-1], nil
}

// LineText returns the raw text of the 1-based line, excluding the line
// terminator. CRLF terminators are stripped entirely.
func (ix *Index) LineText(line int) (string, error) {
	if line < 1 || line > len(ix.lineOffsets) {
		return "", &OutOfBoundsError{Offset: -1, Length: len(ix.buf)}
	}
	start := ix.lineOffsets[line-1]
	end := len(ix.buf)
	if line < len(ix.lineOffsets) {
		end = ix.lineOffsets[line] - 1 // drop the '\n'
	}
	return strings.TrimSuffix(string(ix.buf[start:end]), "\r"), nil
}

// Slice returns the raw bytes of the half-open range [start, end).
// Both offsets are validated, including rune-boundary checks.
func (ix *Index) Slice(start, end int) ([]byte, error) {
	if err := ix.checkOffset(start); err != nil {
		return nil, err
	}
	if err := ix.checkOffset(end); err != nil {
		return nil, err
	}
	if start > end {
		return nil, &OutOfBoundsError{Offset: start, Length: len(ix.buf)}
	}
	return ix.buf[start:end], nil
}

// Source returns the raw indexed buffer. The returned slice must not be
// modified.
func (ix *Index) Source() []byte {
	return ix.buf
}

// HasCRLF reports whether the buffer uses CRLF line endings anywhere.
func (ix *Index) HasCRLF() bool {
	return bytes.Contains(ix.buf, []byte("\r\n"))
}
