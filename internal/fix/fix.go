// Package fix applies analyzer-suggested edits to a source buffer.
//
// All edit offsets reference the ORIGINAL buffer. The engine sorts the
// flattened edit set, proves it disjoint, and builds the corrected buffer in
// one forward copy-and-substitute pass, so no offset shifting is ever needed.
// The corrected buffer invalidates every span that was computed against the
// original; re-applying a fix set to its own output requires re-running the
// analyzer for fresh offsets.
package fix

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/nixspect/nixspect/internal/diag"
)

// ConflictError reports two selected edits whose spans overlap. The fix
// application for the affected file is aborted and the buffer left
// untouched; the conflict is surfaced, never resolved by picking one edit.
type ConflictError struct {
	// A and B are the two offending spans, in sorted order.
	A, B diag.Span
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting edits: spans %s and %s overlap", e.A, e.B)
}

// InvalidEditError reports an edit whose span does not fit the buffer.
type InvalidEditError struct {
	// Span is the offending edit span.
	Span diag.Span
	// Length is the buffer length the span was validated against.
	Length int
}

// Error implements the error interface.
func (e *InvalidEditError) Error() string {
	return fmt.Sprintf("edit span %s out of bounds (buffer length %d)", e.Span, e.Length)
}

// Apply flattens all edits from the selected fixes, validates them disjoint,
// and returns the corrected buffer. On any error the original buffer is
// untouched and no partial result is produced.
//
// Ties between edits starting at the same offset sort by End ascending, so a
// zero-width insertion before a deletion at the same point is deterministic.
func Apply(src []byte, fixes []diag.Fix) ([]byte, error) {
	var edits []diag.Edit
	for _, f := range fixes {
		edits = append(edits, f.Edits...)
	}
	return ApplyEdits(src, edits)
}

// ApplyEdits is Apply for an already flattened edit list.
func ApplyEdits(src []byte, edits []diag.Edit) ([]byte, error) {
	if len(edits) == 0 {
		return bytes.Clone(src), nil
	}

	sorted := make([]diag.Edit, len(edits))
	copy(sorted, edits)
	slices.SortStableFunc(sorted, func(a, b diag.Edit) int {
		if a.Span.Start != b.Span.Start {
			return a.Span.Start - b.Span.Start
		}
		return a.Span.End - b.Span.End
	})

	for _, e := range sorted {
		if e.Span.Start < 0 || e.Span.End < e.Span.Start || e.Span.End > len(src) {
			return nil, &InvalidEditError{Span: e.Span, Length: len(src)}
		}
	}
	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if prev.Span.End > next.Span.Start {
			return nil, &ConflictError{A: prev.Span, B: next.Span}
		}
	}

	var out bytes.Buffer
	out.Grow(len(src))
	pos := 0
	for _, e := range sorted {
		out.Write(src[pos:e.Span.Start])
		out.WriteString(e.NewText)
		pos = e.Span.End
	}
	out.Write(src[pos:])

	return out.Bytes(), nil
}

// CollectFixes gathers every fix from the given diagnostics. Diagnostics
// without fixes contribute nothing.
func CollectFixes(diags []diag.Diagnostic) []diag.Fix {
	var fixes []diag.Fix
	for _, d := range diags {
		for _, f := range d.Fixes {
			if len(f.Edits) > 0 {
				fixes = append(fixes, f)
			}
		}
	}
	return fixes
}

// FileChange describes the outcome of applying fixes to one file.
type FileChange struct {
	// Path is the file path.
	Path string

	// EditsApplied counts the individual edits substituted into the buffer.
	EditsApplied int

	// OriginalContent is the file content before fixes.
	OriginalContent []byte

	// ModifiedContent is the corrected buffer.
	ModifiedContent []byte
}

// HasChanges reports whether the corrected buffer differs from the original.
func (fc *FileChange) HasChanges() bool {
	return fc.EditsApplied > 0 && !bytes.Equal(fc.OriginalContent, fc.ModifiedContent)
}

// ApplyToFile applies every fix carried by the filtered diagnostics of one
// file and records the outcome. A conflict or invalid edit aborts the whole
// file: the returned error identifies the problem and OriginalContent is
// the only valid buffer.
func ApplyToFile(path string, src []byte, diags []diag.Diagnostic) (*FileChange, error) {
	fixes := CollectFixes(diags)

	fc := &FileChange{
		Path:            path,
		OriginalContent: src,
	}
	if len(fixes) == 0 {
		fc.ModifiedContent = bytes.Clone(src)
		return fc, nil
	}

	modified, err := Apply(src, fixes)
	if err != nil {
		return nil, fmt.Errorf("applying fixes to %s: %w", path, err)
	}

	fc.ModifiedContent = modified
	for _, f := range fixes {
		fc.EditsApplied += len(f.Edits)
	}
	return fc, nil
}
