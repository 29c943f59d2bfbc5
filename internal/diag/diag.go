package diag

import "fmt"

// Span is a half-open [Start, End) byte-offset range into one source buffer.
// Invariant: Start <= End, and End never exceeds the buffer length of the
// file the diagnostic was raised against.
type Span struct {
	// Start is the inclusive starting byte offset.
	Start int `json:"start"`
	// End is the exclusive ending byte offset.
	End int `json:"end"`
}

// String formats a span as "[start, end)".
func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsZeroWidth reports whether the span covers no bytes (an insertion point).
func (s Span) IsZeroWidth() bool {
	return s.Start == s.End
}

// Overlaps reports whether two half-open spans share at least one byte
// offset. Touching spans (a.End == b.Start) do not overlap.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Role classifies a label's relationship to its diagnostic.
type Role int

const (
	// RoleSecondary marks a related location, e.g. "previously declared
	// here". It is the zero value so a label never claims the primary
	// marker unless asked to.
	RoleSecondary Role = iota
	// RolePrimary marks the main span the diagnostic is about.
	RolePrimary
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// Label annotates a source location with a short message. Labels point at
// locations related to, but distinct from, the diagnostic's primary span.
type Label struct {
	// Span is the annotated byte range.
	Span Span `json:"span"`
	// Message is the short text attached to the underline.
	Message string `json:"message"`
	// Role distinguishes the primary span from secondary notes.
	Role Role `json:"-"`
}

// Edit is a single span-replacement operation within a Fix. Span bounds
// reference the original buffer the fix was produced against.
type Edit struct {
	// Span is the byte range to replace.
	Span Span `json:"span"`
	// NewText is the replacement text. Empty means delete.
	NewText string `json:"newText"`
}

// Fix is an ordered group of edits meant to be applied atomically.
// Edits within one fix must not overlap; the fix engine rejects violations.
type Fix struct {
	// Edits are the text replacements, in producer order.
	Edits []Edit `json:"edits"`
}

// Diagnostic is one analyzer finding: an identifier (stable across runs,
// used for --ignore), a severity, a templated message, the primary span,
// zero or more secondary labels, and zero or more candidate fixes.
//
// Diagnostics and their nested spans, labels, and fixes are immutable value
// objects: constructed once by Decode and consumed read-only afterwards.
type Diagnostic struct {
	// SName is the stable identifier, e.g. "sema-duplicated-attrname".
	SName string `json:"sname"`
	// Severity is the diagnostic's severity level.
	Severity Severity `json:"severity"`
	// Message is the fully templated human-readable message.
	Message string `json:"message"`
	// Span is the primary byte range the diagnostic is about.
	Span Span `json:"span"`
	// Labels are secondary annotations, in analyzer order.
	Labels []Label `json:"labels,omitempty"`
	// Fixes are candidate fixes, each an atomic group of edits.
	Fixes []Fix `json:"fixes,omitempty"`
}

// HasFix reports whether the diagnostic carries at least one non-empty fix.
func (d Diagnostic) HasFix() bool {
	for _, f := range d.Fixes {
		if len(f.Edits) > 0 {
			return true
		}
	}
	return false
}
