// Package diag defines the in-memory diagnostic model produced by the
// nixf-tidy analyzer: spans, labels, fixes, and the decoder for the
// analyzer's JSON payload.
package diag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents how critical a diagnostic is.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type Severity int

const (
	// SeverityError indicates a problem that makes the source invalid.
	SeverityError Severity = iota
	// SeverityWarning indicates a significant but non-fatal issue.
	SeverityWarning
	// SeverityNote indicates advice or a style suggestion.
	SeverityNote
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Title returns the capitalized form used in report headers.
func (s Severity) Title() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityNote:
		return "Note"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
// Pointer receiver required by json.Unmarshaler interface.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity string into a Severity value.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "note", "advice", "hint":
		return SeverityNote, nil
	default:
		return SeverityError, fmt.Errorf("unknown severity: %q", s)
	}
}

// SeverityFromLevel maps a nixf-tidy integer severity level to a Severity.
// nixf-tidy levels: 0 fatal, 1 error, 2 warning, 3 info, 4 hint.
func SeverityFromLevel(level int) Severity {
	switch level {
	case 0, 1:
		return SeverityError
	case 2:
		return SeverityWarning
	case 3, 4:
		return SeverityNote
	default:
		return SeverityError
	}
}

// IsAtLeast returns true if s is at least as severe as threshold.
func (s Severity) IsAtLeast(threshold Severity) bool {
	return s <= threshold // Lower value = more severe
}
