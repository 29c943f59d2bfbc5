package diag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedInputError reports an analyzer payload that failed to decode
// into the diagnostic model. It is fatal for the file it was produced for;
// other files proceed.
type MalformedInputError struct {
	// File is the source file the payload was produced for.
	File string
	// Err is the underlying decode failure.
	Err error
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed analyzer output for %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Wire format of one nixf-tidy diagnostic. Positions arrive as cursors
// carrying byte offsets into the analyzed buffer.
type (
	payloadCursor struct {
		Offset int `json:"offset"`
	}

	payloadRange struct {
		LCur payloadCursor `json:"lCur"`
		RCur payloadCursor `json:"rCur"`
	}

	payloadNote struct {
		Message string       `json:"message"`
		Args    []string     `json:"args"`
		Range   payloadRange `json:"range"`
	}

	payloadEdit struct {
		Range   payloadRange `json:"range"`
		NewText string       `json:"newText"`
	}

	payloadFix struct {
		Edits []payloadEdit `json:"edits"`
	}

	payloadDiagnostic struct {
		SName    string        `json:"sname"`
		Severity int           `json:"severity"`
		Message  string        `json:"message"`
		Args     []string      `json:"args"`
		Range    payloadRange  `json:"range"`
		Notes    []payloadNote `json:"notes"`
		Fixes    []payloadFix  `json:"fixes"`
	}
)

// Decode parses a nixf-tidy JSON payload into diagnostics for one file.
// Every span is validated for basic shape (start <= end); offsets are range
// checked against the buffer later, when they are actually resolved.
// Any failure returns a MalformedInputError naming the file.
func Decode(file string, payload []byte) ([]Diagnostic, error) {
	var raw []payloadDiagnostic
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &MalformedInputError{File: file, Err: err}
	}

	diags := make([]Diagnostic, 0, len(raw))
	for i, pd := range raw {
		d, err := decodeOne(pd)
		if err != nil {
			return nil, &MalformedInputError{
				File: file,
				Err:  fmt.Errorf("diagnostic %d: %w", i, err),
			}
		}
		diags = append(diags, d)
	}
	return diags, nil
}

func decodeOne(pd payloadDiagnostic) (Diagnostic, error) {
	if pd.SName == "" {
		return Diagnostic{}, fmt.Errorf("missing sname")
	}

	span, err := decodeSpan(pd.Range)
	if err != nil {
		return Diagnostic{}, err
	}

	d := Diagnostic{
		SName:    pd.SName,
		Severity: SeverityFromLevel(pd.Severity),
		Message:  expandMessage(pd.Message, pd.Args),
		Span:     span,
	}

	for _, note := range pd.Notes {
		noteSpan, err := decodeSpan(note.Range)
		if err != nil {
			return Diagnostic{}, fmt.Errorf("note: %w", err)
		}
		d.Labels = append(d.Labels, Label{
			Span:    noteSpan,
			Message: expandMessage(note.Message, note.Args),
			Role:    RoleSecondary,
		})
	}

	for _, pf := range pd.Fixes {
		var f Fix
		for _, pe := range pf.Edits {
			editSpan, err := decodeSpan(pe.Range)
			if err != nil {
				return Diagnostic{}, fmt.Errorf("fix edit: %w", err)
			}
			f.Edits = append(f.Edits, Edit{Span: editSpan, NewText: pe.NewText})
		}
		d.Fixes = append(d.Fixes, f)
	}

	return d, nil
}

func decodeSpan(r payloadRange) (Span, error) {
	s := Span{Start: r.LCur.Offset, End: r.RCur.Offset}
	if s.Start < 0 || s.End < s.Start {
		return Span{}, fmt.Errorf("invalid span %s", s)
	}
	return s, nil
}

// expandMessage substitutes "{}" placeholders with args, in order.
// Extra placeholders are left as-is; extra args are dropped. This matches
// nixf-tidy's own message templating.
func expandMessage(msg string, args []string) string {
	for _, arg := range args {
		msg = strings.Replace(msg, "{}", arg, 1)
	}
	return msg
}
