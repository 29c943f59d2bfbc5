package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/nixspect/nixspect/internal/diag"
	"github.com/nixspect/nixspect/internal/source"
)

// JSONOutput is the top-level structure for JSON output.
type JSONOutput struct {
	// Files contains results grouped by file.
	Files []FileResult `json:"files"`
	// Summary contains aggregate statistics.
	Summary Summary `json:"summary"`
	// FilesScanned is the total number of files analyzed.
	FilesScanned int `json:"files_scanned"`
}

// FileResult contains the diagnostics for a single file.
type FileResult struct {
	File        string           `json:"file"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
}

// JSONDiagnostic is one diagnostic with its position resolved.
type JSONDiagnostic struct {
	SName    string        `json:"sname"`
	Severity diag.Severity `json:"severity"`
	Message  string        `json:"message"`
	Span     JSONSpan      `json:"span"`
	Labels   []JSONLabel   `json:"labels,omitempty"`
	HasFix   bool          `json:"has_fix"`
}

// JSONLabel is a resolved secondary label.
type JSONLabel struct {
	Message string   `json:"message"`
	Span    JSONSpan `json:"span"`
}

// JSONSpan carries both byte offsets and resolved line/column positions.
// Positions are omitted when the span cannot be resolved.
type JSONSpan struct {
	Start    int              `json:"start"`
	End      int              `json:"end"`
	StartPos *source.Position `json:"start_pos,omitempty"`
	EndPos   *source.Position `json:"end_pos,omitempty"`
}

// Summary contains aggregate statistics about diagnostics.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Notes    int `json:"notes"`
	Files    int `json:"files"`
}

// JSONReporter formats diagnostics as JSON output.
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Report implements Reporter.
func (r *JSONReporter) Report(reports []FileReport, metadata ReportMetadata) error {
	output := JSONOutput{
		Files:        make([]FileResult, 0, len(reports)),
		FilesScanned: metadata.FilesScanned,
	}

	filesWithDiags := 0
	for _, fr := range reports {
		if len(fr.Diagnostics) == 0 {
			continue
		}
		filesWithDiags++

		result := FileResult{
			// Normalize paths to forward slashes for cross-platform consistency.
			File:        filepath.ToSlash(fr.File),
			Diagnostics: make([]JSONDiagnostic, 0, len(fr.Diagnostics)),
		}
		for _, d := range SortDiagnostics(fr.Diagnostics) {
			jd := JSONDiagnostic{
				SName:    d.SName,
				Severity: d.Severity,
				Message:  d.Message,
				Span:     resolveSpan(fr.Index, d.Span),
				HasFix:   d.HasFix(),
			}
			for _, l := range d.Labels {
				jd.Labels = append(jd.Labels, JSONLabel{
					Message: l.Message,
					Span:    resolveSpan(fr.Index, l.Span),
				})
			}
			result.Diagnostics = append(result.Diagnostics, jd)

			output.Summary.Total++
			switch d.Severity {
			case diag.SeverityError:
				output.Summary.Errors++
			case diag.SeverityWarning:
				output.Summary.Warnings++
			case diag.SeverityNote:
				output.Summary.Notes++
			}
		}
		output.Files = append(output.Files, result)
	}
	output.Summary.Files = filesWithDiags

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// resolveSpan attaches line/column positions to a byte span where the
// offsets resolve; unresolvable offsets keep only the raw bytes.
func resolveSpan(ix *source.Index, s diag.Span) JSONSpan {
	js := JSONSpan{Start: s.Start, End: s.End}
	if ix == nil {
		return js
	}
	if pos, err := ix.PositionOf(s.Start); err == nil {
		js.StartPos = &pos
	}
	if pos, err := ix.PositionOf(s.End); err == nil {
		js.EndPos = &pos
	}
	return js
}
