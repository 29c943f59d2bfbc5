package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/nixspect/nixspect/internal/diag"
	"github.com/nixspect/nixspect/internal/source"
)

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)

	reports := []FileReport{
		duplicatedAttrReport(),
		{
			File:  "clean.nix",
			Index: source.NewIndex([]byte("{ }")),
		},
	}
	if err := r.Report(reports, ReportMetadata{FilesScanned: 2}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var output JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	if output.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", output.FilesScanned)
	}
	// Clean files are omitted from the files list.
	if len(output.Files) != 1 {
		t.Fatalf("Files = %d, want 1", len(output.Files))
	}

	file := output.Files[0]
	if file.File != "default.nix" {
		t.Errorf("File = %q", file.File)
	}
	if len(file.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %d, want 1", len(file.Diagnostics))
	}

	d := file.Diagnostics[0]
	if d.SName != "sema-duplicated-attrname" {
		t.Errorf("SName = %q", d.SName)
	}
	if d.Span.Start != 13 || d.Span.End != 14 {
		t.Errorf("Span = [%d, %d)", d.Span.Start, d.Span.End)
	}
	if d.Span.StartPos == nil || d.Span.StartPos.Line != 1 || d.Span.StartPos.Column != 14 {
		t.Errorf("StartPos = %+v, want 1:14", d.Span.StartPos)
	}
	if len(d.Labels) != 1 || d.Labels[0].Span.StartPos.Column != 5 {
		t.Errorf("Labels = %+v", d.Labels)
	}
	if d.HasFix {
		t.Error("HasFix = true for diagnostic without fixes")
	}

	if output.Summary.Total != 1 || output.Summary.Warnings != 1 || output.Summary.Files != 1 {
		t.Errorf("Summary = %+v", output.Summary)
	}
}

func TestJSONReporter_SeverityAsString(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)

	if err := r.Report([]FileReport{duplicatedAttrReport()}, ReportMetadata{FilesScanned: 1}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"severity": "warning"`)) {
		t.Errorf("severity not serialized as string:\n%s", buf.String())
	}
}

func TestJSONReporter_UnresolvableSpanKeepsOffsets(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)

	report := FileReport{
		File:  "broken.nix",
		Index: source.NewIndex([]byte("tiny")),
		Diagnostics: []diag.Diagnostic{
			{SName: "sema-broken", Severity: diag.SeverityError, Span: diag.Span{Start: 100, End: 200}},
		},
	}
	if err := r.Report([]FileReport{report}, ReportMetadata{FilesScanned: 1}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var output JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("parse: %v", err)
	}
	d := output.Files[0].Diagnostics[0]
	if d.Span.Start != 100 || d.Span.End != 200 {
		t.Errorf("Span = [%d, %d)", d.Span.Start, d.Span.End)
	}
	if d.Span.StartPos != nil {
		t.Errorf("StartPos = %+v, want nil", d.Span.StartPos)
	}
}
