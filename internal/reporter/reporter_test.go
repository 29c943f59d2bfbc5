package reporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nixspect/nixspect/internal/diag"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"", FormatText, false},
		{"json", FormatJSON, false},
		{"sarif", FormatSARIF, false},
		{"yaml", "", true},
		{"TEXT", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNew_AllFormats(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON, FormatSARIF} {
		r, err := New(Options{Format: format})
		if err != nil {
			t.Errorf("New(%q) error = %v", format, err)
		}
		if r == nil {
			t.Errorf("New(%q) returned nil reporter", format)
		}
	}

	if _, err := New(Options{Format: "bogus"}); err == nil {
		t.Error("New with unknown format should fail")
	}
}

func TestGetWriter(t *testing.T) {
	w, closeFn, err := GetWriter("stdout")
	if err != nil {
		t.Fatalf("GetWriter(stdout): %v", err)
	}
	if w != os.Stdout {
		t.Error("expected os.Stdout")
	}
	_ = closeFn()

	w, closeFn, err = GetWriter("stderr")
	if err != nil {
		t.Fatalf("GetWriter(stderr): %v", err)
	}
	if w != os.Stderr {
		t.Error("expected os.Stderr")
	}
	_ = closeFn()

	path := filepath.Join(t.TempDir(), "out.json")
	w, closeFn, err = GetWriter(path)
	if err != nil {
		t.Fatalf("GetWriter(file): %v", err)
	}
	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output file not created: %v", err)
	}
}

func TestSortDiagnostics(t *testing.T) {
	diags := []diag.Diagnostic{
		{SName: "b", Span: diag.Span{Start: 10, End: 12}},
		{SName: "a", Span: diag.Span{Start: 10, End: 12}},
		{SName: "c", Span: diag.Span{Start: 2, End: 5}},
	}

	sorted := SortDiagnostics(diags)

	if sorted[0].SName != "c" || sorted[1].SName != "a" || sorted[2].SName != "b" {
		t.Errorf("unexpected order: %q %q %q", sorted[0].SName, sorted[1].SName, sorted[2].SName)
	}
	// Input untouched.
	if diags[0].SName != "b" {
		t.Error("input slice was modified")
	}
}
