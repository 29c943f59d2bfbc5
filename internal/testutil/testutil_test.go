package testutil

import (
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/nixspect/nixspect/internal/diag"
)

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, t.TempDir(), "sub/default.nix", "{ }")

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "{ }" {
		t.Errorf("content = %q, want %q", got, "{ }")
	}
}

func TestFakeAnalyzer(t *testing.T) {
	payload := `[{"sname":"x"}]`
	path := FakeAnalyzer(t, payload)

	cmd := exec.Command(path)
	cmd.Stdin = strings.NewReader("ignored input")
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("run fake analyzer: %v", err)
	}
	if string(out) != payload {
		t.Errorf("output = %q, want %q", out, payload)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"has space", "'has space'"},
		{"it's", `'it'\''s'`},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDiag(t *testing.T) {
	d := Diag("sema-unused-def", diag.SeverityWarning, "unused", 2, 5)
	if d.SName != "sema-unused-def" || d.Span.Start != 2 || d.Span.End != 5 {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
}
