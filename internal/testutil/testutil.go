// Package testutil provides test helpers for the nixspect test suites.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/nixspect/nixspect/internal/diag"
)

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(tb testing.TB, dir, name, content string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // test fixture
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

// FakeAnalyzer writes an executable shell script that ignores stdin and
// prints payload on stdout, standing in for a real nixf-tidy binary.
// The test is skipped on platforms without /bin/sh.
func FakeAnalyzer(tb testing.TB, payload string) string {
	tb.Helper()

	if runtime.GOOS == "windows" {
		tb.Skip("fake analyzer requires a POSIX shell")
	}

	path := filepath.Join(tb.TempDir(), "fake-nixf-tidy")
	script := "#!/bin/sh\ncat >/dev/null\nprintf '%s' " + shellQuote(payload) + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil { //nolint:gosec // test fixture must be executable
		tb.Fatalf("write fake analyzer: %v", err)
	}
	return path
}

// shellQuote single-quotes s for safe embedding in a shell script.
func shellQuote(s string) string {
	quoted := "'"
	for _, r := range s {
		if r == '\'' {
			quoted += `'\''`
			continue
		}
		quoted += string(r)
	}
	return quoted + "'"
}

// Diag builds a minimal diagnostic for tests that only care about a few
// fields.
func Diag(sname string, sev diag.Severity, msg string, start, end int) diag.Diagnostic {
	return diag.Diagnostic{
		SName:    sname,
		Severity: sev,
		Message:  msg,
		Span:     diag.Span{Start: start, End: end},
	}
}
