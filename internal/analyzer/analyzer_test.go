package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestResolvePath_Explicit(t *testing.T) {
	got, err := ResolvePath("/opt/nixf/bin/nixf-tidy")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != "/opt/nixf/bin/nixf-tidy" {
		t.Errorf("path = %q, want explicit path", got)
	}
}

func TestResolvePath_Env(t *testing.T) {
	t.Setenv(EnvPath, "/from/env/nixf-tidy")

	got, err := ResolvePath("")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != "/from/env/nixf-tidy" {
		t.Errorf("path = %q, want env path", got)
	}
}

func TestResolvePath_ExplicitBeatsEnv(t *testing.T) {
	t.Setenv(EnvPath, "/from/env/nixf-tidy")

	got, err := ResolvePath("/explicit/nixf-tidy")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != "/explicit/nixf-tidy" {
		t.Errorf("path = %q, want explicit path", got)
	}
}

func TestResolvePath_NotFound(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Setenv("PATH", t.TempDir()) // nothing on PATH

	_, err := ResolvePath("")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestAnalyze_CapturesStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	// cat echoes stdin back, standing in for nixf-tidy.
	a := &Analyzer{Path: "cat"}
	out, err := a.Analyze(context.Background(), []byte(`[{"sname":"x"}]`))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if string(out) != `[{"sname":"x"}]` {
		t.Errorf("stdout = %q", out)
	}
}

func TestAnalyze_RunError(t *testing.T) {
	a := &Analyzer{Path: filepath.Join(t.TempDir(), "missing-binary")}
	_, err := a.Analyze(context.Background(), []byte("{ }"))

	var re *RunError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want RunError", err)
	}
}

func TestAnalyze_ContextCancelled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	script := filepath.Join(t.TempDir(), "slow")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 10\n"), 0o755); err != nil { //nolint:gosec // test fixture
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	a := &Analyzer{Path: script}
	_, err := a.Analyze(ctx, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
}
