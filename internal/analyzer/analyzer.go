// Package analyzer invokes the nixf-tidy binary on Nix source code and
// returns its raw JSON diagnostics payload.
//
// nixf-tidy reads the source from stdin and writes a JSON array of
// diagnostics to stdout. The binary is located through, in order, an
// explicit path, the NIXF_TIDY_PATH environment variable, and PATH lookup.
package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// EnvPath is the environment variable naming the nixf-tidy binary.
const EnvPath = "NIXF_TIDY_PATH"

// binaryName is what we look up on PATH when nothing else is configured.
const binaryName = "nixf-tidy"

// NotFoundError reports that no nixf-tidy binary could be located.
type NotFoundError struct {
	// Tried lists the sources consulted, in order.
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("nixf-tidy not found (tried %s); install nixf or set %s",
		strings.Join(e.Tried, ", "), EnvPath)
}

// RunError reports a nixf-tidy invocation that failed. Stderr carries
// whatever the binary printed before exiting.
type RunError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *RunError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("running %s: %v: %s", e.Path, e.Err, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("running %s: %v", e.Path, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// ResolvePath locates the nixf-tidy binary. An explicit non-empty path wins
// and is returned as-is; otherwise NIXF_TIDY_PATH is consulted, then PATH.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env, nil
	}
	path, err := exec.LookPath(binaryName)
	if err != nil {
		return "", &NotFoundError{Tried: []string{"--nixf-tidy-path", "$" + EnvPath, "$PATH"}}
	}
	return path, nil
}

// Analyzer runs nixf-tidy on source buffers.
type Analyzer struct {
	// Path is the resolved binary path.
	Path string

	// VariableLookup enables nixf-tidy's variable lookup analysis.
	VariableLookup bool
}

// New resolves the binary and returns a ready Analyzer.
func New(explicitPath string, variableLookup bool) (*Analyzer, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return nil, err
	}
	return &Analyzer{Path: path, VariableLookup: variableLookup}, nil
}

// Analyze pipes src to nixf-tidy and returns its stdout, the raw JSON
// diagnostics payload. The subprocess is killed when ctx is cancelled.
func (a *Analyzer) Analyze(ctx context.Context, src []byte) ([]byte, error) {
	var args []string
	if a.VariableLookup {
		args = append(args, "--variable-lookup")
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, a.Path, args...) //nolint:gosec // Path is explicit user configuration.
	cmd.Stdin = bytes.NewReader(src)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RunError{Path: a.Path, Stderr: stderr.String(), Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"binary":   a.Path,
		"bytes_in": len(src),
		"duration": time.Since(start),
	}).Debug("nixf-tidy completed")

	return stdout.Bytes(), nil
}
