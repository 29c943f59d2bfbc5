// Package runner orchestrates the per-file pipeline: read, analyze, decode,
// filter, then either report or apply fixes. Files are processed
// concurrently with a bounded worker pool; results keep the input order.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nixspect/nixspect/internal/analyzer"
	"github.com/nixspect/nixspect/internal/diag"
	"github.com/nixspect/nixspect/internal/fix"
	"github.com/nixspect/nixspect/internal/reporter"
	"github.com/nixspect/nixspect/internal/source"
)

// Options configures a run.
type Options struct {
	// Analyzer produces raw diagnostics for each file.
	Analyzer *analyzer.Analyzer

	// Ignore suppresses diagnostics by short name.
	Ignore diag.IgnoreSet

	// Fix applies suggested fixes in place instead of only reporting them.
	Fix bool

	// Jobs bounds concurrent file processing. Zero means GOMAXPROCS.
	Jobs int
}

// FileFailure records a file that could not be processed.
type FileFailure struct {
	File string
	Err  error
}

// Result aggregates the outcome of one run across all files.
type Result struct {
	// Reports holds one entry per successfully processed file, in input
	// order. Files that failed are absent.
	Reports []reporter.FileReport

	// FilesFixed counts files rewritten in fix mode.
	FilesFixed int

	// EditsApplied counts individual edits applied across all files.
	EditsApplied int

	// Failures lists files that could not be processed, in input order.
	Failures []FileFailure
}

// HasDiagnostics reports whether any file produced at least one diagnostic.
func (r *Result) HasDiagnostics() bool {
	for _, fr := range r.Reports {
		if len(fr.Diagnostics) > 0 {
			return true
		}
	}
	return false
}

// MaxSeverity returns the most severe remaining diagnostic and whether any
// diagnostic exists at all.
func (r *Result) MaxSeverity() (diag.Severity, bool) {
	most := diag.SeverityNote
	found := false
	for _, fr := range r.Reports {
		for _, d := range fr.Diagnostics {
			if !found || d.Severity < most {
				most = d.Severity
			}
			found = true
		}
	}
	return most, found
}

// fileOutcome is the per-file slot filled by a worker.
type fileOutcome struct {
	report       *reporter.FileReport
	editsApplied int
	fixed        bool
	err          error
}

// Run processes all files and aggregates the outcomes. Per-file failures
// are collected, not fatal; the returned error is reserved for context
// cancellation.
func Run(ctx context.Context, files []string, opts Options) (*Result, error) {
	if opts.Analyzer == nil {
		return nil, errors.New("runner: analyzer is required")
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]fileOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(files), 1)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			outcomes[i] = processFile(gctx, path, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i, out := range outcomes {
		if out.err != nil {
			result.Failures = append(result.Failures, FileFailure{File: files[i], Err: out.err})
			continue
		}
		result.Reports = append(result.Reports, *out.report)
		result.EditsApplied += out.editsApplied
		if out.fixed {
			result.FilesFixed++
		}
	}
	return result, nil
}

// processFile runs the full pipeline for one file.
func processFile(ctx context.Context, path string, opts Options) fileOutcome {
	src, err := os.ReadFile(path) //nolint:gosec // Path is explicit user input.
	if err != nil {
		return fileOutcome{err: fmt.Errorf("reading %s: %w", path, err)}
	}

	payload, err := opts.Analyzer.Analyze(ctx, src)
	if err != nil {
		return fileOutcome{err: err}
	}

	diags, err := diag.Decode(path, payload)
	if err != nil {
		return fileOutcome{err: err}
	}
	diags = diag.Filter(diags, opts.Ignore)

	if opts.Fix {
		return applyFixes(path, src, diags)
	}

	return fileOutcome{report: &reporter.FileReport{
		File:        path,
		Index:       source.NewIndex(src),
		Diagnostics: diags,
	}}
}

// applyFixes rewrites path with all suggested fixes applied. Fixed
// diagnostics are dropped from the report; diagnostics without fixes
// remain. Conflicting or out-of-range edits leave the file untouched.
func applyFixes(path string, src []byte, diags []diag.Diagnostic) fileOutcome {
	change, err := fix.ApplyToFile(path, src, diags)
	if err != nil {
		// Conflicting or invalid edits: the file stays untouched and the
		// failure is reported alongside other files' results.
		return fileOutcome{err: fmt.Errorf("fixing %s: %w", path, err)}
	}

	out := fileOutcome{editsApplied: change.EditsApplied}

	if change.HasChanges() {
		if err := writeBack(path, change.ModifiedContent); err != nil {
			return fileOutcome{err: err}
		}
		out.fixed = true
		logrus.WithFields(logrus.Fields{
			"file":  path,
			"edits": change.EditsApplied,
		}).Debug("applied fixes")
	}

	// Offsets of unfixed diagnostics refer to the original buffer, so the
	// report keeps indexing the pre-fix content.
	remaining := make([]diag.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if !d.HasFix() {
			remaining = append(remaining, d)
		}
	}

	out.report = &reporter.FileReport{
		File:        path,
		Index:       source.NewIndex(src),
		Diagnostics: remaining,
	}
	return out
}

// writeBack replaces the file's content, preserving its permission bits.
func writeBack(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
