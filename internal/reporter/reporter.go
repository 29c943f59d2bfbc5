// Package reporter provides output formatters for diagnostic results.
//
// The package supports multiple output formats:
//   - text: Human-readable terminal output with source excerpts and colors
//   - json: Machine-readable JSON output with resolved positions
//   - sarif: Static Analysis Results Interchange Format for CI/CD integration
package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/nixspect/nixspect/internal/diag"
	"github.com/nixspect/nixspect/internal/source"
)

// FileReport bundles one file's diagnostics with the index needed to
// resolve their byte offsets.
type FileReport struct {
	// File is the path as given on the command line.
	File string

	// Index is the source index built over the file's content.
	Index *source.Index

	// Diagnostics are the filtered diagnostics for the file.
	Diagnostics []diag.Diagnostic
}

// ReportMetadata contains contextual information about the run.
type ReportMetadata struct {
	// FilesScanned is the total number of files that were analyzed.
	FilesScanned int
}

// Reporter formats and outputs diagnostic results.
type Reporter interface {
	// Report writes all file reports to the configured output.
	Report(reports []FileReport, metadata ReportMetadata) error
}

// SortDiagnostics sorts diagnostics by span start, span end, and short name
// for stable output. The input slice is not modified.
func SortDiagnostics(diags []diag.Diagnostic) []diag.Diagnostic {
	sorted := make([]diag.Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		if sorted[i].Span.End != sorted[j].Span.End {
			return sorted[i].Span.End < sorted[j].Span.End
		}
		return sorted[i].SName < sorted[j].SName
	})
	return sorted
}

// Format represents an output format type.
type Format string

const (
	// FormatText is human-readable terminal output.
	FormatText Format = "text"
	// FormatJSON is machine-readable JSON output.
	FormatJSON Format = "json"
	// FormatSARIF is Static Analysis Results Interchange Format.
	FormatSARIF Format = "sarif"
)

// ParseFormat parses a format string into a Format type.
// Returns an error if the format is unknown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("unknown format: %q (valid: text, json, sarif)", s)
	}
}

// Options configures reporter creation.
type Options struct {
	// Format specifies the output format.
	Format Format

	// Writer is the output destination.
	Writer io.Writer

	// Color enables/disables colored output (text format only).
	// nil means auto-detect.
	Color *bool

	// ToolVersion is included in SARIF output.
	ToolVersion string

	// ToolName is the tool name for SARIF output.
	ToolName string

	// ToolURI is the tool information URI for SARIF output.
	ToolURI string
}

// DefaultOptions returns sensible defaults for reporter options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Writer:      os.Stdout,
		Color:       nil, // auto-detect
		ToolName:    "nixspect",
		ToolURI:     "https://github.com/nixspect/nixspect",
		ToolVersion: "dev",
	}
}

// New creates a reporter based on the format specified in options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch opts.Format {
	case FormatText, "":
		return NewTextReporter(opts.Writer, TextOptions{Color: opts.Color}), nil

	case FormatJSON:
		return NewJSONReporter(opts.Writer), nil

	case FormatSARIF:
		return NewSARIFReporter(opts.Writer, opts.ToolName, opts.ToolVersion, opts.ToolURI), nil

	default:
		return nil, fmt.Errorf("unknown format: %q", opts.Format)
	}
}

// GetWriter returns an io.Writer for the given output path.
// Supports "stdout", "stderr", or file paths.
func GetWriter(path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return f, f.Close, nil
	}
}
