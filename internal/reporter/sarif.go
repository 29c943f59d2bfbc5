package reporter

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/nixspect/nixspect/internal/diag"
)

// Default SARIF tool information.
const (
	defaultToolName = "nixspect"
	defaultToolURI  = "https://github.com/nixspect/nixspect"
)

// SARIFReporter formats diagnostics as SARIF (Static Analysis Results
// Interchange Format). SARIF is a standard format for static analysis
// tools, widely supported by CI/CD systems including GitHub Code Scanning.
//
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/
type SARIFReporter struct {
	writer      io.Writer
	toolName    string
	toolVersion string
	toolURI     string
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(w io.Writer, toolName, toolVersion, toolURI string) *SARIFReporter {
	if toolName == "" {
		toolName = defaultToolName
	}
	if toolURI == "" {
		toolURI = defaultToolURI
	}
	return &SARIFReporter{
		writer:      w,
		toolName:    toolName,
		toolVersion: toolVersion,
		toolURI:     toolURI,
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(reports []FileReport, _ ReportMetadata) error {
	// v2.1.0 for maximum compatibility
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI(r.toolName, r.toolURI)
	if r.toolVersion != "" {
		run.Tool.Driver.WithVersion(r.toolVersion)
	}

	// Collect unique short names and files.
	ruleSet := make(map[string]struct{})
	for _, fr := range reports {
		for _, d := range fr.Diagnostics {
			ruleSet[d.SName] = struct{}{}
		}
	}

	ruleCodes := make([]string, 0, len(ruleSet))
	for code := range ruleSet {
		ruleCodes = append(ruleCodes, code)
	}
	sort.Strings(ruleCodes)
	for _, code := range ruleCodes {
		run.AddRule(code)
	}

	for _, fr := range reports {
		if len(fr.Diagnostics) == 0 {
			continue
		}
		// Normalize path for SARIF URIs (cross-platform consistency).
		filePath := filepath.ToSlash(fr.File)
		run.AddDistinctArtifact(filePath)

		for _, d := range SortDiagnostics(fr.Diagnostics) {
			result := sarif.NewRuleResult(d.SName).
				WithMessage(sarif.NewTextMessage(d.Message)).
				WithLevel(severityToSARIFLevel(d.Severity))

			physicalLocation := sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(filePath))

			if fr.Index != nil {
				if start, err := fr.Index.PositionOf(d.Span.Start); err == nil {
					region := sarif.NewRegion().
						WithStartLine(start.Line).
						WithStartColumn(start.Column)
					if end, err := fr.Index.PositionOf(d.Span.End); err == nil {
						region.WithEndLine(end.Line).WithEndColumn(end.Column)
					}
					physicalLocation.WithRegion(region)
				}
			}

			result.WithLocations([]*sarif.Location{
				sarif.NewLocationWithPhysicalLocation(physicalLocation),
			})
			run.AddResult(result)
		}
	}

	report.AddRun(run)

	// Pretty formatting for readability.
	return report.PrettyWrite(r.writer)
}

// SARIF severity levels.
const (
	sarifLevelError   = "error"
	sarifLevelWarning = "warning"
	sarifLevelNote    = "note"
)

// severityToSARIFLevel maps our Severity to SARIF levels.
// SARIF uses: "error", "warning", "note", "none"
func severityToSARIFLevel(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return sarifLevelError
	case diag.SeverityWarning:
		return sarifLevelWarning
	case diag.SeverityNote:
		return sarifLevelNote
	default:
		return sarifLevelWarning
	}
}
