package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/nixspect/nixspect/internal/diag"
)

// Styles for the different parts of a report.
var (
	// Color detection using termenv (respects NO_COLOR, CLICOLOR_FORCE,
	// terminal detection).
	useColors = termenv.EnvColorProfile() != termenv.Ascii

	// Severity styles for headers and primary markers.
	severityStyles = map[diag.Severity]lipgloss.Style{
		diag.SeverityError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		diag.SeverityWarning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")), // Orange
		diag.SeverityNote: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")), // Blue
	}

	// File location style
	fileLocStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")) // Light gray

	// Line number gutter style
	gutterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray

	// Secondary label marker and message style
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // Blue

	// Elision marker style
	elisionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")) // Darker gray
)

func severityStyle(s diag.Severity) lipgloss.Style {
	if st, ok := severityStyles[s]; ok {
		return st
	}
	return severityStyles[diag.SeverityWarning]
}
