package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Display-column arithmetic. A multi-byte character occupies the terminal
// cells go-runewidth reports for it; tabs advance to the next tab stop.
// Zero-width combining characters therefore count as zero columns, which is
// an acknowledged approximation for exotic grapheme clusters.

// displayWidth returns the number of display columns the first n bytes of
// line occupy, expanding tabs against tabWidth stops.
func displayWidth(line string, n int, tabWidth int) int {
	if n > len(line) {
		n = len(line)
	}
	col := 0
	for _, r := range line[:n] {
		if r == '\t' {
			col += tabWidth - col%tabWidth
			continue
		}
		col += runewidth.RuneWidth(r)
	}
	return col
}

// expandTabs renders line with every tab replaced by spaces up to the next
// tab stop, keeping source rows and underline rows aligned.
func expandTabs(line string, tabWidth int) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			pad := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}
