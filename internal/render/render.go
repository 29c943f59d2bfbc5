// Package render turns diagnostics into aligned, compiler-style terminal
// reports: a severity header, a location header, source-line excerpts with a
// line-number gutter, and underline rows carrying label messages.
//
// Marker positions are computed in display columns, not byte offsets, so
// multi-byte characters stay aligned. Tabs expand to 4-column stops in both
// the excerpt and the underline row. Overlapping spans on one line are
// rendered as sequential underline rows rather than merged.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/nixspect/nixspect/internal/diag"
	"github.com/nixspect/nixspect/internal/source"
)

// Default layout constants.
const (
	defaultTabWidth = 4

	// defaultMaxWidth is the budget for placing a label message inline
	// after its markers; longer messages move to a connector row.
	defaultMaxWidth = 100
)

// Options configures a Renderer.
type Options struct {
	// Color enables/disables colored output. nil means auto-detect.
	Color *bool

	// MaxWidth is the inline label budget in display columns.
	// Zero means the default.
	MaxWidth int

	// TabWidth is the tab stop width. Zero means the default.
	TabWidth int
}

// Renderer renders diagnostics against one immutable source index at a
// time. It holds no per-file state and may be reused across files.
type Renderer struct {
	color    bool
	maxWidth int
	tabWidth int
}

// New creates a Renderer with the given options.
func New(opts Options) *Renderer {
	color := useColors
	if opts.Color != nil {
		color = *opts.Color
	}
	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}
	tabWidth := opts.TabWidth
	if tabWidth <= 0 {
		tabWidth = defaultTabWidth
	}
	return &Renderer{color: color, maxWidth: maxWidth, tabWidth: tabWidth}
}

// annotation is one span to underline with its message and marker kind.
type annotation struct {
	span      diag.Span
	message   string
	primary   bool
	startLine int
	endLine   int
}

// Render writes one diagnostic's full report to w. A span that cannot be
// resolved against the index returns a wrapped source.OutOfBoundsError and
// writes nothing; the caller decides how to surface the skip.
func (r *Renderer) Render(w io.Writer, file string, d diag.Diagnostic, ix *source.Index) error {
	anns, err := r.resolve(d, ix)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", d.SName, err)
	}

	lines := touchedLines(anns)
	gutterWidth := len(fmt.Sprint(lines[len(lines)-1]))

	var b strings.Builder
	r.writeHeader(&b, d)
	if err := r.writeLocation(&b, file, d, ix, gutterWidth); err != nil {
		return fmt.Errorf("rendering %s: %w", d.SName, err)
	}

	b.WriteString(r.bareGutter(gutterWidth))
	b.WriteByte('\n')

	prev := 0
	for _, line := range lines {
		if prev != 0 && line > prev+1 {
			// Elide the gap between non-adjacent touched lines.
			b.WriteString(r.elisionRow(gutterWidth))
			b.WriteByte('\n')
		}
		prev = line

		text, err := ix.LineText(line)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", d.SName, err)
		}

		b.WriteString(r.gutter(gutterWidth, line))
		b.WriteString(expandTabs(text, r.tabWidth))
		b.WriteByte('\n')

		r.writeUnderlines(&b, d.Severity, anns, line, text, ix, gutterWidth)
	}
	b.WriteByte('\n')

	_, err = io.WriteString(w, b.String())
	return err
}

// resolve validates every span against the index and computes the touched
// line range per annotation. The primary span comes first.
func (r *Renderer) resolve(d diag.Diagnostic, ix *source.Index) ([]annotation, error) {
	anns := make([]annotation, 0, len(d.Labels)+1)
	anns = append(anns, annotation{span: d.Span, message: d.Message, primary: true})
	for _, l := range d.Labels {
		anns = append(anns, annotation{
			span:    l.Span,
			message: l.Message,
			primary: l.Role == diag.RolePrimary,
		})
	}

	for i := range anns {
		a := &anns[i]
		// Slice validates both bounds, including rune-boundary checks.
		if _, err := ix.Slice(a.span.Start, a.span.End); err != nil {
			return nil, err
		}

		startLine, err := ix.LineOf(a.span.Start)
		if err != nil {
			return nil, err
		}
		a.startLine = startLine
		a.endLine = startLine

		if !a.span.IsZeroWidth() {
			// The last touched line holds the span's final byte, not the
			// position one past it (which may be the next line's start).
			last := a.span.End - 1
			buf := ix.Source()
			for last > a.span.Start && !utf8.RuneStart(buf[last]) {
				last--
			}
			endLine, err := ix.LineOf(last)
			if err != nil {
				return nil, err
			}
			a.endLine = endLine
		}
	}
	return anns, nil
}

// touchedLines returns the sorted distinct lines covered by any annotation,
// including every intermediate line of multi-line spans.
func touchedLines(anns []annotation) []int {
	set := make(map[int]struct{})
	for _, a := range anns {
		for line := a.startLine; line <= a.endLine; line++ {
			set[line] = struct{}{}
		}
	}
	lines := make([]int, 0, len(set))
	for line := range set {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

func (r *Renderer) writeHeader(b *strings.Builder, d diag.Diagnostic) {
	head := fmt.Sprintf("%s[%s]:", d.Severity.Title(), d.SName)
	if r.color {
		head = severityStyle(d.Severity).Render(head)
	}
	b.WriteString(head)
	b.WriteByte(' ')
	b.WriteString(d.Message)
	b.WriteByte('\n')
}

func (r *Renderer) writeLocation(b *strings.Builder, file string, d diag.Diagnostic, ix *source.Index, gutterWidth int) error {
	pos, err := ix.PositionOf(d.Span.Start)
	if err != nil {
		return err
	}
	arrow := fmt.Sprintf("%*s--> ", gutterWidth, "")
	loc := fmt.Sprintf("%s:%d:%d", file, pos.Line, pos.Column)
	if r.color {
		arrow = gutterStyle.Render(arrow)
		loc = fileLocStyle.Render(loc)
	}
	b.WriteString(arrow)
	b.WriteString(loc)
	b.WriteByte('\n')
	return nil
}

// gutter renders the left margin: a right-aligned line number (or blanks
// when line is 0) and the vertical-bar separator.
func (r *Renderer) gutter(width, line int) string {
	var g string
	if line > 0 {
		g = fmt.Sprintf("%*d | ", width, line)
	} else {
		g = fmt.Sprintf("%*s | ", width, "")
	}
	if r.color {
		return gutterStyle.Render(g)
	}
	return g
}

// bareGutter is the separator row between the location header and the
// first source excerpt: blanks and the vertical bar, no trailing space.
func (r *Renderer) bareGutter(width int) string {
	g := fmt.Sprintf("%*s |", width, "")
	if r.color {
		return gutterStyle.Render(g)
	}
	return g
}

func (r *Renderer) elisionRow(width int) string {
	row := fmt.Sprintf("%*s ·", width, "")
	if r.color {
		return elisionStyle.Render(row)
	}
	return row
}

// writeUnderlines emits one underline row per annotation covering line,
// ordered by start column. Each row carries its own message: inline when it
// fits the width budget, otherwise on a connector row below.
func (r *Renderer) writeUnderlines(b *strings.Builder, sev diag.Severity, anns []annotation, line int, text string, ix *source.Index, gutterWidth int) {
	type row struct {
		dispStart int
		markerLen int
		primary   bool
		message   string
	}

	lineStart, err := ix.LineStart(line)
	if err != nil {
		return
	}

	var rows []row
	for _, a := range anns {
		if line < a.startLine || line > a.endLine {
			continue
		}

		startByte := 0
		endByte := len(text)
		if line == a.startLine {
			startByte = clamp(a.span.Start-lineStart, 0, len(text))
		}
		if line == a.endLine {
			endByte = clamp(a.span.End-lineStart, startByte, len(text))
		}

		dispStart := displayWidth(text, startByte, r.tabWidth)
		dispEnd := displayWidth(text, endByte, r.tabWidth)
		markerLen := dispEnd - dispStart
		if markerLen < 1 {
			// Zero-width spans still render one marker column.
			markerLen = 1
		}

		msg := ""
		if line == a.endLine {
			msg = a.message
		}
		rows = append(rows, row{
			dispStart: dispStart,
			markerLen: markerLen,
			primary:   a.primary,
			message:   msg,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].dispStart < rows[j].dispStart
	})

	for _, rw := range rows {
		markerChar := "-"
		if rw.primary {
			markerChar = "^"
		}
		markers := strings.Repeat(markerChar, rw.markerLen)
		pad := strings.Repeat(" ", rw.dispStart)

		inline := rw.message != "" &&
			gutterWidth+3+rw.dispStart+rw.markerLen+1+runewidth.StringWidth(rw.message) <= r.maxWidth

		b.WriteString(r.gutter(gutterWidth, 0))
		b.WriteString(pad)
		b.WriteString(r.styleMarker(markers, sev, rw.primary))
		if inline {
			b.WriteByte(' ')
			b.WriteString(r.styleMessage(rw.message, rw.primary))
		}
		b.WriteByte('\n')

		if rw.message != "" && !inline {
			b.WriteString(r.gutter(gutterWidth, 0))
			b.WriteString(pad)
			b.WriteString(r.styleMarker("└ ", sev, rw.primary))
			b.WriteString(r.styleMessage(rw.message, rw.primary))
			b.WriteByte('\n')
		}
	}
}

// styleMarker colors primary markers with the diagnostic's severity and
// secondary markers with the label style.
func (r *Renderer) styleMarker(s string, sev diag.Severity, primary bool) string {
	if !r.color {
		return s
	}
	if primary {
		return severityStyle(sev).Render(s)
	}
	return labelStyle.Render(s)
}

func (r *Renderer) styleMessage(s string, primary bool) string {
	if !r.color {
		return s
	}
	if primary {
		return s
	}
	return labelStyle.Render(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
