package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixspect/nixspect/internal/diag"
	"github.com/nixspect/nixspect/internal/source"
	"github.com/nixspect/nixspect/internal/testutil"
)

func plainRenderer() *Renderer {
	noColor := false
	return New(Options{Color: &noColor})
}

func renderOne(t *testing.T, buf string, d diag.Diagnostic) string {
	t.Helper()
	var b strings.Builder
	err := plainRenderer().Render(&b, "default.nix", d, source.NewIndex([]byte(buf)))
	require.NoError(t, err)
	return b.String()
}

func TestRender_DuplicatedAttrScenario(t *testing.T) {
	buf := "{ a = 1; a = 1; }"
	d := diag.Diagnostic{
		SName:    "sema-duplicated-attrname",
		Severity: diag.SeverityWarning,
		Message:  "duplicated attrname `a`",
		Span:     diag.Span{Start: 13, End: 14},
		Labels: []diag.Label{
			{
				Span:    diag.Span{Start: 4, End: 5},
				Message: "previously declared here",
				Role:    diag.RoleSecondary,
			},
		},
	}

	got := renderOne(t, buf, d)

	want := strings.Join([]string{
		"Warning[sema-duplicated-attrname]: duplicated attrname `a`",
		" --> default.nix:1:14",
		"  |",
		"1 | { a = 1; a = 1; }",
		"  |     - previously declared here",
		"  |              ^ duplicated attrname `a`",
		"",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRender_ZeroWidthSpan(t *testing.T) {
	d := diag.Diagnostic{
		SName:    "parse-missing-semi",
		Severity: diag.SeverityError,
		Message:  "expected ;",
		Span:     diag.Span{Start: 3, End: 3},
	}

	got := renderOne(t, "abc", d)
	assert.Contains(t, got, "Error[parse-missing-semi]: expected ;")
	// Zero-width spans still render exactly one marker.
	assert.Contains(t, got, "  |    ^ expected ;\n")
}

func TestRender_ElidesDistantLines(t *testing.T) {
	buf := "first = 1;\nmid1 = 1;\nmid2 = 1;\nmid3 = 1;\nfirst = 2;"
	// "first" on line 1 is [0,5); "first" on line 5 starts at offset 41.
	d := diag.Diagnostic{
		SName:    "sema-duplicated-attrname",
		Severity: diag.SeverityWarning,
		Message:  "duplicated attrname `first`",
		Span:     diag.Span{Start: 41, End: 46},
		Labels: []diag.Label{
			{Span: diag.Span{Start: 0, End: 5}, Message: "previously declared here"},
		},
	}

	got := renderOne(t, buf, d)

	assert.Contains(t, got, "1 | first = 1;")
	assert.Contains(t, got, "5 | first = 2;")
	assert.Contains(t, got, "  ·\n")
	// The elided middle lines never appear.
	assert.NotContains(t, got, "mid1")
	assert.NotContains(t, got, "mid2")
	assert.NotContains(t, got, "mid3")
}

func TestRender_MultiLineSpan(t *testing.T) {
	buf := "let\n  x = 1;\nin x"
	// Span covers line 2 entirely and "in x" on line 3.
	d := diag.Diagnostic{
		SName:    "sema-unused-def",
		Severity: diag.SeverityWarning,
		Message:  "definition is never used",
		Span:     diag.Span{Start: 4, End: 17},
	}

	got := renderOne(t, buf, d)

	assert.Contains(t, got, "2 |   x = 1;")
	assert.Contains(t, got, "3 | in x")
	// First line of the span: markers span its full width.
	assert.Contains(t, got, "  | ^^^^^^^^\n")
	// Last line: partial column range carries the message.
	assert.Contains(t, got, "  | ^^^^ definition is never used\n")
}

func TestRender_TabExpansion(t *testing.T) {
	buf := "\tx = 1;"
	d := diag.Diagnostic{
		SName:    "sema-unused-def",
		Severity: diag.SeverityWarning,
		Message:  "unused",
		Span:     diag.Span{Start: 1, End: 2}, // the x after the tab
	}

	got := renderOne(t, buf, d)

	// Tab expands to 4 columns in the excerpt and the underline alike.
	assert.Contains(t, got, "1 |     x = 1;")
	assert.Contains(t, got, "  |     ^ unused")
}

func TestRender_MultiByteAlignment(t *testing.T) {
	buf := "é = 日;"
	// The span covers 日 (bytes 5..8); é is 2 bytes but 1 display column.
	d := diag.Diagnostic{
		SName:    "sema-undefined-variable",
		Severity: diag.SeverityError,
		Message:  "undefined variable",
		Span:     diag.Span{Start: 5, End: 8},
	}

	got := renderOne(t, buf, d)

	// é(1) + space(1) + =(1) + space(1) = 4 display columns of padding,
	// then two marker columns for the double-width character.
	assert.Contains(t, got, "  |     ^^ undefined variable")
}

func TestRender_LongLabelMovesToConnectorRow(t *testing.T) {
	noColor := false
	r := New(Options{Color: &noColor, MaxWidth: 20})

	var b strings.Builder
	err := r.Render(&b, "default.nix", diag.Diagnostic{
		SName:    "sema-duplicated-attrname",
		Severity: diag.SeverityWarning,
		Message:  "a rather long message that cannot sit inline",
		Span:     diag.Span{Start: 0, End: 3},
	}, source.NewIndex([]byte("abc")))
	require.NoError(t, err)

	got := b.String()
	assert.Contains(t, got, "  | ^^^\n")
	assert.Contains(t, got, "  | └ a rather long message that cannot sit inline\n")
}

func TestRender_MultiByteLabelBudgetUsesDisplayWidth(t *testing.T) {
	noColor := false
	// "déjà déclaré là" is 15 display columns but 20 bytes; with the
	// markers and gutter the row needs 23 columns, so it must stay inline.
	r := New(Options{Color: &noColor, MaxWidth: 24})

	var b strings.Builder
	err := r.Render(&b, "default.nix", diag.Diagnostic{
		SName:    "sema-duplicated-attrname",
		Severity: diag.SeverityWarning,
		Message:  "déjà déclaré là",
		Span:     diag.Span{Start: 0, End: 3},
	}, source.NewIndex([]byte("abc")))
	require.NoError(t, err)

	got := b.String()
	assert.Contains(t, got, "  | ^^^ déjà déclaré là\n")
	assert.NotContains(t, got, "└ ")
}

func TestRender_OutOfBoundsSpan(t *testing.T) {
	var b strings.Builder
	err := plainRenderer().Render(&b, "default.nix", diag.Diagnostic{
		SName:    "sema-broken",
		Severity: diag.SeverityError,
		Message:  "broken",
		Span:     diag.Span{Start: 0, End: 99},
	}, source.NewIndex([]byte("short")))

	var oob *source.OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Empty(t, b.String(), "nothing must be written for a skipped diagnostic")
}

func TestRender_UnsetLabelRoleRendersSecondary(t *testing.T) {
	got := renderOne(t, "{ a = 1; a = 1; }", diag.Diagnostic{
		SName:    "sema-duplicated-attrname",
		Severity: diag.SeverityWarning,
		Message:  "duplicated attrname `a`",
		Span:     diag.Span{Start: 13, End: 14},
		Labels: []diag.Label{
			// Role left unset: must underline with dashes, not carets.
			{Span: diag.Span{Start: 4, End: 5}, Message: "previously declared here"},
		},
	})
	assert.Contains(t, got, "- previously declared here")
	assert.NotContains(t, got, "^ previously declared here")
}

func TestRender_Snapshot(t *testing.T) {
	got := renderOne(t, "{ a = 1; a = 1; }", diag.Diagnostic{
		SName:    "sema-duplicated-attrname",
		Severity: diag.SeverityWarning,
		Message:  "duplicated attrname `a`",
		Span:     diag.Span{Start: 13, End: 14},
		Labels: []diag.Label{
			{Span: diag.Span{Start: 4, End: 5}, Message: "previously declared here"},
		},
	})
	testutil.MatchReportSnapshot(t, got)
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		line string
		n    int
		want int
	}{
		{"abc", 2, 2},
		{"é = x", 2, 1},     // é is 2 bytes, 1 column
		{"日本", 3, 2},        // 日 is 3 bytes, 2 columns
		{"\tx", 1, 4},       // tab to first stop
		{"ab\tx", 3, 4},     // tab from column 2 to stop 4
		{"abcd\tx", 5, 8},   // tab from column 4 to stop 8
		{"abc", 99, 3},      // n clamped to line length
	}

	for _, tt := range tests {
		if got := displayWidth(tt.line, tt.n, 4); got != tt.want {
			t.Errorf("displayWidth(%q, %d) = %d, want %d", tt.line, tt.n, got, tt.want)
		}
	}
}

func TestExpandTabs(t *testing.T) {
	if got := expandTabs("\tx", 4); got != "    x" {
		t.Errorf("expandTabs = %q", got)
	}
	if got := expandTabs("ab\tx", 4); got != "ab  x" {
		t.Errorf("expandTabs = %q", got)
	}
	if got := expandTabs("plain", 4); got != "plain" {
		t.Errorf("expandTabs = %q", got)
	}
}

func TestRender_ErrorWrapsOutOfBounds(t *testing.T) {
	var b strings.Builder
	err := plainRenderer().Render(&b, "f.nix", diag.Diagnostic{
		SName: "x", Span: diag.Span{Start: 2, End: 1},
	}, source.NewIndex([]byte("abc")))
	if err == nil {
		t.Fatal("expected error for inverted span")
	}
	if !errors.As(err, new(*source.OutOfBoundsError)) {
		t.Fatalf("error = %v, want OutOfBoundsError", err)
	}
}
