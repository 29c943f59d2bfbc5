package reporter

import (
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nixspect/nixspect/internal/render"
	"github.com/nixspect/nixspect/internal/source"
)

// TextOptions configures the text reporter.
type TextOptions struct {
	// Color enables/disables colored output. nil means auto-detect.
	Color *bool
}

// TextReporter renders diagnostics as compiler-style terminal reports.
type TextReporter struct {
	writer   io.Writer
	renderer *render.Renderer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, opts TextOptions) *TextReporter {
	return &TextReporter{
		writer:   w,
		renderer: render.New(render.Options{Color: opts.Color}),
	}
}

// Report implements Reporter. A diagnostic whose span cannot be resolved
// against its file is logged and skipped; remaining diagnostics still
// render.
func (r *TextReporter) Report(reports []FileReport, _ ReportMetadata) error {
	// Buffer per file so a skipped diagnostic never leaves a partial report.
	var b strings.Builder
	for _, fr := range reports {
		for _, d := range SortDiagnostics(fr.Diagnostics) {
			if err := r.renderer.Render(&b, fr.File, d, fr.Index); err != nil {
				var oob *source.OutOfBoundsError
				if errors.As(err, &oob) {
					logrus.WithFields(logrus.Fields{
						"file":  fr.File,
						"sname": d.SName,
					}).Warnf("skipping diagnostic: %v", oob)
					continue
				}
				return err
			}
		}
	}

	_, err := io.WriteString(r.writer, b.String())
	return err
}
