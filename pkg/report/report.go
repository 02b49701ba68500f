// Package report renders diagnostics.Error values and pipeline.Summary
// results to a terminal, color-coding by taxonomy Kind when stdout is a
// real TTY (grounded on funvibe-funxy/internal/evaluator/builtins_term.go's
// go-isatty + NO_COLOR gating).
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/quill-lang/quillc/internal/config"
	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/pipeline"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
	colorGray   = "\x1b[90m"
)

// Reporter writes diagnostics to an io.Writer, optionally colorized.
type Reporter struct {
	w      io.Writer
	colors bool
}

// NewReporter builds a Reporter over w, auto-detecting whether w is a color
// capable terminal (honoring NO_COLOR, same as the teacher's term helpers).
// config.IsTestMode always forces colors off, mirroring the teacher's own
// IsTestMode-gated determinism switches in internal/typesystem.
func NewReporter(w io.Writer) *Reporter {
	colors := false
	if !config.IsTestMode {
		if f, ok := w.(*os.File); ok {
			if _, noColor := os.LookupEnv("NO_COLOR"); !noColor {
				colors = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
			}
		}
	}
	return &Reporter{w: w, colors: colors}
}

func (r *Reporter) colorFor(kind diagnostics.Kind) string {
	if !r.colors {
		return ""
	}
	switch kind {
	case diagnostics.KindParse:
		return colorYellow
	case diagnostics.KindResolution:
		return colorRed
	case diagnostics.KindNamespace:
		return colorCyan
	default:
		return colorGray
	}
}

// Error renders one diagnostic as "line:col: [CODE] message", color-coded
// by its taxonomy Kind.
func (r *Reporter) Error(e *diagnostics.Error) {
	c := r.colorFor(e.Code.Kind())
	reset := ""
	if c != "" {
		reset = colorReset
	}
	if e.Position.Invalid() {
		fmt.Fprintf(r.w, "%s[%s]%s %s\n", c, e.Code, reset, e.Message)
		return
	}
	fmt.Fprintf(r.w, "%s%d:%d: [%s]%s %s\n", c, e.Position.Line, e.Position.Column, e.Code, reset, e.Message)
}

// Summary renders a pipeline.Summary: every error, then a one-line count.
func (r *Reporter) Summary(s pipeline.Summary) {
	for _, e := range s.Errors {
		r.Error(e)
	}
	status := "ok"
	c := ""
	reset := ""
	if !s.FullyResolved {
		status = "failed"
		c = r.colorFor(diagnostics.KindResolution)
		reset = colorReset
		if c == "" {
			reset = ""
		}
	}
	fmt.Fprintf(r.w, "%s%s%s: run %s, %s units across %s namespaces, %s\n",
		c, status, reset, s.RunID,
		humanize.Comma(int64(s.UnitCount)),
		humanize.Comma(int64(s.NamespaceCount)),
		humanize.Comma(int64(len(s.Errors)))+" errors")
}
