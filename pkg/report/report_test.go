package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/pipeline"
	"github.com/quill-lang/quillc/internal/token"
	"github.com/quill-lang/quillc/pkg/report"
)

func TestReporterErrorWithPositionNoColors(t *testing.T) {
	var buf bytes.Buffer
	r := report.NewReporter(&buf)
	tok := token.Token{Position: token.Position{Line: 3, Column: 7}}
	r.Error(diagnostics.UnresolvedSymbol(tok, "foo"))
	got := buf.String()
	if !strings.HasPrefix(got, "3:7: [R001]") {
		t.Fatalf("got %q, want it to start with \"3:7: [R001]\"", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("a bytes.Buffer isn't a terminal, expected no color escapes, got %q", got)
	}
}

func TestReporterErrorWithInvalidPosition(t *testing.T) {
	var buf bytes.Buffer
	r := report.NewReporter(&buf)
	r.Error(diagnostics.Internal("boom"))
	got := buf.String()
	if !strings.HasPrefix(got, "[I001]") {
		t.Fatalf("an internal error has no position, got %q", got)
	}
}

func TestReporterSummaryOkStatus(t *testing.T) {
	var buf bytes.Buffer
	r := report.NewReporter(&buf)
	r.Summary(pipeline.Summary{
		RunID:          "run-1",
		UnitCount:      3,
		NamespaceCount: 2,
		FullyResolved:  true,
	})
	got := buf.String()
	if !strings.Contains(got, "ok: run run-1") {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(got, "3 units across 2 namespaces") {
		t.Fatalf("expected humanized unit/namespace counts, got %q", got)
	}
}

func TestReporterSummaryFailedStatusListsErrorsFirst(t *testing.T) {
	var buf bytes.Buffer
	r := report.NewReporter(&buf)
	tok := token.Token{Position: token.Position{Line: 1, Column: 1}}
	r.Summary(pipeline.Summary{
		RunID:         "run-2",
		FullyResolved: false,
		Errors:        []*diagnostics.Error{diagnostics.UnresolvedSymbol(tok, "x")},
	})
	got := buf.String()
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one error line then one summary line, got %q", got)
	}
	if !strings.Contains(lines[1], "failed: run run-2") {
		t.Fatalf("got summary line %q", lines[1])
	}
}
