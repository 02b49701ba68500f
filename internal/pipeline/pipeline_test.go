package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quill-lang/quillc/internal/config"
	"github.com/quill-lang/quillc/internal/namespace"
	"github.com/quill-lang/quillc/internal/pipeline"
)

func writeUnit(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadProcessorLoadsTextAndAdvancesState(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "a.ql", "let x = 1")
	u := &namespace.Unit{Path: path, State: namespace.StateInit}
	ctx := pipeline.New(pipeline.ReadProcessor{}).Run(&pipeline.PipelineContext{Unit: u})
	if len(ctx.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	if u.State != namespace.StateRead {
		t.Fatalf("got state %v, want READ", u.State)
	}
	if u.Text != "let x = 1" {
		t.Fatalf("got text %q", u.Text)
	}
}

func TestReadProcessorMissingFileReportsError(t *testing.T) {
	u := &namespace.Unit{Path: filepath.Join(t.TempDir(), "missing.ql"), State: namespace.StateInit}
	ctx := pipeline.New(pipeline.ReadProcessor{}).Run(&pipeline.PipelineContext{Unit: u})
	if len(ctx.Errors) == 0 {
		t.Fatalf("expected an error reading a nonexistent file")
	}
	if u.State != namespace.StateInit {
		t.Fatalf("a failed read must not advance the unit's state")
	}
}

func TestParseProcessorAdvancesToParsed(t *testing.T) {
	u := &namespace.Unit{Text: "let x = 1", State: namespace.StateRead}
	ctx := pipeline.New(pipeline.ParseProcessor{}).Run(&pipeline.PipelineContext{Unit: u})
	if len(ctx.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	if u.State != namespace.StateParsed {
		t.Fatalf("got state %v, want PARSED", u.State)
	}
	if len(u.RootExpressions) != 1 {
		t.Fatalf("got %d root expressions, want 1", len(u.RootExpressions))
	}
	if u.Arena == nil {
		t.Fatalf("expected a populated arena")
	}
}

func TestParseProcessorSkipsWhenNotYetRead(t *testing.T) {
	u := &namespace.Unit{State: namespace.StateInit}
	ctx := pipeline.New(pipeline.ParseProcessor{}).Run(&pipeline.PipelineContext{Unit: u})
	if len(ctx.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	if u.State != namespace.StateInit {
		t.Fatalf("state should be untouched when the precondition isn't met")
	}
}

func TestParseProcessorCollectsParseErrorsButStillAdvances(t *testing.T) {
	u := &namespace.Unit{Text: "let = 1", State: namespace.StateRead}
	ctx := pipeline.New(pipeline.ParseProcessor{}).Run(&pipeline.PipelineContext{Unit: u})
	if len(ctx.Errors) == 0 {
		t.Fatalf("expected a parse error for the malformed let")
	}
	if u.State != namespace.StateParsed {
		t.Fatalf("parse errors should not block the state advance, got %v", u.State)
	}
}

func TestDriverRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeUnit(t, root, "a.ql", "let x = 1")
	sub := filepath.Join(root, "lib")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writeUnit(t, sub, "b.ql", "let y = 2")

	proj := &config.Project{Root: root, MaxAttempts: config.DefaultMaxAttempts}
	d, err := pipeline.NewDriver(proj)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	summary := d.Run()

	if summary.RunID == "" {
		t.Fatalf("expected a non-empty RunID")
	}
	if summary.UnitCount != 2 {
		t.Fatalf("got UnitCount=%d, want 2", summary.UnitCount)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", summary.Errors)
	}
	if !summary.FullyResolved {
		t.Fatalf("expected full resolution across both units")
	}

	for _, node := range []*namespace.Node{d.Tree.Root()} {
		for _, u := range node.Units {
			if u.State != namespace.StateFullyResolved {
				t.Fatalf("unit %s: got state %v, want FULLY_RESOLVED", u.Path, u.State)
			}
		}
	}
	libNode, ok := d.Tree.ResolvePath("lib")
	if !ok {
		t.Fatalf("expected a \"lib\" namespace to exist")
	}
	for _, u := range libNode.Units {
		if u.State != namespace.StateFullyResolved {
			t.Fatalf("unit %s: got state %v, want FULLY_RESOLVED", u.Path, u.State)
		}
	}
}

func TestDriverRunResolvesCrossNamespaceReferenceSequentially(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "lib")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writeUnit(t, sub, "b.ql", "let pub answer = 42")
	writeUnit(t, root, "a.ql", "let x = lib::answer")

	proj := &config.Project{Root: root, MaxAttempts: config.DefaultMaxAttempts}
	d, err := pipeline.NewDriver(proj)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	summary := d.Run()
	if len(summary.Errors) != 0 {
		t.Fatalf("unexpected errors resolving a cross-namespace reference through the driver: %v", summary.Errors)
	}
	if !summary.FullyResolved {
		t.Fatalf("expected full resolution")
	}
}

func TestDriverRunReportsParseErrorsAcrossUnits(t *testing.T) {
	root := t.TempDir()
	writeUnit(t, root, "broken.ql", "let = 1")

	proj := &config.Project{Root: root, MaxAttempts: config.DefaultMaxAttempts}
	d, err := pipeline.NewDriver(proj)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	summary := d.Run()
	if len(summary.Errors) == 0 {
		t.Fatalf("expected the malformed unit's parse error to surface in the summary")
	}
	if summary.FullyResolved {
		t.Fatalf("a run with errors should not report FullyResolved")
	}
}
