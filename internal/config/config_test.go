package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quill-lang/quillc/internal/config"
)

func TestHasSourceExt(t *testing.T) {
	if !config.HasSourceExt("foo.ql") {
		t.Fatalf("expected foo.ql to be recognized")
	}
	if !config.HasSourceExt("foo.quill") {
		t.Fatalf("expected foo.quill to be recognized")
	}
	if config.HasSourceExt("foo.txt") {
		t.Fatalf("did not expect foo.txt to be recognized")
	}
}

func TestTrimSourceExt(t *testing.T) {
	if got := config.TrimSourceExt("foo.ql"); got != "foo" {
		t.Fatalf("got %q, want foo", got)
	}
	if got := config.TrimSourceExt("foo.txt"); got != "foo.txt" {
		t.Fatalf("unrecognized extension should pass through unchanged, got %q", got)
	}
}

func TestDefaultProject(t *testing.T) {
	p := config.DefaultProject()
	if p.Root != "." {
		t.Fatalf("got Root=%q, want \".\"", p.Root)
	}
	if p.MaxAttempts != config.DefaultMaxAttempts {
		t.Fatalf("got MaxAttempts=%d, want %d", p.MaxAttempts, config.DefaultMaxAttempts)
	}
}

func TestLoadProjectAppliesDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.yaml")
	if err := os.WriteFile(path, []byte("root: src\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p, err := config.LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Root != "src" {
		t.Fatalf("got Root=%q, want src", p.Root)
	}
	if p.MaxAttempts != config.DefaultMaxAttempts {
		t.Fatalf("got MaxAttempts=%d, want default %d", p.MaxAttempts, config.DefaultMaxAttempts)
	}
}

func TestLoadProjectMissingFile(t *testing.T) {
	if _, err := config.LoadProject(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error reading a nonexistent manifest")
	}
}
