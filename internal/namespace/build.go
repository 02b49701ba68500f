package namespace

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/quill-lang/quillc/internal/config"
	"github.com/quill-lang/quillc/internal/diagnostics"
)

// DirEntry is the minimal directory-listing shape this package needs —
// kept narrow so tests can fake a tree without touching the real
// filesystem, the way funvibe-funxy/internal/modules/loader.go reads
// directories directly but through a thin os.ReadDir call this package
// makes swappable via FS.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FS abstracts directory scanning so NamespaceTree construction is
// testable without a real filesystem.
type FS interface {
	ReadDir(path string) ([]DirEntry, error)
}

// OSFS is the production FS backed by the real filesystem.
type OSFS struct{}

func (OSFS) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]DirEntry, len(entries))
	for i, e := range entries {
		out[i] = DirEntry{Name: e.Name(), IsDir: e.IsDir()}
	}
	return out, nil
}

// Build walks rootDir's subdirectories, turning each directory into a
// namespace node and each recognized source file into a Unit attached to
// its directory's namespace (spec.md §4.3). The root directory itself maps
// to the tree's root namespace; spec.md's pre-registered "main" namespace
// is left alone unless rootDir itself contains a "main" subdirectory, in
// which case RegisterPath's idempotence means it's simply reused.
func Build(fs FS, rootDir string) (*Tree, error) {
	t := New()
	visited := map[string]bool{}
	if err := walkDir(fs, t, rootDir, "", visited); err != nil {
		return nil, err
	}
	return t, nil
}

// walkDir recurses depth-first, tracking the canonical (symlink-resolved)
// path of every directory on the current root-to-here chain in visited. A
// directory that resolves back onto an ancestor — a symlink cycle — would
// otherwise recurse without bound; it is reported as CircularReferenceNS
// instead (spec.md §7's NamespaceError.CircularReference).
func walkDir(fs FS, t *Tree, dir, dottedPath string, visited map[string]bool) error {
	real := dir
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		real = resolved
	}
	if visited[real] {
		return diagnostics.CircularReferenceNS(dir)
	}
	visited[real] = true
	defer delete(visited, real)

	entries, err := fs.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	node, err := t.RegisterPath(dottedPath)
	if err != nil {
		return err
	}

	for _, e := range entries {
		childPath := filepath.Join(dir, e.Name)
		if e.IsDir {
			childDotted := e.Name
			if dottedPath != "" {
				childDotted = dottedPath + "." + e.Name
			}
			if err := walkDir(fs, t, childPath, childDotted, visited); err != nil {
				return err
			}
			continue
		}
		if !config.HasSourceExt(e.Name) {
			continue
		}
		node.Units = append(node.Units, &Unit{Path: childPath, State: StateInit})
	}
	return nil
}
