// Package config holds small constants shared across the resolver core,
// grounded on funvibe-funxy/internal/config/constants.go.
package config

// Version is the current Quill resolver-core version.
var Version = "0.1.0"

// SourceFileExt is the canonical recognized source extension.
const SourceFileExt = ".ql"

// SourceFileExtensions are every recognized source file extension.
var SourceFileExtensions = []string{".ql", ".quill"}

// TrimSourceExt removes any recognized source extension from name. Returns
// name unchanged if none match.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt reports whether path ends with a recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// DefaultMaxAttempts is the default Project.MaxAttempts. The value is passed
// through to Resolver.ResolvePrepared, which does not enforce it; forward
// references and cycles are handled by on-demand forcing of top-level Lets.
const DefaultMaxAttempts = 8

// IsTestMode mirrors the teacher's config.IsTestMode switch. When true,
// pkg/report never colorizes its output; nothing in this repository sets it.
var IsTestMode = false

// Built-in type names recognized by the §6 type syntax beyond the
// primitives (spec.md §3, §6).
const (
	ArrayTypeName = "Array"
	TupleTypeName = "Tuple"
	FnTypeName    = "Fn"
)
