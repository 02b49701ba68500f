package ast

import (
	"github.com/quill-lang/quillc/internal/symbols"
	"github.com/quill-lang/quillc/internal/token"
	"github.com/quill-lang/quillc/internal/typesystem"
)

// MetaData is the small mutable side-channel attached to every AST node:
// source location, resolved type, resolved symbol link, and an optional
// type-conversion annotation (spec.md §3). Nodes are logically immutable
// shape; MetaData is the only mutation point (spec.md §9, "Mutable
// metadata on immutable trees").
type MetaData struct {
	Position   token.Position
	Type       typesystem.TypeRef
	SymbolRef  *symbols.SymbolRef
	Conversion *typesystem.Conversion
}

// SetSymbol links this node's metadata to a declaration. Calling it twice
// with the same ref is a no-op; with a different one is a bug in the
// resolver (the first link should never be replaced).
func (m *MetaData) SetSymbol(ref *symbols.SymbolRef) {
	if m.SymbolRef != nil && m.SymbolRef != ref {
		panic("ast: MetaData.SymbolRef already linked to a different declaration")
	}
	m.SymbolRef = ref
}

// SetConversion records the primitive widening conversion TypeTable found
// between this node's natural type and the context it's used in (e.g. a
// Let's declared type, or a call's parameter type).
func (m *MetaData) SetConversion(c typesystem.Conversion) {
	m.Conversion = &c
}

// Arena is an allocator and registry for MetaData. Nodes hold a *MetaData
// returned by Arena.New; the arena exists so a pass over a whole unit can
// enumerate every node's metadata (e.g. to check "fullyResolved") without
// re-walking the tree (spec.md §9).
type Arena struct {
	all []*MetaData
}

// NewArena creates an empty metadata arena.
func NewArena() *Arena { return &Arena{} }

// New allocates a MetaData for a node at pos and registers it in the arena.
func (a *Arena) New(pos token.Position) *MetaData {
	m := &MetaData{Position: pos}
	a.all = append(a.all, m)
	return m
}

// All returns every MetaData ever allocated from this arena, in allocation
// order.
func (a *Arena) All() []*MetaData {
	return a.all
}

// FullyResolved reports whether every MetaData in the arena has a resolved
// TypeRef — the "fullyResolved" signal referenced by spec.md §4.5.
func (a *Arena) FullyResolved() bool {
	for _, m := range a.all {
		if !m.Type.IsResolved() {
			return false
		}
	}
	return true
}
