// Package symbols implements SymbolData, the monotonic one-shot SymbolRef
// cell, and the SymbolTable keyed by (namespace_id, scope_id, identifier)
// (spec.md §3, §4.2).
package symbols

import (
	"errors"

	"github.com/quill-lang/quillc/internal/typesystem"
)

// NamespaceID identifies a node in the NamespaceTree.
type NamespaceID int

// ScopeID identifies a lexical scope within a single namespace. Scope 0 is
// always the namespace-global scope (spec.md §3).
type ScopeID int

// NsScope pairs a namespace and a scope within it.
type NsScope struct {
	Namespace NamespaceID
	Scope     ScopeID
}

// Modifier is one of the four declaration modifiers (spec.md §3).
type Modifier int

const (
	Mutable Modifier = iota
	Public
	Const
	Optional
)

func (m Modifier) String() string {
	switch m {
	case Mutable:
		return "MUTABLE"
	case Public:
		return "PUBLIC"
	case Const:
		return "CONST"
	case Optional:
		return "OPTIONAL"
	default:
		return "?"
	}
}

// Modifiers is a small modifier set with a Has query, shared by ast.Parameter
// and SymbolData.
type Modifiers []Modifier

func (m Modifiers) Has(mod Modifier) bool {
	for _, x := range m {
		if x == mod {
			return true
		}
	}
	return false
}

// SymbolKind distinguishes a plain binding from a function-shaped one
// (spec.md §3: "kind∈{Field,Function}").
type SymbolKind int

const (
	Field SymbolKind = iota
	Function
)

// SymbolData is a declaration: identifier, modifiers, resolved/unresolved
// type, kind, source location, and owning (namespace, scope).
type SymbolData struct {
	Identifier string
	Modifiers  Modifiers
	TypeRef    *typesystem.TypeRef
	Kind       SymbolKind
	Line       int
	Column     int
	Scope      NsScope
}

func (s SymbolData) HasModifier(m Modifier) bool { return s.Modifiers.Has(m) }

// ErrDuplicateSymbol is returned by SymbolTable.Define when a resolved
// entry already occupies the (scope, identifier) key.
var ErrDuplicateSymbol = errors.New("duplicate symbol")

// ErrCannotPopGlobalScope is returned when a caller tries to pop the
// namespace-global scope (scope 0) off a scope stack.
var ErrCannotPopGlobalScope = errors.New("cannot pop the global scope")

// SymbolRef is a monotonic one-shot cell: Unresolved (stub) until exactly
// one Resolve call fills it with SymbolData, after which it never becomes
// empty again (spec.md §3, glossary "SymbolRef").
type SymbolRef struct {
	resolved bool
	data     SymbolData
}

// NewStub returns a fresh unresolved SymbolRef.
func NewStub() *SymbolRef { return &SymbolRef{} }

// IsResolved reports whether this cell has been filled.
func (r *SymbolRef) IsResolved() bool { return r.resolved }

// Data returns the filled SymbolData and true, or a zero value and false if
// still unresolved.
func (r *SymbolRef) Data() (SymbolData, bool) {
	if !r.resolved {
		return SymbolData{}, false
	}
	return r.data, true
}

// resolve fills the cell exactly once. Only SymbolTable calls this, per
// spec.md §9's design note that monotonic resolution must be enforced by
// the table rather than trusted to callers.
func (r *SymbolRef) resolve(data SymbolData) error {
	if r.resolved {
		return ErrDuplicateSymbol
	}
	r.data = data
	r.resolved = true
	return nil
}
