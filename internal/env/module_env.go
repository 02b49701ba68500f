// Package env implements ModuleEnv: the per-namespace resolution context
// that tracks the lexical scope stack and mediates define/lookup
// operations, including cross-namespace qualified lookups (spec.md §4.4).
package env

import (
	"github.com/quill-lang/quillc/internal/namespace"
	"github.com/quill-lang/quillc/internal/symbols"
)

// NamespaceLookup resolves a dotted namespace path to its tree node, used
// for M-chain Namespace accessors crossing into another namespace
// (spec.md §4.5).
type NamespaceLookup func(path string) (*namespace.Node, bool)

// GlobalLookup resolves identifier in namespace ns's scope-0 (global)
// table, used once an M chain's lookup root has switched namespaces
// (spec.md §4.4).
type GlobalLookup func(ns symbols.NamespaceID, identifier string) (*symbols.SymbolRef, bool)

// ModuleEnv is the resolution context for one namespace: a scope stack
// starting at [0], a monotonically increasing scope counter, and closures
// for cross-namespace lookups (spec.md §4.4).
type ModuleEnv struct {
	nsID            symbols.NamespaceID
	table           *symbols.SymbolTable
	scopeStack      []symbols.ScopeID
	nextScope       symbols.ScopeID
	lookupNamespace NamespaceLookup
	lookupGlobal    GlobalLookup
}

// New creates a ModuleEnv for namespace nsID backed by table, with its
// scope stack starting as [0] (spec.md §4.4).
func New(nsID symbols.NamespaceID, table *symbols.SymbolTable, lookupNamespace NamespaceLookup, lookupGlobal GlobalLookup) *ModuleEnv {
	e := &ModuleEnv{
		nsID:            nsID,
		table:           table,
		lookupNamespace: lookupNamespace,
		lookupGlobal:    lookupGlobal,
	}
	e.ResetScopeCounter()
	return e
}

// ResetScopeCounter restores the scope stack to [0] and the scope counter
// to 1 — called by New before Pass 1 and by the resolver before Pass 2.
// Pass 2 does not allocate ids from this counter: it replays the ids Pass 1
// assigned via PushScope.
func (e *ModuleEnv) ResetScopeCounter() {
	e.scopeStack = []symbols.ScopeID{0}
	e.nextScope = 1
}

// EnterScope allocates the next scope id, pushes it, and returns it.
func (e *ModuleEnv) EnterScope() symbols.ScopeID {
	id := e.nextScope
	e.nextScope++
	e.scopeStack = append(e.scopeStack, id)
	return id
}

// PushScope pushes a specific, already-assigned scope id — used by the
// resolver's second pass to replay the exact scope ids Pass 1 handed out
// for each scope-opening node, rather than reallocating from the counter.
// This lets Pass 2 visit top-level declarations out of source order (to
// satisfy forward references) without desynchronizing scope ids from Pass
// 1 (spec.md §4.5, §9 "Forward references").
func (e *ModuleEnv) PushScope(id symbols.ScopeID) {
	e.scopeStack = append(e.scopeStack, id)
}

// StackSnapshot captures the current scope stack so a caller can restore it
// after a detour (e.g. forcing early resolution of an unrelated top-level
// declaration).
func (e *ModuleEnv) StackSnapshot() []symbols.ScopeID {
	return append([]symbols.ScopeID(nil), e.scopeStack...)
}

// RestoreStack replaces the scope stack wholesale, pairing with StackSnapshot.
func (e *ModuleEnv) RestoreStack(stack []symbols.ScopeID) {
	e.scopeStack = stack
}

// SetGlobalOnly resets the scope stack to just [0] — used before forcing
// resolution of a top-level declaration out of its normal traversal order.
func (e *ModuleEnv) SetGlobalOnly() {
	e.scopeStack = []symbols.ScopeID{0}
}

// ExitScope pops the innermost scope. Returns symbols.ErrCannotPopGlobalScope
// if only the global scope remains.
func (e *ModuleEnv) ExitScope() error {
	if len(e.scopeStack) <= 1 {
		return symbols.ErrCannotPopGlobalScope
	}
	e.scopeStack = e.scopeStack[:len(e.scopeStack)-1]
	return nil
}

// CurrentNsScope returns (namespace id, innermost scope id).
func (e *ModuleEnv) CurrentNsScope() symbols.NsScope {
	return symbols.NsScope{Namespace: e.nsID, Scope: e.scopeStack[len(e.scopeStack)-1]}
}

// Define declares identifier in the current (innermost) scope.
func (e *ModuleEnv) Define(identifier string, data symbols.SymbolData) error {
	return e.table.Define(e.scopeStack[len(e.scopeStack)-1], identifier, data)
}

// GetStub returns (creating if absent) an unresolved SymbolRef for
// identifier at the current scope.
func (e *ModuleEnv) GetStub(identifier string) *symbols.SymbolRef {
	return e.table.GetStub(e.scopeStack[len(e.scopeStack)-1], identifier)
}

// Lookup performs a chained lookup of identifier across the current scope
// stack, innermost to outermost.
func (e *ModuleEnv) Lookup(identifier string) (*symbols.SymbolRef, bool) {
	return e.table.Lookup(e.scopeStack, identifier)
}

// LookupNamespace resolves a dotted namespace path via the configured
// closure.
func (e *ModuleEnv) LookupNamespace(path string) (*namespace.Node, bool) {
	if e.lookupNamespace == nil {
		return nil, false
	}
	return e.lookupNamespace(path)
}

// LookupGlobal resolves identifier in another namespace's global scope via
// the configured closure.
func (e *ModuleEnv) LookupGlobal(ns symbols.NamespaceID, identifier string) (*symbols.SymbolRef, bool) {
	if e.lookupGlobal == nil {
		return nil, false
	}
	return e.lookupGlobal(ns, identifier)
}

// NamespaceID returns the namespace this env belongs to.
func (e *ModuleEnv) NamespaceID() symbols.NamespaceID { return e.nsID }
