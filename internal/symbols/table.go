package symbols

// SymbolTable stores declarations keyed by (scope_id, identifier) for a
// single namespace (the namespace id is implicit — NamespaceTree owns one
// SymbolTable per node, spec.md §4.3). Within a namespace this is the
// single writer during resolution (spec.md §5).
type SymbolTable struct {
	namespace NamespaceID
	scopes    map[ScopeID]map[string]*SymbolRef
}

// New creates an empty SymbolTable for namespace ns.
func New(ns NamespaceID) *SymbolTable {
	return &SymbolTable{
		namespace: ns,
		scopes:    make(map[ScopeID]map[string]*SymbolRef),
	}
}

func (t *SymbolTable) scope(id ScopeID) map[string]*SymbolRef {
	s, ok := t.scopes[id]
	if !ok {
		s = make(map[string]*SymbolRef)
		t.scopes[id] = s
	}
	return s
}

// Define declares identifier at scope with data. If a resolved entry
// already exists, returns ErrDuplicateSymbol. If an unresolved stub exists
// (from a prior GetStub call), it is resolved in place — the same
// *SymbolRef pointer every earlier lookup received now observes the fill.
// Otherwise a new resolved entry is inserted (spec.md §4.2).
func (t *SymbolTable) Define(scope ScopeID, identifier string, data SymbolData) error {
	s := t.scope(scope)
	data.Scope = NsScope{Namespace: t.namespace, Scope: scope}
	if ref, ok := s[identifier]; ok {
		return ref.resolve(data)
	}
	ref := NewStub()
	_ = ref.resolve(data) // first fill on a fresh stub never errors
	s[identifier] = ref
	return nil
}

// GetStub returns the SymbolRef for (scope, identifier), creating an
// unresolved one if absent. Used to let a reference to a not-yet-declared
// identifier hold a cell that a later Define will fill in place (spec.md
// §4.2, §9 "Forward references").
func (t *SymbolTable) GetStub(scope ScopeID, identifier string) *SymbolRef {
	s := t.scope(scope)
	ref, ok := s[identifier]
	if !ok {
		ref = NewStub()
		s[identifier] = ref
	}
	return ref
}

// Lookup walks scopeChain from innermost (last element) to outermost
// (first element), returning the first hit — resolved or still a stub.
// Returns (nil, false) if identifier is absent at every scope in the
// chain.
func (t *SymbolTable) Lookup(scopeChain []ScopeID, identifier string) (*SymbolRef, bool) {
	for i := len(scopeChain) - 1; i >= 0; i-- {
		if s, ok := t.scopes[scopeChain[i]]; ok {
			if ref, ok := s[identifier]; ok {
				return ref, true
			}
		}
	}
	return nil, false
}

// LookupLocal looks up identifier only within a single scope, without
// walking the lexical chain — used for global (scope-0) cross-unit lookups
// where the caller already knows the exact scope (spec.md §5: "declaration
// visibility is union of per-unit declarations at scope 0").
func (t *SymbolTable) LookupLocal(scope ScopeID, identifier string) (*SymbolRef, bool) {
	s, ok := t.scopes[scope]
	if !ok {
		return nil, false
	}
	ref, ok := s[identifier]
	return ref, ok
}

// Names returns every identifier declared at scope, for diagnostics/tests.
func (t *SymbolTable) Names(scope ScopeID) []string {
	s, ok := t.scopes[scope]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}
