package typesystem

import "errors"

// ErrTypeRefMismatch is returned by TypeRef.Set when a caller tries to move
// an already-resolved TypeRef to a different id — the monotonicity
// invariant of spec.md §3: "once a TypeRef transitions to Resolved, its
// underlying type id never changes."
var ErrTypeRefMismatch = errors.New("TypeRef already resolved to a different type")

// TypeRef is the monotonic, one-shot "optional resolved type id" cell
// shared by ast.MetaData and symbols.SymbolData.
type TypeRef struct {
	resolved bool
	id       TypeId
}

// IsResolved reports whether Set has ever succeeded on this cell.
func (r *TypeRef) IsResolved() bool { return r.resolved }

// ID returns the resolved id and true, or the zero value and false.
func (r *TypeRef) ID() (TypeId, bool) {
	if !r.resolved {
		return 0, false
	}
	return r.id, true
}

// Set resolves the cell to id. Calling Set again with the same id is a
// no-op (idempotence, spec.md §8); calling it with a different id after
// resolution is a monotonicity violation.
func (r *TypeRef) Set(id TypeId) error {
	if r.resolved {
		if r.id != id {
			return ErrTypeRefMismatch
		}
		return nil
	}
	r.id = id
	r.resolved = true
	return nil
}
