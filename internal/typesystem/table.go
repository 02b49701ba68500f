package typesystem

import "sync"

// TypeId is a stable integer identifier for an interned LangType, valid for
// the lifetime of the owning TypeTable (spec.md §3: "ids stable for process
// lifetime").
type TypeId int

// TypeEntry pairs an interned type with its id.
type TypeEntry struct {
	ID   TypeId
	Type LangType
}

// ConversionKind distinguishes CheckCompatibility's one non-trivial
// compatibility outcome (ConvNone covers both "identical type" and
// "structurally equal composite", since interning collapses both cases to
// the same TypeId before a conversion kind is even picked).
type ConversionKind int

const (
	ConvNone ConversionKind = iota
	ConvPrimitive
)

// Conversion describes the primitive widening conversion (if any) that
// checkCompatibility found between a source and target type.
type Conversion struct {
	Kind   ConversionKind
	Target LangType
}

// Compatibility is the result of checkCompatibility (spec.md §4.1).
type Compatibility struct {
	Compatible bool
	Conversion Conversion
}

// TypeTable interns LangType values to stable ids and answers
// compatibility/widening queries. Per spec.md §5 it is the only globally
// shared mutable resource across namespaces; writes are append-only and
// serialized by mu (a single writer lock — reads vastly outnumber writes).
type TypeTable struct {
	mu         sync.Mutex
	typeToId   map[string]TypeId
	idToEntry  []TypeEntry
	userTypes  map[string]LangType // name -> underlying shape, once declared
	nextId     TypeId
}

// New constructs a TypeTable with the primitive kinds pre-interned at fixed
// low ids, per spec.md §4.1's interning invariant.
func New() *TypeTable {
	t := &TypeTable{
		typeToId:  make(map[string]TypeId),
		userTypes: make(map[string]LangType),
	}
	for _, k := range []PrimitiveKind{KNil, KBool, KI32, KI64, KF32, KF64} {
		t.internLocked(Primitive{Kind: k})
	}
	t.internLocked(StringT{})
	t.internLocked(QuoteT{})
	return t
}

// DeclareUserType registers the underlying structural shape of a nominal
// UserType so that subsequent resolve(UserType{Name}) calls succeed. This
// is the minimal hook this repo exposes for a future type-declaration AST
// node (out of the distilled spec's scope; see SPEC_FULL.md §1).
func (t *TypeTable) DeclareUserType(name string, underlying LangType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userTypes[name] = underlying
}

func (t *TypeTable) internLocked(lt LangType) TypeEntry {
	key := lt.String()
	if id, ok := t.typeToId[key]; ok {
		return t.idToEntry[id]
	}
	id := t.nextId
	t.nextId++
	entry := TypeEntry{ID: id, Type: lt}
	t.typeToId[key] = id
	t.idToEntry = append(t.idToEntry, entry)
	return entry
}

// Entry returns the TypeEntry previously interned at id. Panics only on a
// genuinely impossible id (an invariant violation, not user error) — callers
// within this package never pass an id they didn't just receive from
// resolve/lookup.
func (t *TypeTable) Entry(id TypeId) TypeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idToEntry[id]
}

// Lookup answers whether lt (or its structural equivalent) has already been
// interned, without registering anything new. A composite whose children
// were never themselves resolved returns (TypeEntry{}, false) even if the
// composite is structurally sound — Lookup never recurses into
// registration, only resolve does (spec.md §4.1).
func (t *TypeTable) Lookup(lt LangType) (TypeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	canon, ok := t.canonicalize(lt, false)
	if !ok {
		return TypeEntry{}, false
	}
	id, ok := t.typeToId[canon.String()]
	if !ok {
		return TypeEntry{}, false
	}
	return t.idToEntry[id], true
}

// Resolve idempotently resolves lt, recursively resolving composite
// children and registering any structurally-new composite. It returns
// (TypeEntry{}, false) iff any leaf is Undefined or an undefined UserType
// (spec.md §4.1). Calling Resolve twice on equal values returns the same id
// (the interning invariant).
func (t *TypeTable) Resolve(lt LangType) (TypeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	canon, ok := t.canonicalize(lt, true)
	if !ok {
		return TypeEntry{}, false
	}
	return t.internLocked(canon), true
}

// canonicalize walks lt, resolving (or merely looking up, if register is
// false) every child so that structurally equal composites always produce
// an identical canonical LangType — the precondition for interning by
// String() key.
func (t *TypeTable) canonicalize(lt LangType, register bool) (LangType, bool) {
	switch v := lt.(type) {
	case Undef:
		return nil, false
	case UserType:
		underlying, ok := t.userTypes[v.Name]
		if !ok {
			return nil, false
		}
		return t.canonicalize(underlying, register)
	case Primitive, StringT, QuoteT:
		return v, true
	case Function:
		params := make([]LangType, len(v.Params))
		for i, p := range v.Params {
			c, ok := t.canonicalizeOrRegister(p, register)
			if !ok {
				return nil, false
			}
			params[i] = c
		}
		ret, ok := t.canonicalizeOrRegister(v.Ret, register)
		if !ok {
			return nil, false
		}
		return Function{Params: params, Ret: ret}, true
	case Array:
		elem, ok := t.canonicalizeOrRegister(v.Elem, register)
		if !ok {
			return nil, false
		}
		return Array{Elem: elem}, true
	case Tuple:
		members := make([]LangType, len(v.Members))
		for i, m := range v.Members {
			c, ok := t.canonicalizeOrRegister(m, register)
			if !ok {
				return nil, false
			}
			members[i] = c
		}
		return Tuple{Members: members}, true
	case Optional:
		elem, ok := t.canonicalizeOrRegister(v.Elem, register)
		if !ok {
			return nil, false
		}
		return Optional{Elem: elem}, true
	default:
		return nil, false
	}
}

// canonicalizeOrRegister canonicalizes a child type, additionally interning
// it when register is true (the Resolve path) so its canonical form is the
// stable, already-registered representative.
func (t *TypeTable) canonicalizeOrRegister(lt LangType, register bool) (LangType, bool) {
	canon, ok := t.canonicalize(lt, register)
	if !ok {
		return nil, false
	}
	if register {
		entry := t.internLocked(canon)
		return entry.Type, true
	}
	if _, ok := t.typeToId[canon.String()]; !ok {
		return nil, false
	}
	return canon, true
}

// CheckCompatibility implements spec.md §4.1's compatibility rules. Both
// src and tgt are resolved first; an unresolved operand is incompatible
// with anything (callers should not reach this with Undefined operands in
// practice — the resolver reports TypeMismatch/UnresolvedSymbol earlier).
func (t *TypeTable) CheckCompatibility(src, tgt LangType) Compatibility {
	srcEntry, srcOk := t.Resolve(src)
	tgtEntry, tgtOk := t.Resolve(tgt)
	if !srcOk || !tgtOk {
		return Compatibility{Compatible: false}
	}

	// Equal types (same interned id) => compatible, no conversion.
	if srcEntry.ID == tgtEntry.ID {
		return Compatibility{Compatible: true, Conversion: Conversion{Kind: ConvNone}}
	}

	srcPrim, srcIsPrim := srcEntry.Type.(Primitive)
	tgtPrim, tgtIsPrim := tgtEntry.Type.(Primitive)
	if srcIsPrim && tgtIsPrim {
		if !srcPrim.Kind.Numeric() || !tgtPrim.Kind.Numeric() {
			return Compatibility{Compatible: false}
		}
		if srcPrim.Kind.Precedence() > tgtPrim.Kind.Precedence() {
			return Compatibility{Compatible: false}
		}
		return Compatibility{
			Compatible: true,
			Conversion: Conversion{Kind: ConvPrimitive, Target: tgtEntry.Type},
		}
	}

	// Two composites reach here only when they are NOT structurally equal:
	// canonicalize interns every child first, so structurally-equal
	// composites always share one canonical String() key and therefore one
	// TypeId, which the ID check above already caught. A composite src/tgt
	// pair that differs in any member is genuinely incompatible — §4.1 has
	// no composite widening rule, only the primitive one handled above.
	return Compatibility{Compatible: false}
}

// WidestPrimitive filters Nil and Bool out of list and returns the
// remaining primitive with the maximum precedence (spec.md §4.1). Returns
// (Primitive{}, false) if list has no numeric primitive.
func WidestPrimitive(list []LangType) (Primitive, bool) {
	var widest Primitive
	found := false
	for _, lt := range list {
		p, ok := lt.(Primitive)
		if !ok || !p.Kind.Numeric() {
			continue
		}
		if !found || p.Kind.Precedence() > widest.Kind.Precedence() {
			widest = p
			found = true
		}
	}
	return widest, found
}
