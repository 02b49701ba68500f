// Package typesystem implements LangType, the TypeTable that interns
// LangType values to stable ids, and the compatibility/widening rules used
// by the resolver (spec.md §3, §4.1).
package typesystem

import (
	"fmt"
	"strings"
)

// LangType is the closed sum type over every type the resolver can produce:
// Undefined | UserType(name) | Primitive(...) | Composite(...). New variants
// are added only by coordinated edit (spec.md §9, "sum types over
// inheritance"), never by open extension.
type LangType interface {
	fmt.Stringer
	langType()
}

// Undef is the single value of the Undefined case — a type that has not
// been (or could not be) inferred yet.
type Undef struct{}

func (Undef) langType()     {}
func (Undef) String() string { return "Undefined" }

// UserType is a nominal type introduced by a (currently out-of-scope)
// type-declaration mechanism; it resolves only once DeclareUserType has
// registered its underlying shape with the TypeTable.
type UserType struct {
	Name string
}

func (UserType) langType()       {}
func (u UserType) String() string { return u.Name }

// PrimitiveKind enumerates the primitive leaf types, carrying the widening
// precedence directly in its value (spec.md §3 and SPEC_FULL.md open
// question #1): Nil=0, Bool=1, I32=3, I64=4, F32=5, F64=6. The gap at 2 is
// reserved and intentionally unused by this implementation.
type PrimitiveKind int

const (
	KNil  PrimitiveKind = 0
	KBool PrimitiveKind = 1
	KI32  PrimitiveKind = 3
	KI64  PrimitiveKind = 4
	KF32  PrimitiveKind = 5
	KF64  PrimitiveKind = 6
)

func (k PrimitiveKind) String() string {
	switch k {
	case KNil:
		return "Nil"
	case KBool:
		return "Bool"
	case KI32:
		return "I32"
	case KI64:
		return "I64"
	case KF32:
		return "F32"
	case KF64:
		return "F64"
	default:
		return "?"
	}
}

// Precedence returns the widening precedence of k (spec.md §4.1).
func (k PrimitiveKind) Precedence() int { return int(k) }

// Numeric reports whether k participates in arithmetic widening — every
// primitive except Nil and Bool (precedence > 1).
func (k PrimitiveKind) Numeric() bool { return k.Precedence() > 1 }

// Primitive is a LangType wrapping a PrimitiveKind.
type Primitive struct {
	Kind PrimitiveKind
}

func (Primitive) langType()       {}
func (p Primitive) String() string { return p.Kind.String() }

// Function is the Composite.Function case: Fn<P1,P2,...;R>.
type Function struct {
	Params []LangType
	Ret    LangType
}

func (Function) langType() {}
func (f Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	ret := "Undefined"
	if f.Ret != nil {
		ret = f.Ret.String()
	}
	return fmt.Sprintf("Fn<%s;%s>", strings.Join(parts, ","), ret)
}

// Array is the Composite.Array case: Array<T>.
type Array struct {
	Elem LangType
}

func (Array) langType() {}
func (a Array) String() string {
	elem := "Undefined"
	if a.Elem != nil {
		elem = a.Elem.String()
	}
	return fmt.Sprintf("Array<%s>", elem)
}

// Tuple is the Composite.Tuple case: Tuple<T1,T2,...>.
type Tuple struct {
	Members []LangType
}

func (Tuple) langType() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return fmt.Sprintf("Tuple<%s>", strings.Join(parts, ","))
}

// StringT is the Composite.String case.
type StringT struct{}

func (StringT) langType()     {}
func (StringT) String() string { return "Str" }

// QuoteT is the Composite.Quote case — the type of a quoted (unevaluated)
// AST fragment (ast.Value.Quote).
type QuoteT struct{}

func (QuoteT) langType()     {}
func (QuoteT) String() string { return "Quote" }

// Optional is the Composite case this implementation adds for the MATCH
// (then-only) predicate's result type (spec.md §9 open question #2,
// SPEC_FULL.md decision: Optional(then.type) rather than a bare union).
type Optional struct {
	Elem LangType
}

func (Optional) langType() {}
func (o Optional) String() string {
	elem := "Undefined"
	if o.Elem != nil {
		elem = o.Elem.String()
	}
	return fmt.Sprintf("Optional<%s>", elem)
}
