package ast

import (
	"github.com/quill-lang/quillc/internal/typesystem"
)

// TypeExpr is the syntactic representation of a declared type annotation
// (spec.md §6's type syntax: I32, Array<T>, Fn<P1,P2;R>, Tuple<...>, or a
// user name) — distinct from typesystem.LangType, which is the resolved,
// interned representation. ToLangType performs the purely syntactic
// translation; the resolver is what actually resolves it via the
// TypeTable.
type TypeExpr interface {
	typeExprNode()
	ToLangType() typesystem.LangType
}

// NamedType covers I32, I64, F32, F64, Bool, Nil, Str, and any user type
// name.
type NamedType struct {
	Name string
}

func (NamedType) typeExprNode() {}
func (n NamedType) ToLangType() typesystem.LangType {
	switch n.Name {
	case "Nil":
		return typesystem.Primitive{Kind: typesystem.KNil}
	case "Bool":
		return typesystem.Primitive{Kind: typesystem.KBool}
	case "I32":
		return typesystem.Primitive{Kind: typesystem.KI32}
	case "I64":
		return typesystem.Primitive{Kind: typesystem.KI64}
	case "F32":
		return typesystem.Primitive{Kind: typesystem.KF32}
	case "F64":
		return typesystem.Primitive{Kind: typesystem.KF64}
	case "Str":
		return typesystem.StringT{}
	case "Quote":
		return typesystem.QuoteT{}
	default:
		return typesystem.UserType{Name: n.Name}
	}
}

// ArrayType is Array<Elem>.
type ArrayType struct {
	Elem TypeExpr
}

func (ArrayType) typeExprNode() {}
func (a ArrayType) ToLangType() typesystem.LangType {
	if a.Elem == nil {
		return typesystem.Array{Elem: typesystem.Undef{}}
	}
	return typesystem.Array{Elem: a.Elem.ToLangType()}
}

// TupleType is Tuple<M1,M2,...>.
type TupleType struct {
	Members []TypeExpr
}

func (TupleType) typeExprNode() {}
func (t TupleType) ToLangType() typesystem.LangType {
	members := make([]typesystem.LangType, len(t.Members))
	for i, m := range t.Members {
		members[i] = m.ToLangType()
	}
	return typesystem.Tuple{Members: members}
}

// FnType is Fn<P1,P2,...;R>.
type FnType struct {
	Params []TypeExpr
	Ret    TypeExpr
}

func (FnType) typeExprNode() {}
func (f FnType) ToLangType() typesystem.LangType {
	params := make([]typesystem.LangType, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.ToLangType()
	}
	ret := typesystem.LangType(typesystem.Undef{})
	if f.Ret != nil {
		ret = f.Ret.ToLangType()
	}
	return typesystem.Function{Params: params, Ret: ret}
}

// ParseTypeName renders a TypeExpr back to the §6 surface syntax, used for
// diagnostics that quote a declared type.
func ParseTypeName(t TypeExpr) string {
	if t == nil {
		return "Undefined"
	}
	return t.ToLangType().String()
}
