package ast

import "github.com/quill-lang/quillc/internal/token"

// Value is the closed sum type carried by a V (literal) node: I32, I64,
// F32, F64, Bool, Str, Nil, Array, Tuple, Quote(Node), or Identifier(name)
// (spec.md §3).
type Value interface {
	valueNode()
}

type VI32 struct{ Val int32 }
type VI64 struct{ Val int64 }
type VF32 struct{ Val float32 }
type VF64 struct{ Val float64 }
type VBool struct{ Val bool }
type VStr struct{ Val string }
type VNil struct{}

// VArray is a list literal; spec.md §4.5's O(List) is the built-in list
// *operation* (cons-like construction) — VArray is a literal array value
// appearing directly as a V node's payload.
type VArray struct{ Elements []Expression }

type VTuple struct{ Elements []Expression }

// VQuote wraps an un-evaluated AST fragment — its static type is
// typesystem.QuoteT regardless of the quoted node's shape.
type VQuote struct{ Node Node }

// VIdentifier is a reference to a symbol by name; Pass 2 looks Name up and
// links the V node's SymbolRef to the declaration.
type VIdentifier struct{ Name string }

func (VI32) valueNode()        {}
func (VI64) valueNode()        {}
func (VF32) valueNode()        {}
func (VF64) valueNode()        {}
func (VBool) valueNode()       {}
func (VStr) valueNode()        {}
func (VNil) valueNode()        {}
func (VArray) valueNode()      {}
func (VTuple) valueNode()      {}
func (VQuote) valueNode()      {}
func (VIdentifier) valueNode() {}

// V is a literal-value expression: an I32/I64/.../Identifier payload plus
// location and metadata.
type V struct {
	Token token.Token
	Val   Value
	Md    *MetaData
}

func (n *V) expressionNode()     {}
func (n *V) Pos() token.Position { return n.Token.Position }
func (n *V) Meta() *MetaData     { return n.Md }
func (n *V) Accept(v Visitor)    { v.VisitV(n) }
