package ast

import "github.com/quill-lang/quillc/internal/token"

// S is an s-expression call: an operator expression applied to operands,
// e.g. (someFn a b). The operator need not be a bare name — spec.md §9
// "Operator as expression" allows a computed function value.
type S struct {
	Token    token.Token
	Operator Expression
	Operands []Expression
	Md       *MetaData
}

func (n *S) expressionNode()     {}
func (n *S) Pos() token.Position { return n.Token.Position }
func (n *S) Meta() *MetaData     { return n.Md }
func (n *S) Accept(v Visitor)    { v.VisitS(n) }

// Accessor is one element of an M (member/access) chain.
type Accessor interface {
	accessorNode()
	Pos() token.Position
}

// AccIdentifier looks up a name in the current context.
type AccIdentifier struct {
	Token token.Token
	Name  string
}

func (AccIdentifier) accessorNode()         {}
func (a AccIdentifier) Pos() token.Position { return a.Token.Position }

// AccNamespace switches the lookup root to the named child namespace.
type AccNamespace struct {
	Token token.Token
	Name  string
}

func (AccNamespace) accessorNode()         {}
func (a AccNamespace) Pos() token.Position { return a.Token.Position }

// AccFunctionCall looks up Name and type-checks Args against its function
// type.
type AccFunctionCall struct {
	Token token.Token
	Name  string
	Args  []Expression
}

func (AccFunctionCall) accessorNode()         {}
func (a AccFunctionCall) Pos() token.Position { return a.Token.Position }

// M is a member/namespace/access chain: a sequence of Identifier,
// Namespace, or FunctionCall accessors resolved left to right (spec.md
// §3, §4.5).
type M struct {
	Token     token.Token
	Accessors []Accessor
	Md        *MetaData
}

func (n *M) expressionNode()     {}
func (n *M) Pos() token.Position { return n.Token.Position }
func (n *M) Meta() *MetaData     { return n.Md }
func (n *M) Accept(v Visitor)    { v.VisitM(n) }

// O is a built-in operation: an enumerated op code applied to operands.
type O struct {
	Token    token.Token
	Op       Operation
	Operands []Expression
	Md       *MetaData
}

func (n *O) expressionNode()     {}
func (n *O) Pos() token.Position { return n.Token.Position }
func (n *O) Meta() *MetaData     { return n.Md }
func (n *O) Accept(v Visitor)    { v.VisitO(n) }

// BlockItem is one element of a B block: either a Statement (Let, Assign)
// or an Expression.
type BlockItem interface {
	Node
}

// B is a block: an ordered sequence of statements/expressions whose result
// is the last expression (Nil if empty or the last item is a statement).
type B struct {
	Token token.Token
	Items []BlockItem
	Md    *MetaData
}

func (n *B) expressionNode()     {}
func (n *B) Pos() token.Position { return n.Token.Position }
func (n *B) Meta() *MetaData     { return n.Md }
func (n *B) Accept(v Visitor)    { v.VisitB(n) }

// PredicateFormKind distinguishes the three predicate shapes (spec.md §3).
type PredicateFormKind int

const (
	ThenElse PredicateFormKind = iota
	Match              // then-only
	Coalesce           // else-only
)

// PredicateForm is (then?, else?) for a P node; exactly one of the two
// optionality rules holds depending on Kind.
type PredicateForm struct {
	Kind PredicateFormKind
	Then Expression // nil iff Kind == Coalesce
	Else Expression // nil iff Kind == Match
}

// P is a predicate: a condition plus a PredicateForm.
type P struct {
	Token token.Token
	Cond  Expression
	Form  PredicateForm
	Md    *MetaData
}

func (n *P) expressionNode()     {}
func (n *P) Pos() token.Position { return n.Token.Position }
func (n *P) Meta() *MetaData     { return n.Md }
func (n *P) Accept(v Visitor)    { v.VisitP(n) }

// L is a lambda: parameters, an optional declared return type, a body,
// and IsForm distinguishing arrow-lambdas ("=> |x| ...") from bare-form
// parentheses ("(|x| ...)").
type L struct {
	Token      token.Token
	Params     []*Parameter
	ReturnType TypeExpr // nil if undeclared
	Body       Expression
	IsForm     bool
	Md         *MetaData
}

func (n *L) expressionNode()     {}
func (n *L) Pos() token.Position { return n.Token.Position }
func (n *L) Meta() *MetaData     { return n.Md }
func (n *L) Accept(v Visitor)    { v.VisitL(n) }
