package ast

import (
	"github.com/quill-lang/quillc/internal/symbols"
	"github.com/quill-lang/quillc/internal/token"
)

// Let declares a local binding: let <id> [: <type>] = <expr> (spec.md §3).
type Let struct {
	Token        token.Token
	Identifier   string
	Modifiers    symbols.Modifiers
	DeclaredType TypeExpr // nil if untyped
	Assignment   Expression
	Md           *MetaData
}

func (n *Let) statementNode()    {}
func (n *Let) Pos() token.Position { return n.Token.Position }
func (n *Let) Meta() *MetaData   { return n.Md }
func (n *Let) Accept(v Visitor)  { v.VisitLet(n) }

// Assign is a local rebinding: <id> := <expr>. Member assignment is an O
// node with op ReAssign instead (spec.md §3).
type Assign struct {
	Token      token.Token
	Target     string
	Assignment Expression
	Md         *MetaData
}

func (n *Assign) statementNode()     {}
func (n *Assign) Pos() token.Position { return n.Token.Position }
func (n *Assign) Meta() *MetaData    { return n.Md }
func (n *Assign) Accept(v Visitor)   { v.VisitAssign(n) }
