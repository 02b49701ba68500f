package ast

// Visitor is implemented by anything that walks the AST — the Resolver's
// two passes, in this repo (spec.md §4.5), mirroring the teacher's
// Accept(v Visitor) idiom.
type Visitor interface {
	VisitS(n *S)
	VisitM(n *M)
	VisitO(n *O)
	VisitB(n *B)
	VisitV(n *V)
	VisitP(n *P)
	VisitL(n *L)
	VisitLet(n *Let)
	VisitAssign(n *Assign)
}
