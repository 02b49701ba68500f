// Package ast defines the AST data model consumed by the resolver: a sum
// type over Expression and Statement node kinds, each carrying a MetaData
// side-channel (spec.md §3).
package ast

import "github.com/quill-lang/quillc/internal/token"

// Node is the base interface for every AST node.
type Node interface {
	Pos() token.Position
	Meta() *MetaData
	Accept(v Visitor)
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a Node that does not itself produce a value consumed by its
// parent (Let, Assign).
type Statement interface {
	Node
	statementNode()
}
