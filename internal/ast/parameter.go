package ast

import (
	"github.com/quill-lang/quillc/internal/symbols"
	"github.com/quill-lang/quillc/internal/token"
)

// Parameter is (modifiers, identifier, declared_type) — a lambda/function
// parameter (spec.md §3).
type Parameter struct {
	Token          token.Token
	Modifiers      symbols.Modifiers
	Identifier     string
	DeclaredType   TypeExpr // nil if untyped
	Meta           *MetaData
}
