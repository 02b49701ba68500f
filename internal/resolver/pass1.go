package resolver

import (
	"github.com/quill-lang/quillc/internal/ast"
	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/env"
	"github.com/quill-lang/quillc/internal/symbols"
	"github.com/quill-lang/quillc/internal/typesystem"
)

// pass1 declares symbols and lays down the lexical scope skeleton, per
// spec.md §4.5 "Pass 1". It never reads a SymbolRef, only defines one;
// eager type inference here covers literals and fully-typed lambdas so
// straightforward declarations don't need a forward pass at all.
type pass1 struct {
	env      *env.ModuleEnv
	types    *typesystem.TypeTable
	scopeMap map[ast.Node]symbols.ScopeID
	errs     *[]*diagnostics.Error
}

func (p *pass1) fail(err *diagnostics.Error) {
	*p.errs = append(*p.errs, err)
}

// openScope allocates the next scope id for a scope-opening node (B or L),
// records it in scopeMap for Pass 2 to replay, and pushes it.
func (p *pass1) openScope(n ast.Node) symbols.ScopeID {
	id := p.env.EnterScope()
	p.scopeMap[n] = id
	return id
}

func (p *pass1) closeScope() {
	_ = p.env.ExitScope()
}

func (p *pass1) VisitV(n *ast.V) {
	if arr, ok := n.Val.(ast.VArray); ok {
		for _, e := range arr.Elements {
			e.Accept(p)
		}
	}
	if tup, ok := n.Val.(ast.VTuple); ok {
		for _, e := range tup.Elements {
			e.Accept(p)
		}
	}
}

func (p *pass1) VisitM(n *ast.M) {
	for _, a := range n.Accessors {
		if fc, ok := a.(ast.AccFunctionCall); ok {
			for _, arg := range fc.Args {
				arg.Accept(p)
			}
		}
	}
}

func (p *pass1) VisitO(n *ast.O) {
	for _, operand := range n.Operands {
		operand.Accept(p)
	}
}

func (p *pass1) VisitS(n *ast.S) {
	if n.Operator != nil {
		n.Operator.Accept(p)
	}
	for _, operand := range n.Operands {
		operand.Accept(p)
	}
}

func (p *pass1) VisitB(n *ast.B) {
	p.openScope(n)
	for _, item := range n.Items {
		item.Accept(p)
	}
	p.closeScope()
}

func (p *pass1) VisitP(n *ast.P) {
	if n.Cond != nil {
		n.Cond.Accept(p)
	}
	if n.Form.Then != nil {
		n.Form.Then.Accept(p)
	}
	if n.Form.Else != nil {
		n.Form.Else.Accept(p)
	}
}

func (p *pass1) VisitL(n *ast.L) {
	p.openScope(n)
	for _, param := range n.Params {
		var typeRef *typesystem.TypeRef
		if param.DeclaredType != nil {
			typeRef = new(typesystem.TypeRef)
			if entry, ok := p.types.Resolve(param.DeclaredType.ToLangType()); ok {
				_ = typeRef.Set(entry.ID)
			}
		} else {
			typeRef = new(typesystem.TypeRef)
		}
		if err := p.env.Define(param.Identifier, symbols.SymbolData{
			Identifier: param.Identifier,
			Modifiers:  param.Modifiers,
			TypeRef:    typeRef,
			Kind:       symbols.Field,
			Line:       param.Token.Line(),
			Column:     param.Token.Column(),
		}); err != nil {
			p.fail(diagnostics.DuplicateSymbol(param.Token, param.Identifier))
		}
	}
	if n.Body != nil {
		n.Body.Accept(p)
	}
	p.closeScope()
}

func (p *pass1) VisitLet(n *ast.Let) {
	typeRef := new(typesystem.TypeRef)
	// Only pre-bind the TypeRef from the literal's own type when there is no
	// declared type to reconcile it against: an earlier top-level Let
	// referencing this one before pass2 visits it (lookupForcing) can then
	// see the type without forcing pass2.resolveLet early. A declared type
	// may still widen the literal's type (let x: F64 = 1), and a TypeRef is
	// monotonic once set — pre-binding here would make pass2's later,
	// compatibility-checked finalizeSymbolType(declared) call fail as a
	// mismatch against the eagerly-bound literal type.
	if n.DeclaredType == nil {
		if lt, ok := eagerType(n.Assignment); ok {
			if entry, ok := p.types.Resolve(lt); ok {
				_ = typeRef.Set(entry.ID)
			}
		}
	}
	if err := p.env.Define(n.Identifier, symbols.SymbolData{
		Identifier: n.Identifier,
		Modifiers:  n.Modifiers,
		TypeRef:    typeRef,
		Kind:       symbols.Field,
		Line:       n.Token.Line(),
		Column:     n.Token.Column(),
	}); err != nil {
		p.fail(diagnostics.DuplicateSymbol(n.Token, n.Identifier))
	}
	if n.Assignment != nil {
		n.Assignment.Accept(p)
	}
}

func (p *pass1) VisitAssign(n *ast.Assign) {
	if n.Assignment != nil {
		n.Assignment.Accept(p)
	}
}

// eagerType attempts to infer expr's type without resolving identifiers or
// recursing into anything but literal/fully-typed-lambda shapes (spec.md
// §4.5 "Pass 1": "attempt eager type inference... literals, lambdas with
// fully-declared parameter/return types").
func eagerType(expr ast.Expression) (typesystem.LangType, bool) {
	switch n := expr.(type) {
	case *ast.V:
		switch v := n.Val.(type) {
		case ast.VI32:
			return typesystem.Primitive{Kind: typesystem.KI32}, true
		case ast.VI64:
			return typesystem.Primitive{Kind: typesystem.KI64}, true
		case ast.VF32:
			return typesystem.Primitive{Kind: typesystem.KF32}, true
		case ast.VF64:
			return typesystem.Primitive{Kind: typesystem.KF64}, true
		case ast.VBool:
			return typesystem.Primitive{Kind: typesystem.KBool}, true
		case ast.VStr:
			return typesystem.StringT{}, true
		case ast.VNil:
			return typesystem.Primitive{Kind: typesystem.KNil}, true
		case ast.VQuote:
			return typesystem.QuoteT{}, true
		default:
			_ = v
			return nil, false
		}
	case *ast.L:
		if n.ReturnType == nil {
			return nil, false
		}
		params := make([]typesystem.LangType, len(n.Params))
		for i, param := range n.Params {
			if param.DeclaredType == nil {
				return nil, false
			}
			params[i] = param.DeclaredType.ToLangType()
		}
		return typesystem.Function{Params: params, Ret: n.ReturnType.ToLangType()}, true
	default:
		return nil, false
	}
}
