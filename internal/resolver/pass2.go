package resolver

import (
	"fmt"

	"github.com/quill-lang/quillc/internal/ast"
	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/env"
	"github.com/quill-lang/quillc/internal/namespace"
	"github.com/quill-lang/quillc/internal/symbols"
	"github.com/quill-lang/quillc/internal/token"
	"github.com/quill-lang/quillc/internal/typesystem"
)

// pass2 resolves identifier references and infers/checks types, per
// spec.md §4.5 "Pass 2". Unlike pass1 it is not a plain ast.Visitor: most
// of its operations need a return value (the resolved type of the
// sub-expression just visited), so it is a set of ordinary recursive
// functions over the same node set, in the style of
// funvibe-funxy/internal/analyzer's walker+InferenceContext split between
// traversal and inference.
//
// Top-level (scope 0) Let statements resolve on demand rather than in
// strict source order: a reference to a not-yet-visited top-level
// identifier forces that Let's resolution immediately (forceResolveLet),
// memoized in done and guarded against cycles by inProgress. This
// implements SPEC_FULL.md's dependency-graph decision (open question #5)
// without a blind repeat of passes 1-2 — forcing is cheap exactly because
// Pass 1 already pre-assigned every scope-opening node's id (scopeMap), so
// resolving a node out of its natural traversal order never desyncs scope
// ids from Pass 1 (spec.md §9 "Forward references").
type pass2 struct {
	env      *env.ModuleEnv
	types    *typesystem.TypeTable
	tree     *namespace.Tree
	nsID     symbols.NamespaceID
	scopeMap map[ast.Node]symbols.ScopeID
	errs     *[]*diagnostics.Error

	letNodes   map[string]*ast.Let
	inProgress map[string]bool
	done       map[string]bool
	chain      []string
}

func (c *pass2) fail(err *diagnostics.Error) {
	*c.errs = append(*c.errs, err)
}

func (c *pass2) setType(m *ast.MetaData, lt typesystem.LangType) typesystem.LangType {
	if lt == nil {
		lt = typesystem.Undef{}
	}
	if entry, ok := c.types.Resolve(lt); ok {
		if err := m.Type.Set(entry.ID); err != nil {
			c.fail(diagnostics.Internal(err.Error()))
		}
	}
	return lt
}

func (c *pass2) finalizeSymbolType(ref *typesystem.TypeRef, lt typesystem.LangType) {
	if lt == nil {
		return
	}
	if entry, ok := c.types.Resolve(lt); ok {
		if err := ref.Set(entry.ID); err != nil {
			c.fail(diagnostics.Internal(err.Error()))
		}
	}
}

func typeOfRef(types *typesystem.TypeTable, ref *typesystem.TypeRef) typesystem.LangType {
	id, ok := ref.ID()
	if !ok {
		return typesystem.Undef{}
	}
	return types.Entry(id).Type
}

func (c *pass2) openScope(n ast.Node) {
	id, ok := c.scopeMap[n]
	if !ok {
		c.fail(diagnostics.Internal("resolver: no scope recorded for node in pass 1"))
		return
	}
	c.env.PushScope(id)
}

func (c *pass2) closeScope() {
	_ = c.env.ExitScope()
}

// resolveTop runs Pass 2 over a namespace's top-level nodes in source
// order, except that a reference to a not-yet-visited top-level Let forces
// it out of order via forceResolveLet.
func (c *pass2) resolveTop(nodes []ast.Node) {
	for _, n := range nodes {
		switch stmt := n.(type) {
		case *ast.Let:
			c.resolveLet(stmt)
		case *ast.Assign:
			c.resolveAssign(stmt)
		case ast.Expression:
			c.resolveExpr(stmt)
		}
	}
}

func (c *pass2) forceResolveLet(n *ast.Let) {
	snap := c.env.StackSnapshot()
	c.env.SetGlobalOnly()
	c.resolveLet(n)
	c.env.RestoreStack(snap)
}

func (c *pass2) resolveLet(n *ast.Let) {
	if c.done[n.Identifier] {
		return
	}
	if c.inProgress[n.Identifier] {
		chain := append(append([]string(nil), c.chain...), n.Identifier)
		c.fail(diagnostics.CircularDependency(n.Token, chain))
		c.done[n.Identifier] = true
		return
	}
	c.inProgress[n.Identifier] = true
	c.chain = append(c.chain, n.Identifier)

	assignType := c.resolveExpr(n.Assignment)

	ref, found := c.env.Lookup(n.Identifier)
	if !found {
		c.fail(diagnostics.Internal("let: no declaration recorded for " + n.Identifier))
	} else {
		data, _ := ref.Data()
		if n.DeclaredType != nil {
			declared := n.DeclaredType.ToLangType()
			compat := c.types.CheckCompatibility(assignType, declared)
			if !compat.Compatible {
				c.fail(diagnostics.TypeMismatch(n.Token, declared.String(), assignType.String()))
			} else {
				if compat.Conversion.Kind != typesystem.ConvNone {
					n.Assignment.Meta().SetConversion(compat.Conversion)
				}
				c.finalizeSymbolType(data.TypeRef, declared)
			}
		} else {
			c.finalizeSymbolType(data.TypeRef, assignType)
		}
	}

	c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KNil})

	c.inProgress[n.Identifier] = false
	c.chain = c.chain[:len(c.chain)-1]
	c.done[n.Identifier] = true
}

func (c *pass2) resolveAssign(n *ast.Assign) {
	ref, found := c.lookupForcing(n.Token, n.Target)
	if !found {
		c.fail(diagnostics.UnresolvedSymbol(n.Token, n.Target))
		c.setType(n.Md, typesystem.Undef{})
		return
	}
	data, _ := ref.Data()
	if !data.HasModifier(symbols.Mutable) || data.HasModifier(symbols.Const) {
		c.fail(diagnostics.InvalidOperation(n.Token, "assignment", "symbol is not mutable"))
	}
	rhsType := c.resolveExpr(n.Assignment)
	targetType := typeOfRef(c.types, data.TypeRef)
	compat := c.types.CheckCompatibility(rhsType, targetType)
	if !compat.Compatible {
		c.fail(diagnostics.TypeMismatch(n.Token, targetType.String(), rhsType.String()))
	} else if compat.Conversion.Kind != typesystem.ConvNone {
		n.Assignment.Meta().SetConversion(compat.Conversion)
	}
	c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KNil})
}

// lookupForcing resolves identifier through the current scope chain,
// forcing a not-yet-visited top-level Let to resolve first if that's what
// stands in the way.
func (c *pass2) lookupForcing(tok token.Token, identifier string) (*symbols.SymbolRef, bool) {
	ref, found := c.env.Lookup(identifier)
	if !found {
		return nil, false
	}
	if data, ok := ref.Data(); ok && !data.TypeRef.IsResolved() {
		if letNode, isTop := c.letNodes[identifier]; isTop && !c.done[identifier] {
			c.forceResolveLet(letNode)
		}
	}
	return ref, true
}

func (c *pass2) resolveExpr(expr ast.Expression) typesystem.LangType {
	if expr == nil {
		return typesystem.Undef{}
	}
	switch n := expr.(type) {
	case *ast.V:
		return c.resolveV(n)
	case *ast.M:
		return c.resolveM(n)
	case *ast.S:
		return c.resolveS(n)
	case *ast.O:
		return c.resolveO(n)
	case *ast.B:
		return c.resolveB(n)
	case *ast.P:
		return c.resolveP(n)
	case *ast.L:
		return c.resolveL(n)
	default:
		c.fail(diagnostics.Internal(fmt.Sprintf("resolver: unhandled expression node %T", expr)))
		return typesystem.Undef{}
	}
}

func (c *pass2) resolveV(n *ast.V) typesystem.LangType {
	switch v := n.Val.(type) {
	case ast.VI32:
		return c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KI32})
	case ast.VI64:
		return c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KI64})
	case ast.VF32:
		return c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KF32})
	case ast.VF64:
		return c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KF64})
	case ast.VBool:
		return c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KBool})
	case ast.VStr:
		return c.setType(n.Md, typesystem.StringT{})
	case ast.VNil:
		return c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KNil})
	case ast.VQuote:
		return c.setType(n.Md, typesystem.QuoteT{})
	case ast.VArray:
		elem := c.resolveElementTypes(n.Token, n.Md, elementExprs(v.Elements))
		return c.setType(n.Md, typesystem.Array{Elem: elem})
	case ast.VTuple:
		members := make([]typesystem.LangType, len(v.Elements))
		for i, e := range v.Elements {
			members[i] = c.resolveExpr(e)
		}
		return c.setType(n.Md, typesystem.Tuple{Members: members})
	case ast.VIdentifier:
		ref, found := c.lookupForcing(n.Token, v.Name)
		if !found {
			c.fail(diagnostics.UnresolvedSymbol(n.Token, v.Name))
			return c.setType(n.Md, typesystem.Undef{})
		}
		data, resolved := ref.Data()
		if !resolved {
			c.fail(diagnostics.UnresolvedSymbol(n.Token, v.Name))
			return c.setType(n.Md, typesystem.Undef{})
		}
		n.Md.SetSymbol(ref)
		lt := typeOfRef(c.types, data.TypeRef)
		if entry, ok := c.types.Lookup(lt); ok {
			_ = n.Md.Type.Set(entry.ID)
		}
		return lt
	default:
		c.fail(diagnostics.Internal(fmt.Sprintf("resolver: unhandled value literal %T", v)))
		return typesystem.Undef{}
	}
}

func elementExprs(es []ast.Expression) []ast.Expression { return es }

// resolveElementTypes resolves every element and picks the result type for
// a List-shaped value: Undefined for an empty list (reified eagerly, per
// SPEC_FULL.md open question #3), the widest primitive when all elements
// are numeric, or the shared structural type when they agree exactly.
func (c *pass2) resolveElementTypes(tok token.Token, md *ast.MetaData, elems []ast.Expression) typesystem.LangType {
	if len(elems) == 0 {
		return typesystem.Undef{}
	}
	types := make([]typesystem.LangType, len(elems))
	for i, e := range elems {
		types[i] = c.resolveExpr(e)
	}
	if widest, ok := typesystem.WidestPrimitive(types); ok {
		allNumericOrMatch := true
		for _, t := range types {
			if p, isPrim := t.(typesystem.Primitive); !isPrim || !p.Kind.Numeric() {
				allNumericOrMatch = false
				break
			}
		}
		if allNumericOrMatch {
			return widest
		}
	}
	first := types[0]
	for _, t := range types[1:] {
		if t.String() != first.String() {
			c.fail(diagnostics.TypeMismatch(tok, first.String(), t.String()))
			return typesystem.Undef{}
		}
	}
	return first
}

func (c *pass2) resolveM(n *ast.M) typesystem.LangType {
	curNS := c.nsID
	var lastType typesystem.LangType = typesystem.Undef{}

	for _, acc := range n.Accessors {
		switch a := acc.(type) {
		case ast.AccNamespace:
			node := c.tree.Node(curNS)
			childID, ok := node.Children[a.Name]
			if !ok {
				c.fail(diagnostics.NewAt(diagnostics.ErrPathNotFound, a.Pos(), fmt.Sprintf("namespace not found: %q", a.Name)))
				return c.setType(n.Md, typesystem.Undef{})
			}
			curNS = childID
		case ast.AccIdentifier:
			data, ok := c.lookupInNamespace(a.Pos(), curNS, a.Name)
			if !ok {
				c.fail(diagnostics.UnresolvedSymbol(a.Token, a.Name))
				return c.setType(n.Md, typesystem.Undef{})
			}
			lastType = typeOfRef(c.types, data.TypeRef)
		case ast.AccFunctionCall:
			data, ok := c.lookupInNamespace(a.Pos(), curNS, a.Name)
			if !ok {
				c.fail(diagnostics.UnresolvedSymbol(a.Token, a.Name))
				return c.setType(n.Md, typesystem.Undef{})
			}
			fnType := typeOfRef(c.types, data.TypeRef)
			lastType = c.checkCall(a.Token, fnType, a.Args)
		}
	}
	return c.setType(n.Md, lastType)
}

// lookupInNamespace resolves identifier in namespace ns's global (scope 0)
// table when ns differs from this resolver's own namespace, enforcing
// SPEC_FULL.md open question #4 (a cross-namespace qualified lookup of a
// non-PUBLIC symbol is rejected); otherwise it chains through the current
// lexical scope stack exactly like a bare identifier.
func (c *pass2) lookupInNamespace(pos token.Position, ns symbols.NamespaceID, name string) (symbols.SymbolData, bool) {
	if ns == c.nsID {
		ref, found := c.env.Lookup(name)
		if !found {
			return symbols.SymbolData{}, false
		}
		if data, ok := ref.Data(); ok && !data.TypeRef.IsResolved() {
			if letNode, isTop := c.letNodes[name]; isTop && !c.done[name] {
				c.forceResolveLet(letNode)
			}
		}
		return ref.Data()
	}
	node := c.tree.Node(ns)
	ref, found := node.Symbols.LookupLocal(0, name)
	if !found {
		return symbols.SymbolData{}, false
	}
	data, resolved := ref.Data()
	if !resolved {
		return symbols.SymbolData{}, false
	}
	if !data.HasModifier(symbols.Public) {
		c.fail(diagnostics.InvalidSymbol(token.Token{Position: pos}, "symbol is not public"))
		return symbols.SymbolData{}, false
	}
	return data, true
}

func (c *pass2) checkCall(tok token.Token, fnType typesystem.LangType, args []ast.Expression) typesystem.LangType {
	fn, ok := fnType.(typesystem.Function)
	if !ok {
		c.fail(diagnostics.InvalidOperation(tok, "call", "callee is not a function"))
		for _, a := range args {
			c.resolveExpr(a)
		}
		return typesystem.Undef{}
	}
	if len(args) != len(fn.Params) {
		c.fail(diagnostics.InvalidParameter(tok, fmt.Sprintf("arity mismatch: expected %d argument(s), got %d", len(fn.Params), len(args))))
		for _, a := range args {
			c.resolveExpr(a)
		}
		return fn.Ret
	}
	for i, a := range args {
		argType := c.resolveExpr(a)
		compat := c.types.CheckCompatibility(argType, fn.Params[i])
		if !compat.Compatible {
			c.fail(diagnostics.TypeMismatch(tok, fn.Params[i].String(), argType.String()))
		} else if compat.Conversion.Kind != typesystem.ConvNone {
			a.Meta().SetConversion(compat.Conversion)
		}
	}
	return fn.Ret
}

func (c *pass2) resolveS(n *ast.S) typesystem.LangType {
	fnType := c.resolveExpr(n.Operator)
	return c.setType(n.Md, c.checkCall(n.Token, fnType, n.Operands))
}

func (c *pass2) resolveO(n *ast.O) typesystem.LangType {
	switch n.Op.Category() {
	case ast.CategoryArithmetic:
		types := make([]typesystem.LangType, len(n.Operands))
		for i, o := range n.Operands {
			types[i] = c.resolveExpr(o)
		}
		for _, t := range types {
			p, isPrim := t.(typesystem.Primitive)
			if !isPrim || !p.Kind.Numeric() {
				c.fail(diagnostics.InvalidOperation(n.Token, n.Op.String(), "operand is not numeric"))
				return c.setType(n.Md, typesystem.Undef{})
			}
		}
		widest, ok := typesystem.WidestPrimitive(types)
		if !ok {
			c.fail(diagnostics.InvalidOperation(n.Token, n.Op.String(), "no numeric operand"))
			return c.setType(n.Md, typesystem.Undef{})
		}
		return c.setType(n.Md, widest)

	case ast.CategoryComparison:
		types := make([]typesystem.LangType, len(n.Operands))
		for i, o := range n.Operands {
			types[i] = c.resolveExpr(o)
		}
		for i := 1; i < len(types); i++ {
			if !mutuallyWidenable(c.types, types[0], types[i]) {
				c.fail(diagnostics.InvalidOperation(n.Token, n.Op.String(), "operands are not mutually comparable"))
				return c.setType(n.Md, typesystem.Undef{})
			}
		}
		return c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KBool})

	case ast.CategoryLogical:
		for _, o := range n.Operands {
			t := c.resolveExpr(o)
			if p, ok := t.(typesystem.Primitive); !ok || p.Kind != typesystem.KBool {
				c.fail(diagnostics.InvalidOperation(n.Token, n.Op.String(), "operand is not Bool"))
				return c.setType(n.Md, typesystem.Undef{})
			}
		}
		return c.setType(n.Md, typesystem.Primitive{Kind: typesystem.KBool})

	case ast.CategoryReAssign:
		return c.setType(n.Md, c.resolveReAssign(n))

	case ast.CategoryList:
		elem := c.resolveElementTypes(n.Token, n.Md, n.Operands)
		return c.setType(n.Md, typesystem.Array{Elem: elem})

	default:
		c.fail(diagnostics.Internal("resolver: unhandled operation category"))
		return c.setType(n.Md, typesystem.Undef{})
	}
}

func (c *pass2) resolveReAssign(n *ast.O) typesystem.LangType {
	if len(n.Operands) != 2 {
		c.fail(diagnostics.InvalidOperation(n.Token, n.Op.String(), "reassignment requires exactly one target and one value"))
		return typesystem.Undef{}
	}
	target, value := n.Operands[0], n.Operands[1]

	mutable, targetType := c.resolveLValue(target)
	if !mutable {
		c.fail(diagnostics.InvalidOperation(n.Token, "assignment", "symbol is not mutable"))
	}
	valueType := c.resolveExpr(value)
	if mutable {
		compat := c.types.CheckCompatibility(valueType, targetType)
		if !compat.Compatible {
			c.fail(diagnostics.TypeMismatch(n.Token, targetType.String(), valueType.String()))
		} else if compat.Conversion.Kind != typesystem.ConvNone {
			value.Meta().SetConversion(compat.Conversion)
		}
	}
	return typesystem.Primitive{Kind: typesystem.KNil}
}

// resolveLValue resolves target (a V(Identifier) or M chain) and reports
// whether it names a mutable field, per spec.md §4.5's ReAssign rule.
func (c *pass2) resolveLValue(target ast.Expression) (bool, typesystem.LangType) {
	switch t := target.(type) {
	case *ast.V:
		id, ok := t.Val.(ast.VIdentifier)
		if !ok {
			c.resolveExpr(target)
			return false, typesystem.Undef{}
		}
		ref, found := c.lookupForcing(t.Token, id.Name)
		if !found {
			c.fail(diagnostics.UnresolvedSymbol(t.Token, id.Name))
			return false, typesystem.Undef{}
		}
		data, _ := ref.Data()
		t.Md.SetSymbol(ref)
		lt := typeOfRef(c.types, data.TypeRef)
		if entry, ok := c.types.Lookup(lt); ok {
			_ = t.Md.Type.Set(entry.ID)
		}
		return data.HasModifier(symbols.Mutable) && !data.HasModifier(symbols.Const), lt
	case *ast.M:
		if len(t.Accessors) == 0 {
			return false, typesystem.Undef{}
		}
		last := t.Accessors[len(t.Accessors)-1]
		idAcc, ok := last.(ast.AccIdentifier)
		if !ok {
			c.resolveExpr(target)
			return false, typesystem.Undef{}
		}
		lt := c.resolveM(t)
		curNS := c.nsID
		for _, acc := range t.Accessors[:len(t.Accessors)-1] {
			if ns, ok := acc.(ast.AccNamespace); ok {
				curNS = c.tree.Node(curNS).Children[ns.Name]
			}
		}
		data, ok := c.lookupInNamespace(idAcc.Pos(), curNS, idAcc.Name)
		if !ok {
			return false, typesystem.Undef{}
		}
		return data.HasModifier(symbols.Mutable) && !data.HasModifier(symbols.Const), lt
	default:
		c.resolveExpr(target)
		return false, typesystem.Undef{}
	}
}

func (c *pass2) resolveB(n *ast.B) typesystem.LangType {
	c.openScope(n)
	var last typesystem.LangType = typesystem.Primitive{Kind: typesystem.KNil}
	for i, item := range n.Items {
		switch stmt := item.(type) {
		case *ast.Let:
			c.resolveLet(stmt)
			last = typesystem.Primitive{Kind: typesystem.KNil}
		case *ast.Assign:
			c.resolveAssign(stmt)
			last = typesystem.Primitive{Kind: typesystem.KNil}
		case ast.Expression:
			t := c.resolveExpr(stmt)
			if i == len(n.Items)-1 {
				last = t
			}
		}
	}
	c.closeScope()
	return c.setType(n.Md, last)
}

func (c *pass2) resolveP(n *ast.P) typesystem.LangType {
	condType := c.resolveExpr(n.Cond)
	if p, ok := condType.(typesystem.Primitive); !ok || p.Kind != typesystem.KBool {
		c.fail(diagnostics.TypeMismatch(n.Token, "Bool", condType.String()))
	}
	switch n.Form.Kind {
	case ast.ThenElse:
		thenType := c.resolveExpr(n.Form.Then)
		elseType := c.resolveExpr(n.Form.Else)
		widest, ok := widestOf(c.types, thenType, elseType)
		if !ok {
			c.fail(diagnostics.TypeMismatch(n.Token, thenType.String(), elseType.String()))
			return c.setType(n.Md, typesystem.Undef{})
		}
		return c.setType(n.Md, widest)
	case ast.Match:
		thenType := c.resolveExpr(n.Form.Then)
		return c.setType(n.Md, typesystem.Optional{Elem: thenType})
	case ast.Coalesce:
		elseType := c.resolveExpr(n.Form.Else)
		return c.setType(n.Md, elseType)
	default:
		c.fail(diagnostics.Internal("resolver: unhandled predicate form"))
		return c.setType(n.Md, typesystem.Undef{})
	}
}

func (c *pass2) resolveL(n *ast.L) typesystem.LangType {
	c.openScope(n)
	paramTypes := make([]typesystem.LangType, len(n.Params))
	for i, param := range n.Params {
		if param.DeclaredType != nil {
			paramTypes[i] = param.DeclaredType.ToLangType()
		} else {
			paramTypes[i] = typesystem.Undef{}
		}
		if param.Meta != nil {
			c.setType(param.Meta, paramTypes[i])
		}
	}
	bodyType := c.resolveExpr(n.Body)
	retType := bodyType
	if n.ReturnType != nil {
		declared := n.ReturnType.ToLangType()
		compat := c.types.CheckCompatibility(bodyType, declared)
		if !compat.Compatible {
			c.fail(diagnostics.TypeMismatch(n.Token, declared.String(), bodyType.String()))
		} else if compat.Conversion.Kind != typesystem.ConvNone {
			n.Body.Meta().SetConversion(compat.Conversion)
		}
		retType = declared
	}
	c.closeScope()
	return c.setType(n.Md, typesystem.Function{Params: paramTypes, Ret: retType})
}

// mutuallyWidenable reports whether a and b are compatible in either
// direction, per spec.md §4.5's comparison rule.
func mutuallyWidenable(types *typesystem.TypeTable, a, b typesystem.LangType) bool {
	return types.CheckCompatibility(a, b).Compatible || types.CheckCompatibility(b, a).Compatible
}

// widestOf picks the wider of two mutually-widenable types (spec.md §4.5's
// THEN_ELSE predicate rule): equal types return either; otherwise whichever
// direction CheckCompatibility allows names the wider type as its target.
func widestOf(types *typesystem.TypeTable, a, b typesystem.LangType) (typesystem.LangType, bool) {
	if a.String() == b.String() {
		return a, true
	}
	if types.CheckCompatibility(a, b).Compatible {
		return b, true
	}
	if types.CheckCompatibility(b, a).Compatible {
		return a, true
	}
	return nil, false
}
