package resolver_test

import (
	"testing"

	"github.com/quill-lang/quillc/internal/ast"
	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/namespace"
	"github.com/quill-lang/quillc/internal/parser"
	"github.com/quill-lang/quillc/internal/resolver"
	"github.com/quill-lang/quillc/internal/symbols"
	"github.com/quill-lang/quillc/internal/typesystem"
)

// resolveAt parses src as a unit attached to the namespace at path (the root
// namespace for path == ""), resolves it, and returns the node plus result.
func resolveAt(t *testing.T, tree *namespace.Tree, types *typesystem.TypeTable, path, src string) (*namespace.Node, resolver.Result) {
	t.Helper()
	node, err := tree.RegisterPath(path)
	if err != nil {
		t.Fatalf("RegisterPath(%q): %v", path, err)
	}
	p := parser.New(src)
	nodes := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors())
	}
	node.Units = append(node.Units, &namespace.Unit{
		Path:            path + ".ql",
		RootExpressions: nodes,
		Arena:           p.Arena(),
		State:           namespace.StateParsed,
	})
	r := resolver.New(tree, types)
	res := r.ResolveNamespace(node, 8)
	return node, res
}

func findErrorCode(errs []*diagnostics.Error, code diagnostics.Code) *diagnostics.Error {
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	return nil
}

func TestResolveBasicLetInfersLiteralType(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = 1")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if !res.FullyResolved {
		t.Fatalf("expected full resolution")
	}
}

func TestResolveForwardReferenceForcesEarlierLet(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let a = b\nlet b = (+ 1 2)")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if !res.FullyResolved {
		t.Fatalf("expected full resolution once the forward reference is forced")
	}
}

func TestResolveCircularDependencyIsReported(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let a = b\nlet b = a")
	if findErrorCode(res.Errors, diagnostics.ErrCircularDependency) == nil {
		t.Fatalf("expected a circular dependency error, got: %v", res.Errors)
	}
}

func TestResolveUnresolvedSymbol(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = neverDeclared")
	if findErrorCode(res.Errors, diagnostics.ErrUnresolvedSymbol) == nil {
		t.Fatalf("expected an unresolved symbol error, got: %v", res.Errors)
	}
}

func TestResolveLetDeclaredTypeMismatch(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x: Bool = 1")
	if findErrorCode(res.Errors, diagnostics.ErrTypeMismatch) == nil {
		t.Fatalf("expected a type mismatch error, got: %v", res.Errors)
	}
}

func TestResolveLetDeclaredTypeWidensCompatibly(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x: F64 = 1")
	if len(res.Errors) != 0 {
		t.Fatalf("I32 -> F64 should widen without error, got: %v", res.Errors)
	}
}

func TestResolveAssignToImmutableFails(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = 1\nx := 2")
	if findErrorCode(res.Errors, diagnostics.ErrInvalidOperation) == nil {
		t.Fatalf("expected reassigning an immutable binding to fail, got: %v", res.Errors)
	}
}

func TestResolveAssignToMutableSucceeds(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let mut x = 1\nx := 2")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestResolveAssignTypeMismatch(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", `let mut x = 1
x := "oops"`)
	if findErrorCode(res.Errors, diagnostics.ErrTypeMismatch) == nil {
		t.Fatalf("expected a type mismatch reassigning x to a string, got: %v", res.Errors)
	}
}

func TestResolveArithmeticOperationWidensOperands(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = (+ 1 2.5)")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestResolveArithmeticRejectsNonNumeric(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", `let x = (+ 1 "s")`)
	if findErrorCode(res.Errors, diagnostics.ErrInvalidOperation) == nil {
		t.Fatalf("expected an invalid-operation error mixing I32 and Str, got: %v", res.Errors)
	}
}

func TestResolveLogicalRequiresBool(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = (and true 1)")
	if findErrorCode(res.Errors, diagnostics.ErrInvalidOperation) == nil {
		t.Fatalf("expected an invalid-operation error, (and ...) requires Bool operands, got: %v", res.Errors)
	}
}

func TestResolveComparisonOperationProducesBool(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = ((> 10 4) -> 1 : 2)")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestResolvePredicateThenElseWidensToCommonType(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = (true -> 1 : 2.5)")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestResolveMatchOnlyPredicateWrapsResultInOptional(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	node, res := resolveAt(t, tree, types, "", "let x = (true -> 1)")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	let := node.Units[0].RootExpressions[0].(*ast.Let)
	id, ok := let.Assignment.Meta().Type.ID()
	if !ok {
		t.Fatalf("expected the predicate's type to be resolved")
	}
	opt, ok := types.Entry(id).Type.(typesystem.Optional)
	if !ok {
		t.Fatalf("got %#v, want typesystem.Optional", types.Entry(id).Type)
	}
	if _, ok := opt.Elem.(typesystem.Primitive); !ok {
		t.Fatalf("got elem %#v, want the I32 primitive", opt.Elem)
	}
}

func TestResolveEmptyListLiteralIsUndefinedElementArray(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = (list)")
	if len(res.Errors) != 0 {
		t.Fatalf("an empty list literal alone should not fail to resolve: %v", res.Errors)
	}
}

func TestResolvePredicateConditionMustBeBool(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = (1 -> 2 : 3)")
	if findErrorCode(res.Errors, diagnostics.ErrTypeMismatch) == nil {
		t.Fatalf("expected a type mismatch for a non-Bool predicate condition, got: %v", res.Errors)
	}
}

func TestResolveLambdaCallArityAndTypes(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "",
		"let double = (=> : I32 |x: I32| (+ x x))\nlet y = (double 3)")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if !res.FullyResolved {
		t.Fatalf("expected full resolution")
	}
}

func TestResolveCallArityMismatch(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "",
		"let f = (=> : I32 |x: I32| x)\nlet y = (f 1 2)")
	if findErrorCode(res.Errors, diagnostics.ErrInvalidParameter) == nil {
		t.Fatalf("expected an arity-mismatch error calling f with 2 args, got: %v", res.Errors)
	}
}

func TestResolveBlockResultIsLastExpression(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = {let y = 1\ny}")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestResolveCrossNamespacePublicLookupSucceeds(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()

	libNode, err := tree.RegisterPath("lib")
	if err != nil {
		t.Fatalf("RegisterPath: %v", err)
	}
	ref := &typesystem.TypeRef{}
	if entry, ok := types.Resolve(typesystem.Primitive{Kind: typesystem.KI32}); ok {
		_ = ref.Set(entry.ID)
	}
	if err := libNode.Symbols.Define(0, "answer", symbols.SymbolData{
		Identifier: "answer",
		Modifiers:  symbols.Modifiers{symbols.Public},
		TypeRef:    ref,
		Kind:       symbols.Field,
	}); err != nil {
		t.Fatalf("Define: %v", err)
	}

	_, res := resolveAt(t, tree, types, "", "let x = lib::answer")
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors referencing a public cross-namespace symbol: %v", res.Errors)
	}
}

func TestResolveCrossNamespaceNonPublicLookupFails(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()

	libNode, err := tree.RegisterPath("lib")
	if err != nil {
		t.Fatalf("RegisterPath: %v", err)
	}
	ref := &typesystem.TypeRef{}
	if entry, ok := types.Resolve(typesystem.Primitive{Kind: typesystem.KI32}); ok {
		_ = ref.Set(entry.ID)
	}
	if err := libNode.Symbols.Define(0, "secret", symbols.SymbolData{
		Identifier: "secret",
		TypeRef:    ref,
		Kind:       symbols.Field,
	}); err != nil {
		t.Fatalf("Define: %v", err)
	}

	_, res := resolveAt(t, tree, types, "", "let x = lib::secret")
	if findErrorCode(res.Errors, diagnostics.ErrInvalidSymbol) == nil {
		t.Fatalf("expected an invalid-symbol error referencing a non-public cross-namespace binding, got: %v", res.Errors)
	}
}

func TestResolveUnknownNamespaceSegment(t *testing.T) {
	tree := namespace.New()
	types := typesystem.New()
	_, res := resolveAt(t, tree, types, "", "let x = nope::thing")
	if findErrorCode(res.Errors, diagnostics.ErrPathNotFound) == nil {
		t.Fatalf("expected a path-not-found error for an unregistered namespace, got: %v", res.Errors)
	}
}
