// Package resolver drives the two-pass symbol/type resolution walk over
// one namespace's AST (spec.md §4.5).
package resolver

import (
	"github.com/quill-lang/quillc/internal/ast"
	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/env"
	"github.com/quill-lang/quillc/internal/namespace"
	"github.com/quill-lang/quillc/internal/symbols"
	"github.com/quill-lang/quillc/internal/typesystem"
)

// Resolver owns the shared, process-lifetime TypeTable and the
// NamespaceTree it resolves against (spec.md §9 "Global type table": the
// table is instance-owned by the top-level driver and passed explicitly,
// never global state).
type Resolver struct {
	Types *typesystem.TypeTable
	Tree  *namespace.Tree
}

// New constructs a Resolver over tree using types for interning.
func New(tree *namespace.Tree, types *typesystem.TypeTable) *Resolver {
	return &Resolver{Types: types, Tree: tree}
}

// Result is the outcome of resolving one namespace.
type Result struct {
	FullyResolved bool
	Errors        []*diagnostics.Error
}

// Prepared holds one namespace's Pass 1 output: its module environment,
// scope assignments, and top-level Let index, ready for Pass 2.
type Prepared struct {
	env      *env.ModuleEnv
	scopeMap map[ast.Node]symbols.ScopeID
	letNodes map[string]*ast.Let
	topNodes []ast.Node
}

// PrepareNamespace runs Pass 1 (symbol/type stub population) over every unit
// currently attached to ns. For a multi-namespace run, PrepareNamespace must
// be called for every namespace before ResolvePrepared is called for any of
// them — otherwise a namespace resolved earlier in iteration order could
// fail to see a later namespace's top-level stubs on a cross-namespace `::`
// lookup (SPEC_FULL.md open question #5).
func (r *Resolver) PrepareNamespace(ns *namespace.Node) (*Prepared, []*diagnostics.Error) {
	var errs []*diagnostics.Error

	var topNodes []ast.Node
	for _, unit := range ns.Units {
		topNodes = append(topNodes, unit.RootExpressions...)
	}

	moduleEnv := env.New(ns.ID, ns.Symbols, r.lookupNamespace, r.lookupGlobal)

	scopeMap := make(map[ast.Node]symbols.ScopeID)
	p1 := &pass1{env: moduleEnv, types: r.Types, scopeMap: scopeMap, errs: &errs}
	for _, n := range topNodes {
		n.Accept(p1)
	}

	letNodes := make(map[string]*ast.Let)
	for _, n := range topNodes {
		if let, ok := n.(*ast.Let); ok {
			letNodes[let.Identifier] = let
		}
	}

	return &Prepared{env: moduleEnv, scopeMap: scopeMap, letNodes: letNodes, topNodes: topNodes}, errs
}

// ResolvePrepared runs Pass 2 over a namespace already prepared by
// PrepareNamespace. maxAttempts is accepted but not used: forcing of
// top-level Lets recurses at most once per Let, and a cycle is reported as
// CircularDependency via inProgress. There is no repeat-passes-1-2 loop.
func (r *Resolver) ResolvePrepared(ns *namespace.Node, p *Prepared, maxAttempts int) Result {
	var errs []*diagnostics.Error

	p.env.ResetScopeCounter()
	p2 := &pass2{
		env:        p.env,
		types:      r.Types,
		tree:       r.Tree,
		nsID:       ns.ID,
		scopeMap:   p.scopeMap,
		errs:       &errs,
		letNodes:   p.letNodes,
		inProgress: make(map[string]bool),
		done:       make(map[string]bool),
	}
	_ = maxAttempts // recursion is naturally bounded by len(letNodes); a true runaway is a cycle, already caught by inProgress.
	p2.resolveTop(p.topNodes)

	fullyResolved := true
	for _, unit := range ns.Units {
		if unit.Arena == nil {
			continue
		}
		if !unit.Arena.FullyResolved() {
			fullyResolved = false
		}
	}

	return Result{FullyResolved: fullyResolved && len(errs) == 0, Errors: errs}
}

// ResolveNamespace runs Pass 1 then Pass 2 over a single namespace in
// isolation — the right call for tests and any caller resolving exactly one
// namespace. A driver resolving a whole tree of namespaces should instead
// call PrepareNamespace for every namespace up front and ResolvePrepared
// for each afterward, so cross-namespace forward references see every
// namespace's stubs regardless of resolution order.
func (r *Resolver) ResolveNamespace(ns *namespace.Node, maxAttempts int) Result {
	p, perrs := r.PrepareNamespace(ns)
	res := r.ResolvePrepared(ns, p, maxAttempts)
	res.Errors = append(perrs, res.Errors...)
	return res
}

func (r *Resolver) lookupNamespace(path string) (*namespace.Node, bool) {
	return r.Tree.ResolvePath(path)
}

func (r *Resolver) lookupGlobal(ns symbols.NamespaceID, identifier string) (*symbols.SymbolRef, bool) {
	node := r.Tree.Node(ns)
	return node.Symbols.LookupLocal(0, identifier)
}
