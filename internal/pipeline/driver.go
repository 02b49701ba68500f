package pipeline

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quill-lang/quillc/internal/config"
	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/namespace"
	"github.com/quill-lang/quillc/internal/resolver"
	"github.com/quill-lang/quillc/internal/symbols"
	"github.com/quill-lang/quillc/internal/typesystem"
)

// runLog is a stderr-only logger with no timestamp prefix, the way
// cmd/lsp/main.go keeps log output out of a tool's primary stdout stream.
var runLog = log.New(os.Stderr, "quillc: ", 0)

// Driver orchestrates a whole compilation run: build the namespace tree,
// read+parse every unit in parallel, then resolve every namespace in turn
// (spec.md §5's concurrency model licenses TypeTable as the only resource
// shared *across* namespaces; each namespace's own SymbolTable is a
// single-writer-during-resolution structure that a cross-namespace `::`
// lookup from another namespace's concurrent resolution could otherwise
// race against, so namespace resolution itself stays sequential).
type Driver struct {
	Tree  *namespace.Tree
	Types *typesystem.TypeTable
	proj  *config.Project
}

// NewDriver builds the namespace tree rooted at proj.Root and prepares a
// fresh TypeTable for the run.
func NewDriver(proj *config.Project) (*Driver, error) {
	tree, err := namespace.Build(namespace.OSFS{}, proj.Root)
	if err != nil {
		return nil, err
	}
	return &Driver{Tree: tree, Types: typesystem.New(), proj: proj}, nil
}

// Summary is the outcome of one full compilation run. RunID lets a caller
// correlate this run's output across separate log lines or a CI artifact.
type Summary struct {
	RunID          string
	UnitCount      int
	NamespaceCount int
	FullyResolved  bool
	Errors         []*diagnostics.Error
}

// Run executes the whole pipeline: parallel read/parse across every unit in
// the tree, joined with an errgroup, followed by resolution of every
// namespace in sequence (see the Driver doc comment on why resolution
// itself isn't parallelized).
func (d *Driver) Run() Summary {
	runID := uuid.New().String()
	runLog.Printf("run %s: starting over %d namespace(s)", runID, d.Tree.Len())

	var errs []*diagnostics.Error
	unitCount := 0

	g, _ := errgroup.WithContext(context.Background())
	for _, node := range d.allNodes() {
		for _, u := range node.Units {
			unit := u
			unitCount++
			g.Go(func() error {
				_ = runUnit(unit)
				return nil
			})
		}
	}
	_ = g.Wait()

	for _, node := range d.allNodes() {
		for _, u := range node.Units {
			errs = append(errs, u.Errors...)
		}
	}

	// Namespaces resolve one at a time: a cross-namespace `::` lookup
	// (resolver/pass2.go's lookupInNamespace) reads another namespace's
	// symbols.SymbolTable while that namespace's own Pass 1 may still be
	// writing it, so only TypeTable — the resource spec.md §5 actually
	// licenses as concurrently shared — is safe to touch from more than one
	// namespace's resolution at a time.
	//
	// Every namespace's Pass 1 (top-level stub population) runs before any
	// namespace's Pass 2 (expression resolution): a `lib::y` reference from a
	// namespace that resolves earlier than "lib" in tree order must still see
	// "lib"'s stubs, not just namespaces that happened to resolve first.
	r := resolver.New(d.Tree, d.Types)
	type prepared struct {
		node *namespace.Node
		p    *resolver.Prepared
	}
	var preps []prepared
	for _, node := range d.allNodes() {
		if len(node.Units) == 0 {
			continue
		}
		advanceUnits(node.Units, namespace.StateParsed, namespace.StatePartiallyResolved)

		p, perrs := r.PrepareNamespace(node)
		errs = append(errs, perrs...)
		preps = append(preps, prepared{node: node, p: p})
	}

	fullyResolved := true
	for _, pn := range preps {
		result := r.ResolvePrepared(pn.node, pn.p, d.proj.MaxAttempts)
		errs = append(errs, result.Errors...)
		if !result.FullyResolved {
			fullyResolved = false
		}

		for _, u := range pn.node.Units {
			if u.State == namespace.StatePartiallyResolved && u.Arena != nil && u.Arena.FullyResolved() {
				if err := u.Advance(namespace.StatePartiallyResolved, namespace.StateFullyResolved); err != nil {
					errs = append(errs, err.(*diagnostics.Error))
				}
			}
		}
	}

	resolved := fullyResolved && len(errs) == 0
	if resolved {
		runLog.Printf("run %s: resolved %d unit(s) cleanly", runID, unitCount)
	} else {
		runLog.Printf("run %s: finished with %d error(s)", runID, len(errs))
	}

	return Summary{
		RunID:          runID,
		UnitCount:      unitCount,
		NamespaceCount: d.Tree.Len(),
		FullyResolved:  resolved,
		Errors:         errs,
	}
}

// advanceUnits moves every unit currently in from to to, the way
// ParseProcessor does for the parse stage — skipping (rather
// than erroring) any unit not in from, since a unit that failed an earlier
// stage never reaches PARSED and has nothing to resolve.
func advanceUnits(units []*namespace.Unit, from, to namespace.UnitState) {
	for _, u := range units {
		if u.State != from {
			continue
		}
		_ = u.Advance(from, to)
	}
}

func (d *Driver) allNodes() []*namespace.Node {
	nodes := make([]*namespace.Node, d.Tree.Len())
	for i := range nodes {
		nodes[i] = d.Tree.Node(symbols.NamespaceID(i))
	}
	return nodes
}
