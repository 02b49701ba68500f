package env_test

import (
	"testing"

	"github.com/quill-lang/quillc/internal/env"
	"github.com/quill-lang/quillc/internal/namespace"
	"github.com/quill-lang/quillc/internal/symbols"
)

func newTestEnv() *env.ModuleEnv {
	tbl := symbols.New(symbols.NamespaceID(0))
	return env.New(symbols.NamespaceID(0), tbl, func(string) (*namespace.Node, bool) { return nil, false }, nil)
}

func TestDefineAndLookupAtGlobalScope(t *testing.T) {
	e := newTestEnv()
	if err := e.Define("x", symbols.SymbolData{Identifier: "x"}); err != nil {
		t.Fatalf("Define: %v", err)
	}
	ref, ok := e.Lookup("x")
	if !ok {
		t.Fatalf("expected to find x")
	}
	if data, _ := ref.Data(); data.Identifier != "x" {
		t.Fatalf("got %+v", data)
	}
}

func TestEnterScopePushesAndExitScopePops(t *testing.T) {
	e := newTestEnv()
	id := e.EnterScope()
	if id != 1 {
		t.Fatalf("first allocated scope id should be 1 (0 is global), got %d", id)
	}
	if err := e.Define("y", symbols.SymbolData{Identifier: "y"}); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if _, ok := e.Lookup("y"); !ok {
		t.Fatalf("expected y visible inside its own scope")
	}
	if err := e.ExitScope(); err != nil {
		t.Fatalf("ExitScope: %v", err)
	}
	if _, ok := e.Lookup("y"); ok {
		t.Fatalf("y should no longer be visible after leaving its scope")
	}
}

func TestExitScopeRefusesToPopGlobal(t *testing.T) {
	e := newTestEnv()
	if err := e.ExitScope(); err != symbols.ErrCannotPopGlobalScope {
		t.Fatalf("got %v, want ErrCannotPopGlobalScope", err)
	}
}

func TestPushScopeReplaysAnAlreadyAssignedId(t *testing.T) {
	e := newTestEnv()
	first := e.EnterScope()
	_ = e.ExitScope()
	e.ResetScopeCounter()
	e.PushScope(first)
	if e.CurrentNsScope().Scope != first {
		t.Fatalf("PushScope should land on the replayed id %d, got %d", first, e.CurrentNsScope().Scope)
	}
}

func TestStackSnapshotAndRestore(t *testing.T) {
	e := newTestEnv()
	e.EnterScope()
	snap := e.StackSnapshot()
	e.EnterScope()
	e.RestoreStack(snap)
	if len(snap) != 2 {
		t.Fatalf("expected snapshot depth 2, got %d", len(snap))
	}
	if e.CurrentNsScope().Scope != snap[len(snap)-1] {
		t.Fatalf("RestoreStack should put the stack back exactly as snapshotted")
	}
}

func TestSetGlobalOnly(t *testing.T) {
	e := newTestEnv()
	e.EnterScope()
	e.EnterScope()
	e.SetGlobalOnly()
	if e.CurrentNsScope().Scope != 0 {
		t.Fatalf("SetGlobalOnly should leave only scope 0 on the stack")
	}
}

func TestLookupNamespaceAndGlobalDefaultToMiss(t *testing.T) {
	e := newTestEnv()
	if _, ok := e.LookupNamespace("anything"); ok {
		t.Fatalf("a NamespaceLookup closure that always misses should make LookupNamespace miss")
	}
	if _, ok := e.LookupGlobal(symbols.NamespaceID(0), "anything"); ok {
		t.Fatalf("a nil GlobalLookup closure should always miss")
	}
}
