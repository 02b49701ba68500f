package symbols_test

import (
	"testing"

	"github.com/quill-lang/quillc/internal/symbols"
)

func TestDefineThenLookupLocal(t *testing.T) {
	tbl := symbols.New(symbols.NamespaceID(0))
	err := tbl.Define(0, "x", symbols.SymbolData{Identifier: "x", Kind: symbols.Field})
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	ref, ok := tbl.LookupLocal(0, "x")
	if !ok {
		t.Fatalf("expected to find x")
	}
	data, resolved := ref.Data()
	if !resolved || data.Identifier != "x" {
		t.Fatalf("got data=%+v resolved=%v", data, resolved)
	}
	if data.Scope.Namespace != 0 || data.Scope.Scope != 0 {
		t.Fatalf("Define should stamp Scope onto the data, got %+v", data.Scope)
	}
}

func TestDefineDuplicateResolvedIsError(t *testing.T) {
	tbl := symbols.New(symbols.NamespaceID(0))
	if err := tbl.Define(0, "x", symbols.SymbolData{Identifier: "x"}); err != nil {
		t.Fatalf("first Define: %v", err)
	}
	err := tbl.Define(0, "x", symbols.SymbolData{Identifier: "x"})
	if err != symbols.ErrDuplicateSymbol {
		t.Fatalf("got %v, want ErrDuplicateSymbol", err)
	}
}

func TestGetStubThenDefineFillsSamePointer(t *testing.T) {
	tbl := symbols.New(symbols.NamespaceID(0))
	stub := tbl.GetStub(0, "y")
	if stub.IsResolved() {
		t.Fatalf("fresh stub should be unresolved")
	}
	if err := tbl.Define(0, "y", symbols.SymbolData{Identifier: "y"}); err != nil {
		t.Fatalf("Define over existing stub: %v", err)
	}
	if !stub.IsResolved() {
		t.Fatalf("the original stub pointer should observe the later Define")
	}
}

func TestLookupWalksScopeChainInnermostFirst(t *testing.T) {
	tbl := symbols.New(symbols.NamespaceID(0))
	_ = tbl.Define(0, "x", symbols.SymbolData{Identifier: "x", Line: 1})
	_ = tbl.Define(1, "x", symbols.SymbolData{Identifier: "x", Line: 2})

	ref, ok := tbl.Lookup([]symbols.ScopeID{0, 1}, "x")
	if !ok {
		t.Fatalf("expected lookup to find x")
	}
	data, _ := ref.Data()
	if data.Line != 2 {
		t.Fatalf("expected innermost scope's declaration (line 2), got line %d", data.Line)
	}

	ref, ok = tbl.Lookup([]symbols.ScopeID{0}, "x")
	if !ok || func() int { d, _ := ref.Data(); return d.Line }() != 1 {
		t.Fatalf("expected outer scope's declaration when inner scope isn't on the chain")
	}
}

func TestLookupMissingIdentifier(t *testing.T) {
	tbl := symbols.New(symbols.NamespaceID(0))
	if _, ok := tbl.Lookup([]symbols.ScopeID{0}, "nope"); ok {
		t.Fatalf("expected lookup miss")
	}
}

func TestModifiersHas(t *testing.T) {
	mods := symbols.Modifiers{symbols.Mutable, symbols.Public}
	if !mods.Has(symbols.Mutable) || !mods.Has(symbols.Public) {
		t.Fatalf("expected both modifiers present")
	}
	if mods.Has(symbols.Const) {
		t.Fatalf("did not expect Const")
	}
}
