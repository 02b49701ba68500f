package namespace

import (
	"github.com/quill-lang/quillc/internal/ast"
	"github.com/quill-lang/quillc/internal/diagnostics"
)

// UnitState is the per-unit compilation state machine (spec.md §4.5,
// §4.6): INIT -> READ -> LEXED -> PARSED -> PARTIALLY_RESOLVED ->
// FULLY_RESOLVED. A transform asserts its input state and never downgrades
// it.
type UnitState int

const (
	StateInit UnitState = iota
	StateRead
	StateLexed
	StateParsed
	StatePartiallyResolved
	StateFullyResolved
)

func (s UnitState) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRead:
		return "READ"
	case StateLexed:
		return "LEXED"
	case StateParsed:
		return "PARSED"
	case StatePartiallyResolved:
		return "PARTIALLY_RESOLVED"
	case StateFullyResolved:
		return "FULLY_RESOLVED"
	default:
		return "?"
	}
}

// Unit is one source file in one stage of the compile pipeline. Text is
// populated by the READ transform; RootExpressions by PARSED; Errors
// accumulate across any stage without blocking the others from reporting
// (mirrors the teacher's "continue on errors to collect diagnostics from
// all stages").
type Unit struct {
	Path            string
	Text            string
	State           UnitState
	Arena           *ast.Arena
	RootExpressions []ast.Node
	Errors          []*diagnostics.Error
}

// Advance asserts the unit is currently in `from` and moves it to `to`,
// refusing any transition that would downgrade state (spec.md §4.5).
func (u *Unit) Advance(from, to UnitState) error {
	if u.State != from {
		return diagnostics.Internal("unit " + u.Path + ": expected state " + from.String() + ", found " + u.State.String())
	}
	if to < from {
		return diagnostics.Internal("unit " + u.Path + ": refusing to downgrade state " + from.String() + " -> " + to.String())
	}
	u.State = to
	return nil
}
