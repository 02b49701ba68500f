// Package diagnostics defines the error taxonomy surfaced across the
// resolver core: ParseError passthrough, ResolutionError, NamespaceError
// and InternalError, per spec.md §7.
package diagnostics

import (
	"fmt"

	"github.com/quill-lang/quillc/internal/token"
)

// Code is a stable identifier for one diagnostic kind, in the spirit of the
// teacher's ErrA001/ErrP001 families.
type Code string

const (
	// ParseError — surfaced unchanged from the lexer/parser collaborators.
	ErrParse Code = "P001"

	// ResolutionError family.
	ErrUnresolvedSymbol Code = "R001"
	ErrDuplicateSymbol  Code = "R002"
	ErrTypeMismatch     Code = "R003"
	ErrInvalidAssignment Code = "R004"
	ErrInvalidOperation Code = "R005"
	ErrInvalidParameter Code = "R006"
	ErrInvalidSymbol    Code = "R007"
	ErrCircularDependency Code = "R008"

	// NamespaceError family.
	ErrInvalidPath      Code = "N001"
	ErrPathNotFound     Code = "N002"
	ErrCircularReference Code = "N003"

	// InternalError — unreachable/invariant-violation, location -1,-1.
	ErrInternal Code = "I001"
)

// Kind groups codes into the four taxonomy buckets named by spec.md §7.
type Kind int

const (
	KindParse Kind = iota
	KindResolution
	KindNamespace
	KindInternal
)

func (c Code) Kind() Kind {
	switch c {
	case ErrParse:
		return KindParse
	case ErrInvalidPath, ErrPathNotFound, ErrCircularReference:
		return KindNamespace
	case ErrInternal:
		return KindInternal
	default:
		return KindResolution
	}
}

// Error is the single error type returned by every resolver operation. It
// always carries a line/column (InternalError uses token.NoPosition).
type Error struct {
	Code     Code
	Position token.Position
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: [%s] %s", e.Position.Line, e.Position.Column, e.Code, e.Message)
}

// New builds a diagnostic anchored at tok's position.
func New(code Code, tok token.Token, message string) *Error {
	return &Error{Code: code, Position: tok.Position, Message: message}
}

// NewAt builds a diagnostic anchored at an explicit position, for callers
// that don't have a token handy (e.g. resolution of synthesized nodes).
func NewAt(code Code, pos token.Position, message string) *Error {
	return &Error{Code: code, Position: pos, Message: message}
}

// Internal builds an InternalError at the -1,-1 sentinel location.
func Internal(message string) *Error {
	return &Error{Code: ErrInternal, Position: token.NoPosition, Message: message}
}

// Wrap re-tags a collaborator's parse error (already line/column-bearing) as
// a ParseError without losing its message, so it can travel through the
// same diagnostic channel as resolution errors (spec.md §7: "ParseError —
// surfaced unchanged").
func Wrap(err error, pos token.Position) *Error {
	return &Error{Code: ErrParse, Position: pos, Message: err.Error()}
}

// UnresolvedSymbol — identifier has no visible declaration.
func UnresolvedSymbol(tok token.Token, name string) *Error {
	return New(ErrUnresolvedSymbol, tok, fmt.Sprintf("unresolved symbol: %s", name))
}

// DuplicateSymbol — a resolved declaration already occupies this key.
func DuplicateSymbol(tok token.Token, name string) *Error {
	return New(ErrDuplicateSymbol, tok, fmt.Sprintf("duplicate symbol: %s", name))
}

// TypeMismatch — expected/actual type strings, pre-rendered by the caller.
func TypeMismatch(tok token.Token, expected, actual string) *Error {
	return New(ErrTypeMismatch, tok, fmt.Sprintf("type mismatch: expected %s, got %s", expected, actual))
}

// InvalidAssignment — the ErrInvalidAssignment taxonomy member. The
// resolver reports reassignment to an immutable binding as InvalidOperation
// instead and has no caller of this constructor.
func InvalidAssignment(tok token.Token, reason string) *Error {
	return New(ErrInvalidAssignment, tok, reason)
}

// InvalidOperation — an O-node whose operands don't satisfy its op category.
func InvalidOperation(tok token.Token, op, reason string) *Error {
	return New(ErrInvalidOperation, tok, fmt.Sprintf("%s: %s", op, reason))
}

// InvalidParameter — malformed lambda/function parameter.
func InvalidParameter(tok token.Token, reason string) *Error {
	return New(ErrInvalidParameter, tok, reason)
}

// InvalidSymbol — e.g. qualified lookup into a non-public declaration.
func InvalidSymbol(tok token.Token, reason string) *Error {
	return New(ErrInvalidSymbol, tok, reason)
}

// CircularDependency — forward-reference resolution order forms a true
// cycle (open question #5; see SPEC_FULL.md).
func CircularDependency(tok token.Token, chain []string) *Error {
	return New(ErrCircularDependency, tok, fmt.Sprintf("circular dependency: %v", chain))
}

// InvalidPath — malformed dotted namespace path.
func InvalidPath(path string) *Error {
	return NewAt(ErrInvalidPath, token.NoPosition, fmt.Sprintf("invalid namespace path: %q", path))
}

// PathNotFound — resolvePath found no such namespace.
func PathNotFound(path string) *Error {
	return NewAt(ErrPathNotFound, token.NoPosition, fmt.Sprintf("namespace not found: %q", path))
}

// CircularReferenceNS — namespace tree construction detected a symlink/
// self-referential directory cycle.
func CircularReferenceNS(path string) *Error {
	return NewAt(ErrCircularReference, token.NoPosition, fmt.Sprintf("circular namespace reference at: %q", path))
}
