// Package pipeline drives one unit through Read -> Lex+Parse -> Resolve,
// in the teacher's Processor/PipelineContext shape (funvibe-funxy/internal/
// parser/processor.go, internal/analyzer/processor.go): a small context
// struct threaded through a sequence of single-purpose stages, continuing
// past a stage's errors so later stages can still contribute diagnostics.
package pipeline

import (
	"os"

	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/namespace"
	"github.com/quill-lang/quillc/internal/parser"
)

// PipelineContext carries one Unit through the Read/Lex/Parse stages. Unlike
// the teacher's single-file ctx, Unit is the actual state holder (so the
// Driver can inspect it again after the pipeline finishes); the context just
// accumulates the errors this run produced.
type PipelineContext struct {
	Unit   *namespace.Unit
	Errors []*diagnostics.Error
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline is an ordered sequence of Processors.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline from processors, run in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run threads initialCtx through every stage, continuing even if a stage
// appended errors (e.g. a caller driving an LSP wants both parse and
// resolution diagnostics from a single pass).
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	return ctx
}

// ReadProcessor loads a unit's source text from disk and advances it
// INIT -> READ.
type ReadProcessor struct{}

func (ReadProcessor) Process(ctx *PipelineContext) *PipelineContext {
	u := ctx.Unit
	data, err := os.ReadFile(u.Path)
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.Internal("reading "+u.Path+": "+err.Error()))
		return ctx
	}
	u.Text = string(data)
	if advErr := u.Advance(namespace.StateInit, namespace.StateRead); advErr != nil {
		ctx.Errors = append(ctx.Errors, advErr.(*diagnostics.Error))
	}
	return ctx
}

// ParseProcessor lexes and parses a unit's text in one stage — the toy
// grammar is simple enough that splitting lex/parse into separate
// pipeline stages would just mean re-threading a token slice between them
// for no benefit. Advances READ -> LEXED -> PARSED.
type ParseProcessor struct{}

func (ParseProcessor) Process(ctx *PipelineContext) *PipelineContext {
	u := ctx.Unit
	if u.State != namespace.StateRead {
		return ctx
	}
	if err := u.Advance(namespace.StateRead, namespace.StateLexed); err != nil {
		ctx.Errors = append(ctx.Errors, err.(*diagnostics.Error))
		return ctx
	}

	p := parser.New(u.Text)
	nodes := p.ParseProgram()
	u.RootExpressions = nodes
	u.Arena = p.Arena()
	ctx.Errors = append(ctx.Errors, p.Errors()...)

	if err := u.Advance(namespace.StateLexed, namespace.StateParsed); err != nil {
		ctx.Errors = append(ctx.Errors, err.(*diagnostics.Error))
	}
	return ctx
}

// runUnit runs Read and Parse over one unit, records the errors produced
// onto the unit itself (so a later pass over the tree can collect them
// without re-threading a return value), and returns them too.
func runUnit(u *namespace.Unit) []*diagnostics.Error {
	pl := New(ReadProcessor{}, ParseProcessor{})
	ctx := pl.Run(&PipelineContext{Unit: u})
	u.Errors = append(u.Errors, ctx.Errors...)
	return ctx.Errors
}
