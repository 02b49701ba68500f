// Package parser builds the ast.Node tree from a token stream, in the
// recursive-descent style of funvibe/funxy/internal/parser's
// expressions_core.go (curToken/peekToken/nextToken, parse-error recovery
// by skipping to a statement boundary) adapted to the toy grammar spec.md
// §6 describes: s-expression calls, built-in operations, predicates,
// lambdas, blocks, member chains, and the §6 type syntax.
package parser

import (
	"strconv"

	"github.com/quill-lang/quillc/internal/ast"
	"github.com/quill-lang/quillc/internal/config"
	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/lexer"
	"github.com/quill-lang/quillc/internal/symbols"
	"github.com/quill-lang/quillc/internal/token"
)

// MaxRecursionDepth guards against runaway parenthesis nesting the way the
// teacher's parser guards expression recursion.
const MaxRecursionDepth = 250

var opTokens = map[token.Type]ast.Operation{
	token.AND:        ast.OpAnd,
	token.OR:         ast.OpOr,
	token.NOR:        ast.OpNor,
	token.XOR:        ast.OpXor,
	token.XNOR:       ast.OpXnor,
	token.NAND:       ast.OpNand,
	token.BANG:       ast.OpNegate,
	token.PLUS:       ast.OpPlus,
	token.MINUS:      ast.OpMinus,
	token.ASTERISK:   ast.OpAsterisk,
	token.SLASH:      ast.OpSlash,
	token.CARET:      ast.OpCaret,
	token.PERCENT:    ast.OpPercent,
	token.PLUSPLUS:   ast.OpPlusPlus,
	token.MINUSMINUS: ast.OpMinusMinus,
	token.GREATER:    ast.OpGreater,
	token.LESS:       ast.OpLess,
	token.GREATEREQ:  ast.OpGreaterEqual,
	token.LESSEQ:     ast.OpLessEqual,
	token.EQUALS:     ast.OpEquals,
	token.BANGEQUAL:  ast.OpBangEqual,
	token.EQUALEQUAL: ast.OpEqualEqual,
}

// Parser consumes tokens from a Lexer and produces top-level ast.Node
// values plus an Arena holding every node's MetaData.
type Parser struct {
	lex   *lexer.Lexer
	arena *ast.Arena

	curToken  token.Token
	peekToken token.Token

	errs  []*diagnostics.Error
	depth int
}

// New constructs a Parser over source, primed on the first two tokens.
func New(source string) *Parser {
	p := &Parser{lex: lexer.New(source), arena: ast.NewArena()}
	p.nextToken()
	p.nextToken()
	return p
}

// Arena returns the MetaData arena every parsed node registered into.
func (p *Parser) Arena() *ast.Arena { return p.arena }

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []*diagnostics.Error { return p.errs }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lex.NextToken()
}

func (p *Parser) fail(tok token.Token, msg string) {
	p.errs = append(p.errs, diagnostics.New(diagnostics.ErrParse, tok, msg))
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) {
		p.nextToken()
	}
}

// expect advances past curToken if it matches t, else records a parse error
// and leaves the cursor in place for the caller's recovery strategy.
func (p *Parser) expect(t token.Type, what string) bool {
	if p.curIs(t) {
		p.nextToken()
		return true
	}
	p.fail(p.curToken, "expected "+what+", got "+p.curToken.Lexeme)
	return false
}

func (p *Parser) meta() *ast.MetaData { return p.arena.New(p.curToken.Position) }

// ParseProgram parses every top-level item until EOF, skipping blank lines
// between them.
func (p *Parser) ParseProgram() []ast.Node {
	var nodes []ast.Node
	p.skipNewlines()
	for !p.curIs(token.EOF) {
		n := p.parseTopLevel()
		if n != nil {
			nodes = append(nodes, n)
		}
		p.skipNewlines()
	}
	return nodes
}

func (p *Parser) parseTopLevel() ast.Node {
	if p.curIs(token.LET) {
		return p.parseLet()
	}
	if p.curIs(token.IDENT) && p.peekIs(token.COLONEQ) {
		return p.parseAssign()
	}
	return p.parseExpression()
}

func parseModifiers(p *Parser) symbols.Modifiers {
	var mods symbols.Modifiers
	for {
		switch p.curToken.Type {
		case token.MUT:
			mods = append(mods, symbols.Mutable)
		case token.PUB:
			mods = append(mods, symbols.Public)
		case token.CONST:
			mods = append(mods, symbols.Const)
		case token.OPT:
			mods = append(mods, symbols.Optional)
		default:
			return mods
		}
		p.nextToken()
	}
}

func (p *Parser) parseLet() ast.Node {
	tok := p.curToken
	p.nextToken() // past 'let'
	mods := parseModifiers(p)
	if !p.curIs(token.IDENT) {
		p.fail(p.curToken, "expected identifier after let")
		return nil
	}
	ident := p.curToken.Lexeme
	p.nextToken()

	var declared ast.TypeExpr
	if p.curIs(token.COLON) {
		p.nextToken()
		declared = p.parseTypeExpr()
	}
	if !p.expect(token.EQUALS, "'='") {
		p.skipToBoundary()
		return nil
	}
	rhs := p.parseExpression()
	return &ast.Let{Token: tok, Identifier: ident, Modifiers: mods, DeclaredType: declared, Assignment: rhs, Md: p.arena.New(tok.Position)}
}

func (p *Parser) parseAssign() ast.Node {
	tok := p.curToken
	target := p.curToken.Lexeme
	p.nextToken() // past ident
	p.nextToken() // past :=
	rhs := p.parseExpression()
	return &ast.Assign{Token: tok, Target: target, Assignment: rhs, Md: p.arena.New(tok.Position)}
}

// skipToBoundary recovers from a malformed statement by skipping to the
// next newline or EOF, mirroring the teacher's statement-boundary recovery.
func (p *Parser) skipToBoundary() {
	for !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) parseExpression() ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		p.fail(p.curToken, "expression too deeply nested")
		p.skipToBoundary()
		return nil
	}

	switch p.curToken.Type {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NIL:
		return p.parseLiteral()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseBlock()
	case token.LPAREN:
		return p.parseParenForm()
	case token.IDENT:
		return p.parseIdentOrChain()
	default:
		p.fail(p.curToken, "unexpected token "+p.curToken.Lexeme)
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseLiteral() ast.Expression {
	tok := p.curToken
	md := p.arena.New(tok.Position)
	var val ast.Value
	switch tok.Type {
	case token.INT:
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.fail(tok, "invalid integer literal: "+tok.Lexeme)
		}
		if n >= -(1<<31) && n < (1<<31) {
			val = ast.VI32{Val: int32(n)}
		} else {
			val = ast.VI64{Val: n}
		}
	case token.FLOAT:
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.fail(tok, "invalid float literal: "+tok.Lexeme)
		}
		val = ast.VF64{Val: f}
	case token.STRING:
		val = ast.VStr{Val: tok.Lexeme}
	case token.TRUE:
		val = ast.VBool{Val: true}
	case token.FALSE:
		val = ast.VBool{Val: false}
	case token.NIL:
		val = ast.VNil{}
	}
	p.nextToken()
	return &ast.V{Token: tok, Val: val, Md: md}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken
	md := p.arena.New(tok.Position)
	p.nextToken() // past [
	var elems []ast.Expression
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		elems = append(elems, p.parseExpression())
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RBRACKET, "']'")
	return &ast.V{Token: tok, Val: ast.VArray{Elements: elems}, Md: md}
}

func (p *Parser) parseBlock() ast.Expression {
	tok := p.curToken
	md := p.arena.New(tok.Position)
	p.nextToken() // past {
	p.skipNewlines()
	var items []ast.BlockItem
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		var item ast.BlockItem
		if p.curIs(token.LET) {
			item, _ = p.parseLet().(ast.BlockItem)
		} else if p.curIs(token.IDENT) && p.peekIs(token.COLONEQ) {
			item, _ = p.parseAssign().(ast.BlockItem)
		} else {
			item = p.parseExpression()
		}
		if item != nil {
			items = append(items, item)
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE, "'}'")
	return &ast.B{Token: tok, Items: items, Md: md}
}

// chainSegment is one bare name in a member/namespace chain, before its
// accessor kind is known: that depends on the separator leading into the
// *next* segment ("::" means this segment names a namespace to descend
// into), not the one that led into this one.
type chainSegment struct {
	tok     token.Token
	name    string
	args    []ast.Expression
	hasCall bool
}

// parseIdentOrChain parses a bare identifier, growing it into an M chain
// whenever '.' or '::' accessors follow (spec.md §3's member/access chain).
func (p *Parser) parseIdentOrChain() ast.Expression {
	tok := p.curToken
	name := p.curToken.Lexeme
	p.nextToken()

	if !p.curIs(token.DOT) && !p.curIs(token.NSSEP) {
		md := p.arena.New(tok.Position)
		return &ast.V{Token: tok, Val: ast.VIdentifier{Name: name}, Md: md}
	}

	md := p.arena.New(tok.Position)
	segs := []chainSegment{{tok: tok, name: name}}
	viaNS := []bool{} // viaNS[i]: separator between segs[i] and segs[i+1] is "::"

	for p.curIs(token.DOT) || p.curIs(token.NSSEP) {
		isNS := p.curIs(token.NSSEP)
		p.nextToken()
		if !p.curIs(token.IDENT) {
			p.fail(p.curToken, "expected identifier in access chain")
			break
		}
		partTok := p.curToken
		part := p.curToken.Lexeme
		p.nextToken()
		seg := chainSegment{tok: partTok, name: part}
		if p.curIs(token.LPAREN) {
			seg.args = p.parseArgList()
			seg.hasCall = true
		}
		viaNS = append(viaNS, isNS)
		segs = append(segs, seg)
	}

	accessors := make([]ast.Accessor, len(segs))
	for i, seg := range segs {
		switch {
		case seg.hasCall:
			accessors[i] = ast.AccFunctionCall{Token: seg.tok, Name: seg.name, Args: seg.args}
		case i < len(viaNS) && viaNS[i]:
			accessors[i] = ast.AccNamespace{Token: seg.tok, Name: seg.name}
		default:
			accessors[i] = ast.AccIdentifier{Token: seg.tok, Name: seg.name}
		}
	}
	return &ast.M{Token: tok, Accessors: accessors, Md: md}
}

func (p *Parser) parseArgList() []ast.Expression {
	p.nextToken() // past (
	var args []ast.Expression
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		args = append(args, p.parseExpression())
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RPAREN, "')'")
	return args
}

// parseParenForm disambiguates the five shapes a parenthesized expression
// can take: a built-in operation "(+ a b)", a predicate "(cond -> then :
// else)", a lambda "(=> |params| body)" / "(|params| body)", a plain
// s-expression call "(callee arg...)", or a grouped sub-expression "(expr)".
func (p *Parser) parseParenForm() ast.Expression {
	tok := p.curToken
	md := p.arena.New(tok.Position)
	p.nextToken() // past (

	if op, ok := opTokens[p.curToken.Type]; ok {
		return p.parseOperation(tok, md, op)
	}
	if p.curIs(token.IDENT) && p.curToken.Lexeme == "list" {
		p.nextToken()
		return p.parseListOperation(tok, md)
	}
	if p.curIs(token.ARROW) || p.curIs(token.PIPE) {
		return p.parseLambda(tok, md)
	}

	first := p.parseExpression()
	if p.curIs(token.DASHARROW) {
		return p.parsePredicateThen(tok, md, first)
	}
	if p.curIs(token.COLON) {
		return p.parsePredicateCoalesce(tok, md, first)
	}
	if p.curIs(token.RPAREN) {
		p.nextToken()
		return first
	}

	var operands []ast.Expression
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		operands = append(operands, p.parseExpression())
	}
	p.expect(token.RPAREN, "')'")
	return &ast.S{Token: tok, Operator: first, Operands: operands, Md: md}
}

func (p *Parser) parseOperation(tok token.Token, md *ast.MetaData, op ast.Operation) ast.Expression {
	p.nextToken() // past operator token
	var operands []ast.Expression
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		operands = append(operands, p.parseExpression())
	}
	p.expect(token.RPAREN, "')'")
	return &ast.O{Token: tok, Op: op, Operands: operands, Md: md}
}

func (p *Parser) parseListOperation(tok token.Token, md *ast.MetaData) ast.Expression {
	var operands []ast.Expression
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		operands = append(operands, p.parseExpression())
	}
	p.expect(token.RPAREN, "')'")
	return &ast.O{Token: tok, Op: ast.OpList, Operands: operands, Md: md}
}

func (p *Parser) parsePredicateThen(tok token.Token, md *ast.MetaData, cond ast.Expression) ast.Expression {
	p.nextToken() // past ->
	then := p.parseExpression()
	var elseExpr ast.Expression
	if p.curIs(token.COLON) {
		p.nextToken()
		elseExpr = p.parseExpression()
	}
	p.expect(token.RPAREN, "')'")
	kind := ast.Match
	if elseExpr != nil {
		kind = ast.ThenElse
	}
	return &ast.P{Token: tok, Cond: cond, Form: ast.PredicateForm{Kind: kind, Then: then, Else: elseExpr}, Md: md}
}

func (p *Parser) parsePredicateCoalesce(tok token.Token, md *ast.MetaData, cond ast.Expression) ast.Expression {
	p.nextToken() // past :
	elseExpr := p.parseExpression()
	p.expect(token.RPAREN, "')'")
	return &ast.P{Token: tok, Cond: cond, Form: ast.PredicateForm{Kind: ast.Coalesce, Else: elseExpr}, Md: md}
}

func (p *Parser) parseLambda(tok token.Token, md *ast.MetaData) ast.Expression {
	isForm := true
	var retType ast.TypeExpr
	if p.curIs(token.ARROW) {
		isForm = false
		p.nextToken()
		if p.curIs(token.COLON) {
			p.nextToken()
			retType = p.parseTypeExpr()
		}
	}
	if !p.expect(token.PIPE, "'|'") {
		p.skipToBoundary()
		return nil
	}
	var params []*ast.Parameter
	for !p.curIs(token.PIPE) && !p.curIs(token.EOF) {
		params = append(params, p.parseParameter())
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.PIPE, "'|'")
	body := p.parseExpression()
	p.expect(token.RPAREN, "')'")
	return &ast.L{Token: tok, Params: params, ReturnType: retType, Body: body, IsForm: isForm, Md: md}
}

func (p *Parser) parseParameter() *ast.Parameter {
	tok := p.curToken
	mods := parseModifiers(p)
	ident := p.curToken.Lexeme
	if !p.curIs(token.IDENT) {
		p.fail(p.curToken, "expected parameter name")
		if !p.curIs(token.EOF) {
			p.nextToken()
		}
	} else {
		p.nextToken()
	}
	var declared ast.TypeExpr
	if p.curIs(token.COLON) {
		p.nextToken()
		declared = p.parseTypeExpr()
	}
	return &ast.Parameter{Token: tok, Modifiers: mods, Identifier: ident, DeclaredType: declared, Meta: p.arena.New(tok.Position)}
}

// parseTypeExpr parses the §6 type syntax: a bare name, or Array<T>,
// Tuple<T1,T2,...>, Fn<P1,P2,...;R>.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	if !p.curIs(token.IDENT) && !p.curIs(token.NIL) {
		p.fail(p.curToken, "expected type name")
		if !p.curIs(token.EOF) {
			p.nextToken()
		}
		return nil
	}
	name := p.curToken.Lexeme
	if p.curIs(token.NIL) {
		name = "Nil"
	}
	p.nextToken()

	if !p.curIs(token.LESS) {
		return ast.NamedType{Name: name}
	}
	p.nextToken() // past <

	switch name {
	case config.ArrayTypeName:
		elem := p.parseTypeExpr()
		p.expect(token.GREATER, "'>'")
		return ast.ArrayType{Elem: elem}
	case config.TupleTypeName:
		var members []ast.TypeExpr
		for !p.curIs(token.GREATER) && !p.curIs(token.EOF) {
			members = append(members, p.parseTypeExpr())
			if p.curIs(token.COMMA) {
				p.nextToken()
			}
		}
		p.expect(token.GREATER, "'>'")
		return ast.TupleType{Members: members}
	case config.FnTypeName:
		var params []ast.TypeExpr
		for !p.curIs(token.SEMICOLON) && !p.curIs(token.GREATER) && !p.curIs(token.EOF) {
			params = append(params, p.parseTypeExpr())
			if p.curIs(token.COMMA) {
				p.nextToken()
			}
		}
		var ret ast.TypeExpr
		if p.curIs(token.SEMICOLON) {
			p.nextToken()
			ret = p.parseTypeExpr()
		}
		p.expect(token.GREATER, "'>'")
		return ast.FnType{Params: params, Ret: ret}
	default:
		for !p.curIs(token.GREATER) && !p.curIs(token.EOF) {
			p.nextToken()
		}
		p.expect(token.GREATER, "'>'")
		return ast.NamedType{Name: name}
	}
}
