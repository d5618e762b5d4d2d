// Package parser builds an AST from a token stream using a small
// precedence-climbing (Pratt-style) expression parser, the same shape
// as the teacher's recursive-descent parser but over the grammar of
// spec.md §4.2.
package parser

import (
	"github.com/vexlang/vex/internal/ast"
	"github.com/vexlang/vex/internal/lexer"
	"github.com/vexlang/vex/internal/token"
	"github.com/vexlang/vex/internal/vexerr"
)

// Operator precedence levels, lowest to highest.
const (
	LOWEST = iota
	orPrec
	andPrec
	equality
	comparison
	sum
	product
)

func precedenceOf(t token.Type) int {
	switch t {
	case token.OR:
		return orPrec
	case token.AND:
		return andPrec
	case token.EQ, token.NOT_EQ, token.IN:
		return equality
	case token.LT, token.LT_EQ, token.GT, token.GT_EQ:
		return comparison
	case token.PLUS, token.MINUS:
		return sum
	case token.ASTERISK, token.SLASH, token.PERCENT:
		return product
	default:
		return LOWEST
	}
}

func isAssignOp(t token.Type) bool {
	switch t {
	case token.ASSIGN, token.LOCAL, token.RETURN_EQ,
		token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.PERCENT_EQ:
		return true
	default:
		return false
	}
}

// Parser turns a token stream into an *ast.Program. It keeps a 2-token
// lookahead buffer (cur, peek) and accumulates ParseError/LexError
// diagnostics instead of stopping at the first one, so a caller can
// report every problem in a source file at once.
type Parser struct {
	lex      *lexer.Lexer
	cur      token.Token
	peek     token.Token
	jsonOnly bool
	errs     []*vexerr.Error
}

// New creates a Parser over src. jsonOnly mirrors Config.JSONOnly
// (spec.md §6.2): the program must be exactly one array or object
// value and nothing else.
func New(src string, jsonOnly bool) *Parser {
	p := &Parser{lex: lexer.New(src), jsonOnly: jsonOnly}
	p.advance()
	p.advance()
	return p
}

// Parse parses the whole program, returning every diagnostic
// accumulated along the way (lexical and syntactic).
func Parse(src string, jsonOnly bool) (*ast.Program, []*vexerr.Error) {
	return New(src, jsonOnly).Parse()
}

func (p *Parser) advance() {
	p.cur = p.peek
	tok, err := p.lex.Next()
	if err != nil {
		p.errs = append(p.errs, vexerr.Lex(err.Pos, "%s", err.Message))
		p.peek = token.Token{Type: token.EOF, Pos: err.Pos}
		return
	}
	p.peek = tok
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errs = append(p.errs, vexerr.Parse(pos, format, args...))
}

func (p *Parser) expect(tt token.Type, msg string) {
	if p.cur.Type != tt {
		p.errorf(p.cur.Pos, "%s (got %s)", msg, p.cur.Type.String())
	}
}

func (p *Parser) skipTerm() {
	for p.cur.Type == token.NEWLINE || p.cur.Type == token.SEMI || p.cur.Type == token.COMMA {
		p.advance()
	}
}

func (p *Parser) skipNL() {
	for p.cur.Type == token.NEWLINE {
		p.advance()
	}
}

// Parse runs the parser to completion.
func (p *Parser) Parse() (*ast.Program, []*vexerr.Error) {
	prog := &ast.Program{JSONOnly: p.jsonOnly}

	if p.jsonOnly {
		p.skipTerm()
		if p.cur.Type == token.EOF {
			return prog, p.errs
		}
		tok := p.cur
		expr := p.parseExpression(LOWEST)
		switch expr.(type) {
		case *ast.Array, *ast.Block:
		default:
			p.errorf(tok.Pos, "json_only mode requires the program to be a single array or object value")
		}
		prog.Statements = append(prog.Statements, exprToStatement(expr, tok))
		p.skipTerm()
		if p.cur.Type != token.EOF {
			p.errorf(p.cur.Pos, "unexpected content after the top-level value in json_only mode")
		}
		return prog, p.errs
	}

	p.skipTerm()
	for p.cur.Type != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			if _, blank := stmt.(*ast.BlankStatement); !blank {
				prog.Statements = append(prog.Statements, stmt)
			}
		}
		p.skipTerm()
	}
	return prog, p.errs
}

func exprToStatement(expr ast.Expression, tok token.Token) ast.Statement {
	if b, ok := expr.(*ast.Block); ok && b.Entries != nil {
		return &ast.ExpressionStatement{Token: tok, Expr: expr}
	}
	if s, ok := expr.(ast.Statement); ok {
		return s
	}
	return &ast.ExpressionStatement{Token: tok, Expr: expr}
}

func asAssignTarget(expr ast.Expression) (*ast.Get, bool) {
	switch e := expr.(type) {
	case *ast.Get:
		return e, true
	case *ast.Identifier:
		return &ast.Get{Token: e.Token, Base: e, Members: nil}, true
	default:
		return nil, false
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.EOF:
		return nil
	case token.NEWLINE, token.SEMI:
		tok := p.cur
		p.advance()
		return &ast.BlankStatement{Token: tok}
	case token.BREAK, token.CONTINUE:
		tok := p.cur
		p.advance()
		return &ast.Keyword{Token: tok}
	case token.RETURN:
		return p.parseReturn()
	case token.FUNCTION:
		tok := p.cur
		return p.parseFunctionOrClass(tok, token.FUNCTION)
	case token.CLASS:
		tok := p.cur
		return p.parseFunctionOrClass(tok, token.CLASS)
	case token.IDENT:
		if p.cur.Literal == "remove" && p.peek.Type == token.LPAREN {
			return p.parseRemove()
		}
		return p.parseExprStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseExprStatement() ast.Statement {
	tok := p.cur
	expr := p.parseExpression(LOWEST)
	if target, ok := asAssignTarget(expr); ok && isAssignOp(p.cur.Type) {
		opTok := p.cur
		p.advance()
		p.skipNL()
		val := p.parseExpression(LOWEST)
		return &ast.Set{Token: opTok, Target: target, Operator: opTok.Literal, Value: val}
	}
	return exprToStatement(expr, tok)
}

func (p *Parser) parseRemove() *ast.Remove {
	tok := p.cur // the "remove" identifier
	p.advance()
	p.expect(token.LPAREN, "expected '(' after remove")
	p.advance()
	target := p.parseExpression(LOWEST)
	get, ok := asAssignTarget(target)
	if !ok {
		p.errorf(tok.Pos, "remove requires a member-chain target")
		get = &ast.Get{Token: tok}
	}
	p.expect(token.RPAREN, "expected ')' to close remove(...)")
	p.advance()
	return &ast.Remove{Token: tok, Target: get}
}

func (p *Parser) parseReturn() *ast.Return {
	tok := p.cur
	p.advance()
	p.expect(token.LPAREN, "expected '(' after return")
	p.advance()
	var val ast.Expression
	if p.cur.Type != token.RPAREN {
		val = p.parseExpression(LOWEST)
	}
	p.expect(token.RPAREN, "expected ')' to close return(...)")
	p.advance()
	return &ast.Return{Token: tok, Value: val}
}

func (p *Parser) parseParameterList() []*ast.Parameter {
	p.expect(token.LPAREN, "expected '(' to start parameter list")
	p.advance()
	params := []*ast.Parameter{}
	if p.cur.Type == token.RPAREN {
		p.advance()
		return params
	}
	for {
		modifier := ast.ParamValue
		switch p.cur.Type {
		case token.FUNCTION:
			modifier = ast.ParamFunction
			p.advance()
		case token.REFERENCE:
			modifier = ast.ParamReference
			p.advance()
		}
		if p.cur.Type != token.IDENT {
			p.errorf(p.cur.Pos, "expected parameter name")
			break
		}
		tok := p.cur
		params = append(params, &ast.Parameter{Token: tok, Name: tok.Literal, Modifier: modifier})
		p.advance()
		if p.cur.Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN, "expected ')' to close parameter list")
	p.advance()
	return params
}

func (p *Parser) parseFunctionOrClass(tok token.Token, kind token.Type) *ast.Callee {
	p.advance() // consume 'function'/'class'
	name := ""
	if p.cur.Type == token.IDENT {
		name = p.cur.Literal
		p.advance()
	}
	params := p.parseParameterList()

	var blockType ast.BlockType
	switch {
	case kind == token.CLASS:
		blockType = ast.ClassConstructor
	case name == "":
		blockType = ast.AnonymousFunction
	default:
		blockType = ast.PureFunction
	}

	if p.cur.Type != token.LBRACE {
		p.errorf(p.cur.Pos, "expected '{' to start function body")
		return &ast.Callee{Token: tok, Name: name, Parameters: params, Body: &ast.Block{Token: p.cur, Type: blockType}}
	}
	body := p.parseBraceStatements(blockType)
	return &ast.Callee{Token: tok, Name: name, Parameters: params, Body: body}
}

// parseBraceStatements consumes a '{' ... '}' statement sequence,
// used for function/class bodies and for any `{ ... }` appearing in
// expression position that doesn't look like an object literal.
func (p *Parser) parseBraceStatements(blockType ast.BlockType) *ast.Block {
	tok := p.cur
	p.advance() // consume '{'
	blk := p.parseLexicalBlockFrom(tok)
	blk.Type = blockType
	return blk
}

func (p *Parser) parseLexicalBlockFrom(tok token.Token) *ast.Block {
	stmts := []ast.Statement{}
	p.skipTerm()
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		s := p.parseStatement()
		if s != nil {
			if _, blank := s.(*ast.BlankStatement); !blank {
				stmts = append(stmts, s)
			}
		}
		p.skipTerm()
	}
	p.expect(token.RBRACE, "expected '}' to close block")
	p.advance()
	return &ast.Block{Token: tok, Type: ast.LexicalBlock, Statements: stmts}
}

// parseBraceExpr handles a '{' encountered in expression/primary
// position. It is a JSON object literal when the first entry looks
// like `key:`; otherwise it's a brace-delimited statement sequence
// (e.g. the body passed to if/while/do/for).
func (p *Parser) parseBraceExpr() ast.Expression {
	tok := p.cur // '{'
	p.advance()
	p.skipNL()
	if p.cur.Type == token.RBRACE {
		p.advance()
		return &ast.Block{Token: tok, Type: ast.LexicalBlock, Entries: []ast.BlockEntry{}}
	}
	if (p.cur.Type == token.IDENT || p.cur.Type == token.STRING) && p.peek.Type == token.LOCAL {
		return p.parseObjectEntries(tok)
	}
	return p.parseLexicalBlockFrom(tok)
}

func (p *Parser) parseObjectEntries(tok token.Token) *ast.Block {
	entries := []ast.BlockEntry{}
	for {
		if p.cur.Type != token.IDENT && p.cur.Type != token.STRING {
			p.errorf(p.cur.Pos, "expected an object key")
			break
		}
		key := p.cur.Literal
		p.advance()
		p.expect(token.LOCAL, "expected ':' after object key")
		p.advance()
		p.skipNL()
		val := p.parseExpression(LOWEST)
		entries = append(entries, ast.BlockEntry{Key: key, Value: val})
		p.skipNL()
		if p.cur.Type == token.COMMA {
			p.advance()
			p.skipNL()
			if p.cur.Type == token.RBRACE {
				break
			}
			continue
		}
		break
	}
	p.skipNL()
	p.expect(token.RBRACE, "expected '}' to close object literal")
	p.advance()
	return &ast.Block{Token: tok, Type: ast.LexicalBlock, Entries: entries}
}

func (p *Parser) parseArrayLiteral() *ast.Array {
	tok := p.cur
	p.advance()
	p.skipNL()
	vals := []ast.Expression{}
	if p.cur.Type != token.RBRACKET {
		for {
			vals = append(vals, p.parseExpression(LOWEST))
			p.skipNL()
			if p.cur.Type == token.COMMA {
				p.advance()
				p.skipNL()
				if p.cur.Type == token.RBRACKET {
					break
				}
				continue
			}
			break
		}
	}
	p.skipNL()
	p.expect(token.RBRACKET, "expected ']' to close array literal")
	p.advance()
	return &ast.Array{Token: tok, Values: vals}
}

// parseExpression implements precedence climbing: only operators with
// a precedence strictly above minPrec are consumed here, which
// makes left-associativity fall out of the recursive call using the
// operator's own precedence rather than precedence+1.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parseUnary()
	for {
		prec := precedenceOf(p.cur.Type)
		if prec <= minPrec {
			break
		}
		opTok := p.cur
		p.advance()
		p.skipNL()
		right := p.parseExpression(prec)
		left = &ast.Binary{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.cur.Type {
	case token.NOT, token.MINUS, token.PLUS:
		tok := p.cur
		p.advance()
		right := p.parseUnary()
		return &ast.Unary{Token: tok, Operator: tok.Literal, Right: right}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expression {
	base := p.parseAtom()
	var members []ast.Member
	for {
		switch p.cur.Type {
		case token.DOT:
			p.advance()
			switch p.cur.Type {
			case token.IDENT:
				members = append(members, ast.Member{Key: p.cur.Literal, IsKey: true})
				p.advance()
			case token.INT:
				idxTok := p.cur
				p.advance()
				members = append(members, ast.Member{Index: &ast.Literal{Token: idxTok, Kind: token.INT}})
			default:
				p.errorf(p.cur.Pos, "expected a member name or index after '.'")
				return p.finishGet(base, members)
			}
		case token.LBRACKET:
			p.advance()
			idx := p.parseExpression(LOWEST)
			p.expect(token.RBRACKET, "expected ']' to close index expression")
			p.advance()
			members = append(members, ast.Member{Index: idx})
		case token.LPAREN:
			if ident, ok := base.(*ast.Identifier); ok {
				var target ast.Expression = ident
				if len(members) > 0 {
					target = &ast.Get{Token: ident.Token, Base: ident, Members: members}
				}
				return p.parseCallArgs(target)
			}
			return p.finishGet(base, members)
		default:
			return p.finishGet(base, members)
		}
	}
}

func (p *Parser) finishGet(base ast.Expression, members []ast.Member) ast.Expression {
	if len(members) == 0 {
		return base
	}
	ident, ok := base.(*ast.Identifier)
	if !ok {
		p.errorf(base.Pos(), "member access requires an identifier base")
		return base
	}
	return &ast.Get{Token: ident.Token, Base: ident, Members: members}
}

func (p *Parser) parseCallArgs(target ast.Expression) *ast.Call {
	tok := p.cur // '('
	p.advance()
	p.skipNL()
	args := []ast.Expression{}
	if p.cur.Type != token.RPAREN {
		for {
			arg := p.parseExpression(LOWEST)
			if target, ok := asAssignTarget(arg); ok && isAssignOp(p.cur.Type) {
				opTok := p.cur
				p.advance()
				p.skipNL()
				arg = &ast.Set{Token: opTok, Target: target, Operator: opTok.Literal, Value: p.parseExpression(LOWEST)}
			}
			args = append(args, arg)
			p.skipNL()
			if p.cur.Type == token.COMMA {
				p.advance()
				p.skipNL()
				continue
			}
			break
		}
	}
	p.skipNL()
	p.expect(token.RPAREN, "expected ')' to close call arguments")
	p.advance()
	return &ast.Call{Token: tok, Target: target, Arguments: args}
}

func (p *Parser) parseAtom() ast.Expression {
	switch p.cur.Type {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL:
		tok := p.cur
		p.advance()
		return &ast.Literal{Token: tok, Kind: tok.Type}
	case token.IDENT:
		tok := p.cur
		p.advance()
		return &ast.Identifier{Token: tok, Name: tok.Literal}
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseBraceExpr()
	case token.LPAREN:
		p.advance()
		p.skipNL()
		e := p.parseExpression(LOWEST)
		p.skipNL()
		p.expect(token.RPAREN, "expected ')' to close parenthesized expression")
		p.advance()
		return e
	case token.FUNCTION:
		tok := p.cur
		return p.parseFunctionOrClass(tok, token.FUNCTION)
	case token.CLASS:
		tok := p.cur
		return p.parseFunctionOrClass(tok, token.CLASS)
	default:
		p.errorf(p.cur.Pos, "unexpected token %s in expression", p.cur.Type.String())
		tok := p.cur
		p.advance()
		return &ast.Literal{Token: tok, Kind: token.NULL}
	}
}
