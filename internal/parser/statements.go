package parser

import (
	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/token"
)

var compoundAssignOps = map[string]ast.CompoundAssignOp{
	"+=": ast.AddAssign, "-=": ast.SubAssign, "*=": ast.MulAssign, "/=": ast.DivAssign,
}

// parseStatement implements:
//
//	statement := declaration | if_stmt | while_stmt | for_stmt
//	           | break_stmt | continue_stmt | return_stmt
//	           | block | assignment | compound_assignment
//	           | expression ';'
func (p *Parser) parseStatement() ast.Node {
	cur := p.cur.current()

	if cur.Kind == token.KEYWORD && typeKeywords[cur.Lexeme] {
		return p.parseVarDeclaration()
	}

	switch {
	case cur.Is(token.KEYWORD, "if"):
		return p.parseIfStatement()
	case cur.Is(token.KEYWORD, "while"):
		return p.parseWhileStatement()
	case cur.Is(token.KEYWORD, "for"):
		return p.parseForStatement()
	case cur.Is(token.KEYWORD, "break"):
		return p.parseBreakStatement()
	case cur.Is(token.KEYWORD, "continue"):
		return p.parseContinueStatement()
	case cur.Is(token.KEYWORD, "return"):
		return p.parseReturnStatement()
	case cur.Kind == token.LBRACE:
		return p.parseBlock()
	case cur.Kind == token.IDENTIFIER:
		return p.parseIdentifierLedStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVarDeclaration() ast.Node {
	pos := p.cur.current().Pos
	typeTok := p.cur.advance()
	nameTok, ok := p.expectKind(token.IDENTIFIER, "variable name")
	if !ok {
		return nil
	}
	p.symbols.declare(nameTok.Lexeme, symbol{returnType: typeTok.Lexeme})

	var initializer ast.Node
	if p.cur.checkLexeme(token.OPERATOR, "=") {
		p.cur.advance()
		initializer = p.parseLogicalOr()
	}
	p.expect(token.SEMICOLON, ";")

	decl := &ast.VarDeclaration{Type: typeTok.Lexeme, Identifier: nameTok.Lexeme, Initializer: initializer}
	decl.Position = pos
	return decl
}

// parseIdentifierLedStatement disambiguates IDENTIFIER-start statements
// by peeking the following OPERATOR lexeme (spec.md §4.2).
func (p *Parser) parseIdentifierLedStatement() ast.Node {
	nameTok := p.cur.current()
	next := p.cur.peekAt(1)

	if next.Kind == token.OPERATOR && next.Lexeme == "=" {
		pos := p.cur.advance().Pos
		p.cur.advance() // '='
		value := p.parseLogicalOr()
		p.expect(token.SEMICOLON, ";")
		a := &ast.Assignment{Identifier: nameTok.Lexeme, Value: value}
		a.Position = pos
		return a
	}

	if op, ok := compoundAssignOps[next.Lexeme]; ok && next.Kind == token.OPERATOR {
		pos := p.cur.advance().Pos
		p.cur.advance() // operator
		value := p.parseLogicalOr()
		p.expect(token.SEMICOLON, ";")
		ca := &ast.CompoundAssignment{Identifier: nameTok.Lexeme, Operator: op, Value: value}
		ca.Position = pos
		return ca
	}

	return p.parseExpressionStatement()
}

func (p *Parser) parseExpressionStatement() ast.Node {
	expr := p.parseLogicalOr()
	p.expect(token.SEMICOLON, ";")
	return expr
}

func (p *Parser) parseIfStatement() ast.Node {
	pos := p.cur.advance().Pos // 'if'
	p.expect(token.LPAREN, "(")
	cond := p.parseLogicalOr()
	p.expect(token.RPAREN, ")")
	then := p.parseStatement()

	var elseBranch ast.Node
	if p.cur.checkLexeme(token.KEYWORD, "else") {
		p.cur.advance()
		elseBranch = p.parseStatement()
	}

	stmt := &ast.IfStatement{Condition: cond, Then: then, Else: elseBranch}
	stmt.Position = pos
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Node {
	pos := p.cur.advance().Pos // 'while'
	p.expect(token.LPAREN, "(")
	cond := p.parseLogicalOr()
	p.expect(token.RPAREN, ")")

	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--

	stmt := &ast.WhileStatement{Condition: cond, Body: body}
	stmt.Position = pos
	return stmt
}

func (p *Parser) parseForStatement() ast.Node {
	pos := p.cur.advance().Pos // 'for'
	p.expect(token.LPAREN, "(")

	var init, cond, update ast.Node
	if !p.cur.check(token.SEMICOLON) {
		init = p.parseForClauseInit()
	} else {
		p.cur.advance()
	}
	if !p.cur.check(token.SEMICOLON) {
		cond = p.parseLogicalOr()
	}
	p.expect(token.SEMICOLON, ";")
	if !p.cur.check(token.RPAREN) {
		update = p.parseForClauseUpdate()
	}
	p.expect(token.RPAREN, ")")

	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--

	stmt := &ast.ForStatement{Init: init, Condition: cond, Update: update, Body: body}
	stmt.Position = pos
	return stmt
}

// parseForClauseInit parses the for-loop init clause (a var declaration
// or an assignment/compound-assignment) followed by its own SEMICOLON.
func (p *Parser) parseForClauseInit() ast.Node {
	if p.cur.check(token.KEYWORD) && typeKeywords[p.cur.current().Lexeme] {
		return p.parseVarDeclaration() // consumes trailing ';'
	}
	stmt := p.parseBareAssignmentLike()
	p.expect(token.SEMICOLON, ";")
	return stmt
}

// parseForClauseUpdate parses the for-loop update clause without a
// trailing semicolon.
func (p *Parser) parseForClauseUpdate() ast.Node {
	return p.parseBareAssignmentLike()
}

// parseBareAssignmentLike parses an assignment, compound assignment, or
// bare expression without consuming a trailing terminator — used for
// the for-loop init/update clauses, which have their own delimiters.
func (p *Parser) parseBareAssignmentLike() ast.Node {
	if p.cur.check(token.IDENTIFIER) {
		nameTok := p.cur.current()
		next := p.cur.peekAt(1)
		if next.Kind == token.OPERATOR && next.Lexeme == "=" {
			pos := p.cur.advance().Pos
			p.cur.advance()
			value := p.parseLogicalOr()
			a := &ast.Assignment{Identifier: nameTok.Lexeme, Value: value}
			a.Position = pos
			return a
		}
		if op, ok := compoundAssignOps[next.Lexeme]; ok && next.Kind == token.OPERATOR {
			pos := p.cur.advance().Pos
			p.cur.advance()
			value := p.parseLogicalOr()
			ca := &ast.CompoundAssignment{Identifier: nameTok.Lexeme, Operator: op, Value: value}
			ca.Position = pos
			return ca
		}
	}
	return p.parseLogicalOr()
}

func (p *Parser) parseBreakStatement() ast.Node {
	pos := p.cur.advance().Pos
	if p.loopDepth == 0 {
		p.errorAtf(pos, "'break' outside of a loop")
	}
	p.expect(token.SEMICOLON, ";")
	stmt := &ast.BreakStatement{}
	stmt.Position = pos
	return stmt
}

func (p *Parser) parseContinueStatement() ast.Node {
	pos := p.cur.advance().Pos
	if p.loopDepth == 0 {
		p.errorAtf(pos, "'continue' outside of a loop")
	}
	p.expect(token.SEMICOLON, ";")
	stmt := &ast.ContinueStatement{}
	stmt.Position = pos
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Node {
	pos := p.cur.advance().Pos
	if p.functionDepth == 0 {
		p.errorAtf(pos, "'return' outside of a function")
	}
	var value ast.Node
	if !p.cur.check(token.SEMICOLON) {
		value = p.parseLogicalOr()
	}
	p.expect(token.SEMICOLON, ";")
	stmt := &ast.ReturnStatement{Value: value}
	stmt.Position = pos
	return stmt
}
