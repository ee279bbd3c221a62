package parser

import (
	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/token"
)

// Expression precedence, lowest to highest (spec.md §4.2):
//
//	logical-or -> logical-and -> equality -> additive -> relational
//	-> multiplicative -> unary -> primary
//
// Note the deliberate grammar choice carried over from spec.md: relational
// binds TIGHTER than additive, the inverse of C's usual precedence.

func (p *Parser) parseLogicalOr() ast.Node {
	left := p.parseLogicalAnd()
	for p.cur.checkLexeme(token.OPERATOR, "||") {
		pos := p.cur.advance().Pos
		right := p.parseLogicalAnd()
		node := &ast.LogicalOp{Op: "||", Left: left, Right: right}
		node.Position = pos
		left = node
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Node {
	left := p.parseEquality()
	for p.cur.checkLexeme(token.OPERATOR, "&&") {
		pos := p.cur.advance().Pos
		right := p.parseEquality()
		node := &ast.LogicalOp{Op: "&&", Left: left, Right: right}
		node.Position = pos
		left = node
	}
	return left
}

var equalityOps = map[string]bool{"==": true, "!=": true}

func (p *Parser) parseEquality() ast.Node {
	left := p.parseAdditive()
	for p.cur.current().Kind == token.OPERATOR && equalityOps[p.cur.current().Lexeme] {
		op := p.cur.advance()
		right := p.parseAdditive()
		node := &ast.ComparisonOp{Op: op.Lexeme, Left: left, Right: right}
		node.Position = op.Pos
		left = node
	}
	return left
}

var relationalOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true}

func (p *Parser) parseRelational() ast.Node {
	left := p.parseMultiplicative()
	for p.cur.current().Kind == token.OPERATOR && relationalOps[p.cur.current().Lexeme] {
		op := p.cur.advance()
		right := p.parseMultiplicative()
		node := &ast.ComparisonOp{Op: op.Lexeme, Left: left, Right: right}
		node.Position = op.Pos
		left = node
	}
	return left
}

var additiveOps = map[string]bool{"+": true, "-": true}

func (p *Parser) parseAdditive() ast.Node {
	left := p.parseRelational()
	for p.cur.current().Kind == token.OPERATOR && additiveOps[p.cur.current().Lexeme] {
		op := p.cur.advance()
		right := p.parseRelational()
		node := &ast.BinaryOp{Op: op.Lexeme, Left: left, Right: right}
		node.Position = op.Pos
		left = node
	}
	return left
}

var multiplicativeOps = map[string]bool{"*": true, "/": true, "%": true}

func (p *Parser) parseMultiplicative() ast.Node {
	left := p.parseUnary()
	for p.cur.current().Kind == token.OPERATOR && multiplicativeOps[p.cur.current().Lexeme] {
		op := p.cur.advance()
		right := p.parseUnary()
		node := &ast.BinaryOp{Op: op.Lexeme, Left: left, Right: right}
		node.Position = op.Pos
		left = node
	}
	return left
}

func (p *Parser) parseUnary() ast.Node {
	if p.cur.checkLexeme(token.OPERATOR, "!") {
		pos := p.cur.advance().Pos
		operand := p.parseUnary()
		node := &ast.LogicalOp{Op: "!", Left: operand}
		node.Position = pos
		return node
	}
	return p.parsePrimary()
}

// parsePrimary handles integer/float/string literals, identifiers,
// function calls, and parenthesized logical-or expressions.
func (p *Parser) parsePrimary() ast.Node {
	cur := p.cur.current()

	switch {
	case cur.Kind == token.INTEGER_LITERAL || cur.Kind == token.FLOAT_LITERAL:
		p.cur.advance()
		n := &ast.Number{Lexeme: cur.Lexeme}
		n.Position = cur.Pos
		return n

	case cur.Kind == token.STRING_LITERAL:
		p.cur.advance()
		s := &ast.StringLiteral{Raw: cur.Lexeme}
		s.Position = cur.Pos
		return s

	case cur.Kind == token.IDENTIFIER && p.cur.peekAt(1).Kind == token.LPAREN:
		return p.parseFunctionCall()

	case cur.Kind == token.IDENTIFIER:
		p.cur.advance()
		id := &ast.Identifier{Name: cur.Lexeme}
		id.Position = cur.Pos
		return id

	case cur.Kind == token.LPAREN:
		p.cur.advance()
		expr := p.parseLogicalOr()
		p.expect(token.RPAREN, ")")
		return expr

	default:
		p.errorf("unexpected token %q", cur.Lexeme)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseFunctionCall() ast.Node {
	nameTok := p.cur.advance()
	p.expect(token.LPAREN, "(")

	var args []ast.Node
	if !p.cur.check(token.RPAREN) {
		for {
			args = append(args, p.parseLogicalOr())
			if !p.cur.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, ")")

	call := &ast.FunctionCall{Name: nameTok.Lexeme, Args: args}
	call.Position = nameTok.Pos
	return call
}
