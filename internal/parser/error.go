package parser

import (
	"github.com/minic-lang/minic/internal/diag"
	"github.com/minic-lang/minic/internal/token"
)

func (p *Parser) errorf(format string, args ...any) {
	p.diags = append(p.diags, diag.New(diag.Syntax, p.cur.current().Pos, format, args...))
}

func (p *Parser) errorAtf(pos token.Position, format string, args ...any) {
	p.diags = append(p.diags, diag.New(diag.Syntax, pos, format, args...))
}

// expect consumes the current token if it has kind and lexeme, else
// records a syntax error and synchronizes (spec.md §4.2).
func (p *Parser) expect(kind token.Kind, lexeme string) (token.Token, bool) {
	if p.cur.checkLexeme(kind, lexeme) {
		return p.cur.advance(), true
	}
	p.errorf("expected %q, got %q", lexeme, p.cur.current().Lexeme)
	p.synchronize()
	return token.Token{}, false
}

func (p *Parser) expectKind(kind token.Kind, what string) (token.Token, bool) {
	if p.cur.check(kind) {
		return p.cur.advance(), true
	}
	p.errorf("expected %s, got %q", what, p.cur.current().Lexeme)
	p.synchronize()
	return token.Token{}, false
}

// statementStarters are keywords that begin a new statement; synchronize
// stops before consuming one of these so the caller can resume parsing.
var statementStarters = map[string]bool{
	"if": true, "while": true, "for": true, "return": true,
	"break": true, "continue": true, "int": true, "float": true,
	"char": true, "void": true,
}

// synchronize discards tokens until the next SEMICOLON (consumed), an
// RBRACE or EOF (left in place), or a statement-starter keyword (left
// in place) — spec.md §4.2's error-recovery rule.
func (p *Parser) synchronize() {
	for !p.cur.atEOF() {
		tok := p.cur.current()
		if tok.Kind == token.SEMICOLON {
			p.cur.advance()
			return
		}
		if tok.Kind == token.RBRACE {
			return
		}
		if tok.Kind == token.KEYWORD && statementStarters[tok.Lexeme] {
			return
		}
		p.cur.advance()
	}
}
