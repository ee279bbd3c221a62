// Package parser implements a recursive-descent, precedence-climbing
// parser for Mini-C (spec.md §4.2).
package parser

import (
	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/diag"
	"github.com/minic-lang/minic/internal/token"
)

var typeKeywords = map[string]bool{"int": true, "float": true, "char": true, "void": true}

// Parser holds the mutable state of a single parse: the token cursor,
// the accumulated diagnostics, the parser's coarse symbol table, and
// the loop/function nesting context spec.md §4.2 requires for
// break/continue/return validation.
type Parser struct {
	cur           *cursor
	symbols       *symbolTable
	diags         []*diag.Diagnostic
	loopDepth     int
	functionDepth int
}

// New creates a Parser over tokens.
func New(tokens []token.Token) *Parser {
	return &Parser{cur: newCursor(tokens), symbols: newSymbolTable()}
}

// Parse runs a full parser over tokens, producing a Program and any
// accumulated diagnostics (spec.md §4.2).
func Parse(tokens []token.Token) (*ast.Program, []*diag.Diagnostic) {
	p := New(tokens)
	pos := p.cur.current().Pos
	var statements []ast.Node
	for !p.cur.atEOF() {
		stmt := p.parseDeclOrStatement()
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return ast.NewProgram(pos, statements), p.diags
}

// parseDeclOrStatement implements the top-level
// decl_or_stmt := function_decl | statement production, using 2-token
// lookahead (TYPE IDENT '(') to recognize a function declaration.
func (p *Parser) parseDeclOrStatement() ast.Node {
	if p.looksLikeFunctionDecl() {
		return p.parseFunctionDeclaration()
	}
	return p.parseStatement()
}

// looksLikeFunctionDecl implements spec.md §4.2's disambiguation: a
// type keyword followed by IDENT then LPAREN is a function declaration.
func (p *Parser) looksLikeFunctionDecl() bool {
	return p.cur.current().Kind == token.KEYWORD && typeKeywords[p.cur.current().Lexeme] &&
		p.cur.peekAt(1).Kind == token.IDENTIFIER &&
		p.cur.peekAt(2).Kind == token.LPAREN
}

func (p *Parser) parseFunctionDeclaration() ast.Node {
	pos := p.cur.current().Pos
	typeTok := p.cur.advance() // return type keyword
	nameTok := p.cur.advance() // IDENT

	// Declaration happens at the opening '(' (spec.md §4.2).
	p.expect(token.LPAREN, "(")
	p.symbols.declare(nameTok.Lexeme, symbol{returnType: typeTok.Lexeme, isFunc: true})

	params := p.parseParams()
	p.expect(token.RPAREN, ")")

	p.functionDepth++
	for _, param := range params {
		p.symbols.declare(param.Name, symbol{returnType: param.Type})
	}
	body := p.parseBlock()
	p.functionDepth--

	fd := &ast.FunctionDeclaration{
		ReturnType: typeTok.Lexeme,
		Name:       nameTok.Lexeme,
		Parameters: params,
		Body:       body,
	}
	fd.Position = pos
	return fd
}

func (p *Parser) parseParams() []ast.Parameter {
	var params []ast.Parameter
	if p.cur.check(token.RPAREN) {
		return params
	}
	for {
		typeTok, ok := p.expectTypeKeyword()
		if !ok {
			break
		}
		nameTok, ok := p.expectKind(token.IDENTIFIER, "parameter name")
		if !ok {
			break
		}
		param := ast.Parameter{Type: typeTok.Lexeme, Name: nameTok.Lexeme}
		param.Position = nameTok.Pos
		params = append(params, param)
		if !p.cur.match(token.COMMA) {
			break
		}
	}
	return params
}

func (p *Parser) expectTypeKeyword() (token.Token, bool) {
	if p.cur.check(token.KEYWORD) && typeKeywords[p.cur.current().Lexeme] {
		return p.cur.advance(), true
	}
	p.errorf("expected a type keyword, got %q", p.cur.current().Lexeme)
	p.synchronize()
	return token.Token{}, false
}

// parseBlock parses `{ statements }`. The same grammar production
// serves both a function body and a nested compound statement; whether
// it opens a fresh scope is decided by the semantic analyzer, not here
// (spec.md §4.3: a function body shares its scope with the parameters).
func (p *Parser) parseBlock() *ast.Block {
	pos := p.cur.current().Pos
	p.expect(token.LBRACE, "{")
	var statements []ast.Node
	for !p.cur.check(token.RBRACE) && !p.cur.atEOF() {
		stmt := p.parseStatement()
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}
	p.expect(token.RBRACE, "}")
	block := &ast.Block{Statements: statements}
	block.Position = pos
	return block
}

// Diagnostics returns the diagnostics accumulated by this Parser.
func (p *Parser) Diagnostics() []*diag.Diagnostic { return p.diags }
