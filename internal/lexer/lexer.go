// Package lexer turns Mini-C source text into a token stream.
//
// Rule order is significant and mirrors spec.md §4.1: comments must
// out-match a bare "/", multi-character operators must out-match their
// single-character prefixes, and so on. The first matching rule wins;
// next tries them in the documented order on every call.
package lexer

import (
	"strings"
	stdunicode "unicode"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/minic-lang/minic/internal/diag"
	"github.com/minic-lang/minic/internal/token"
)

// multiCharOperators must be tried before any of their single-character
// prefixes, per spec.md §4.1's "multi-char first" rule.
var multiCharOperators = []string{
	"++", "--", "==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "&&", "||",
}

var singleCharOperators = "+-*/%=<>&|!"

const delimiterChars = "()[]{};,"

// Lexer scans a single source file into tokens.
type Lexer struct {
	source string
	runes  []rune
	pos    int
	line   int
	column int
}

// New creates a Lexer over source, stripping a leading UTF-8 BOM if
// present (matching the teacher's lexer.New BOM-strip behavior).
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		runes:  []rune(stripBOM(source)),
		pos:    0,
		line:   1,
		column: 1,
	}
}

// stripBOM removes a leading UTF-8 byte-order mark using the standard
// BOM-aware UTF-8 decoder transform instead of a hand-rolled byte check.
func stripBOM(input string) string {
	out, _, err := transform.String(xunicode.BOMOverride(xunicode.UTF8.NewDecoder()), input)
	if err != nil {
		return input
	}
	return out
}

// Result is everything the lexer produces from one source file.
type Result struct {
	Symbols []string
	Tokens  []token.Token
	Diags   []*diag.Diagnostic
}

// Lex runs the lexer to completion, always terminating the token list
// with an EOF token and accumulating (never aborting on) errors.
func Lex(source string) Result {
	l := New(source)
	var res Result
	seen := map[string]bool{}

	for {
		tok, ok := l.next(&res.Diags)
		if !ok {
			continue // skipped (whitespace/comment); keep scanning
		}
		res.Tokens = append(res.Tokens, tok)
		if tok.Kind == token.IDENTIFIER || tok.Kind == token.INTEGER_LITERAL ||
			tok.Kind == token.FLOAT_LITERAL || tok.Kind == token.STRING_LITERAL ||
			tok.Kind == token.CHAR_LITERAL {
			if !seen[tok.Lexeme] {
				seen[tok.Lexeme] = true
				res.Symbols = append(res.Symbols, tok.Lexeme)
			}
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	return res
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.runes) }

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.runes[l.pos]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.runes) {
		return 0
	}
	return l.runes[l.pos+offset]
}

func (l *Lexer) advance() rune {
	r := l.runes[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

// next scans and returns the next token. ok is false when the rule that
// matched produced no token (comment, whitespace) and scanning should
// continue.
func (l *Lexer) next(diags *[]*diag.Diagnostic) (token.Token, bool) {
	if l.atEnd() {
		return token.EOFToken(l.line, l.column), true
	}

	startLine, startCol := l.line, l.column
	ch := l.peek()
	multiOp := l.matchMultiCharOperator()

	switch {
	case ch == '/' && l.peekAt(1) == '/':
		l.skipLineComment()
		return token.Token{}, false

	case ch == '/' && l.peekAt(1) == '*':
		l.skipBlockComment()
		return token.Token{}, false

	case isDigit(ch):
		return l.scanNumber(startLine, startCol), true

	case ch == '"':
		return l.scanString(startLine, startCol, diags), true

	case ch == '\'':
		return l.scanChar(startLine, startCol, diags), true

	case multiOp != "":
		for range multiOp {
			l.advance()
		}
		return token.New(token.OPERATOR, multiOp, startLine, startCol), true

	case strings.ContainsRune(singleCharOperators, ch):
		l.advance()
		return token.New(token.OPERATOR, string(ch), startLine, startCol), true

	case strings.ContainsRune(delimiterChars, ch):
		l.advance()
		return token.New(token.DELIMITER, string(ch), startLine, startCol), true

	case isIdentStart(ch):
		return l.scanIdentifier(startLine, startCol), true

	case ch == '\n':
		l.advance()
		return token.Token{}, false

	case ch == ' ' || ch == '\t' || ch == '\r':
		l.advance()
		return token.Token{}, false

	default:
		l.advance()
		*diags = append(*diags, diag.New(diag.Lexical, token.Position{Line: startLine, Column: startCol},
			"Invalid character '%c'", ch))
		return token.Token{}, false
	}
}

func (l *Lexer) matchMultiCharOperator() string {
	for _, op := range multiCharOperators {
		if l.hasPrefix(op) {
			return op
		}
	}
	return ""
}

func (l *Lexer) hasPrefix(s string) bool {
	runes := []rune(s)
	for i, r := range runes {
		if l.peekAt(i) != r {
			return false
		}
	}
	return true
}

func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() {
	l.advance() // '/'
	l.advance() // '*'
	for !l.atEnd() {
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || stdunicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || stdunicode.IsLetter(r) || stdunicode.IsDigit(r)
}

func (l *Lexer) scanNumber(line, col int) token.Token {
	var sb strings.Builder
	for isDigit(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		sb.WriteRune(l.advance()) // '.'
		for isDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
		return token.New(token.FLOAT_LITERAL, sb.String(), line, col)
	}
	return token.New(token.INTEGER_LITERAL, sb.String(), line, col)
}

func (l *Lexer) scanString(line, col int, diags *[]*diag.Diagnostic) token.Token {
	var sb strings.Builder
	sb.WriteRune(l.advance()) // opening quote
	for !l.atEnd() && l.peek() != '"' {
		if l.peek() == '\\' {
			sb.WriteRune(l.advance())
			if !l.atEnd() {
				sb.WriteRune(l.advance())
			}
			continue
		}
		sb.WriteRune(l.advance())
	}
	if l.atEnd() {
		*diags = append(*diags, diag.New(diag.Lexical, token.Position{Line: line, Column: col},
			"Unterminated string literal"))
		return token.New(token.STRING_LITERAL, sb.String(), line, col)
	}
	sb.WriteRune(l.advance()) // closing quote
	return token.New(token.STRING_LITERAL, sb.String(), line, col)
}

func (l *Lexer) scanChar(line, col int, diags *[]*diag.Diagnostic) token.Token {
	var sb strings.Builder
	sb.WriteRune(l.advance()) // opening quote
	if !l.atEnd() && l.peek() == '\\' {
		sb.WriteRune(l.advance())
	}
	if !l.atEnd() && l.peek() != '\'' {
		sb.WriteRune(l.advance())
	}
	if l.peek() != '\'' {
		*diags = append(*diags, diag.New(diag.Lexical, token.Position{Line: line, Column: col},
			"Unterminated character literal"))
		return token.New(token.CHAR_LITERAL, sb.String(), line, col)
	}
	sb.WriteRune(l.advance()) // closing quote
	return token.New(token.CHAR_LITERAL, sb.String(), line, col)
}

func (l *Lexer) scanIdentifier(line, col int) token.Token {
	var sb strings.Builder
	for isIdentPart(l.peek()) {
		sb.WriteRune(l.advance())
	}
	return token.New(token.IDENTIFIER, sb.String(), line, col)
}

// SourceByteLength returns the number of runes (Unicode code points) in
// source, which is less than its length in bytes whenever source holds
// multi-byte UTF-8 characters.
func SourceByteLength(source string) int {
	return utf8.RuneCountInString(source)
}
