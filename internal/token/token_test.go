package token

import "testing"

func TestNewReclassifiesKeyword(t *testing.T) {
	tok := New(IDENTIFIER, "while", 1, 1)
	if tok.Kind != KEYWORD {
		t.Errorf("New(IDENTIFIER, %q) = %s, want KEYWORD", "while", tok.Kind)
	}
}

func TestNewLeavesNonKeywordIdentifierAlone(t *testing.T) {
	tok := New(IDENTIFIER, "counter", 1, 1)
	if tok.Kind != IDENTIFIER {
		t.Errorf("New(IDENTIFIER, %q) = %s, want IDENTIFIER", "counter", tok.Kind)
	}
}

func TestNewReclassifiesDelimiter(t *testing.T) {
	tests := []struct {
		lexeme string
		want   Kind
	}{
		{";", SEMICOLON}, {"(", LPAREN}, {")", RPAREN},
		{"{", LBRACE}, {"}", RBRACE}, {"[", LBRACKET}, {"]", RBRACKET}, {",", COMMA},
	}
	for _, tt := range tests {
		tok := New(DELIMITER, tt.lexeme, 1, 1)
		if tok.Kind != tt.want {
			t.Errorf("New(DELIMITER, %q) = %s, want %s", tt.lexeme, tok.Kind, tt.want)
		}
	}
}

func TestEOFToken(t *testing.T) {
	tok := EOFToken(3, 1)
	if tok.Kind != EOF {
		t.Errorf("EOFToken().Kind = %s, want EOF", tok.Kind)
	}
	if tok.Pos.Line != 3 || tok.Pos.Column != 1 {
		t.Errorf("EOFToken().Pos = %v, want {3 1}", tok.Pos)
	}
}

func TestIs(t *testing.T) {
	tok := New(OPERATOR, "+", 1, 1)
	if !tok.Is(OPERATOR, "+") {
		t.Error("Is(OPERATOR, \"+\") = false, want true")
	}
	if tok.Is(OPERATOR, "-") {
		t.Error("Is(OPERATOR, \"-\") = true, want false")
	}
	if tok.Is(KEYWORD, "+") {
		t.Error("Is(KEYWORD, \"+\") = true, want false")
	}
}
