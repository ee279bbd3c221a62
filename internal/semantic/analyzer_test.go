package semantic

import (
	"testing"

	"github.com/minic-lang/minic/internal/diag"
	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/internal/parser"
)

func analyze(t *testing.T, source string) []*diag.Diagnostic {
	t.Helper()
	lexResult := lexer.Lex(source)
	if len(lexResult.Diags) != 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexResult.Diags)
	}
	program, diags := parser.Parse(lexResult.Tokens)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	return Analyze(program)
}

func TestAnalyzeWellTypedProgramHasNoErrors(t *testing.T) {
	diags := analyze(t, `
		int add(int a, int b) { return a + b; }
		int main() { int x = add(1, 2); return x; }
	`)
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
}

func TestAnalyzeUndeclaredVariableIsError(t *testing.T) {
	diags := analyze(t, `int f() { return y; }`)
	if !diag.HasErrors(diags) {
		t.Fatal("expected an error for use of undeclared variable 'y'")
	}
}

func TestAnalyzeRedeclarationIsError(t *testing.T) {
	diags := analyze(t, `int f() { int x = 1; int x = 2; return x; }`)
	if !diag.HasErrors(diags) {
		t.Fatal("expected an error for redeclaring 'x' in the same scope")
	}
}

func TestAnalyzeIntWidensToFloat(t *testing.T) {
	diags := analyze(t, `int f() { float x = 1; return 0; }`)
	if diag.HasErrors(diags) {
		t.Fatalf("assigning int to float should widen without error, got: %v", diags)
	}
}

func TestAnalyzeFloatToIntIsError(t *testing.T) {
	diags := analyze(t, `int f() { int x = 1.5; return x; }`)
	if !diag.HasErrors(diags) {
		t.Fatal("expected an error assigning a float literal to an int variable")
	}
}

func TestAnalyzeShadowingInNestedScopeIsNotError(t *testing.T) {
	diags := analyze(t, `
		int f() {
			int x = 1;
			if (x) {
				int x = 2;
			}
			return x;
		}
	`)
	if diag.HasErrors(diags) {
		t.Fatalf("shadowing an outer variable in a nested scope should not error, got: %v", diags)
	}
}

func TestAnalyzeArityMismatchIsWarningNotError(t *testing.T) {
	diags := analyze(t, `
		int add(int a, int b) { return a + b; }
		int main() { return add(1); }
	`)
	if diag.HasErrors(diags) {
		t.Fatalf("arity mismatch must not be fatal, got: %v", diags)
	}
	found := false
	for _, d := range diags {
		if d.Severity == diag.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an arity-mismatch warning")
	}
}

func TestAnalyzeFunctionParametersShareScopeWithBody(t *testing.T) {
	diags := analyze(t, `int f(int a) { return a; }`)
	if diag.HasErrors(diags) {
		t.Fatalf("parameter 'a' should be visible in the function body, got: %v", diags)
	}
}
