package x86

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/internal/optimize"
	"github.com/minic-lang/minic/internal/parser"
)

func compileToModule(t *testing.T, source string) *ir.Module {
	t.Helper()
	lexResult := lexer.Lex(source)
	if len(lexResult.Diags) != 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexResult.Diags)
	}
	program, diags := parser.Parse(lexResult.Tokens)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	module, irDiags := ir.Generate(program)
	if len(irDiags) != 0 {
		t.Fatalf("unexpected IR diagnostics: %v", irDiags)
	}
	optimized, _ := optimize.Run(module, 2)
	return optimized
}

func TestGenerateEmitsRequiredHeaders(t *testing.T) {
	module := compileToModule(t, `int main() { return 0; }`)
	code := Generate(module)
	for _, want := range []string{"bits 64", "default rel", "extern printf", "extern scanf", "extern exit", "global main"} {
		if !strings.Contains(code, want) {
			t.Errorf("expected %q in generated assembly", want)
		}
	}
}

func TestGenerateReservesBSSForNamedVariables(t *testing.T) {
	module := compileToModule(t, `int counter; int main() { counter = 1; return counter; }`)
	code := Generate(module)
	if !strings.Contains(code, "counter resq 1") {
		t.Fatalf("expected a BSS reservation for 'counter', got:\n%s", code)
	}
}

func TestGenerateInternsStringIntoDataSection(t *testing.T) {
	module := compileToModule(t, `int main() { printf("hi\n"); return 0; }`)
	code := Generate(module)
	if !strings.Contains(code, "STR1 db") {
		t.Fatalf("expected an interned string entry in .data, got:\n%s", code)
	}
}

func TestGenerateFunctionPrologueEpilogue(t *testing.T) {
	module := compileToModule(t, `int f() { return 0; }`)
	code := Generate(module)
	for _, want := range []string{"push rbp", "mov rbp, rsp", "sub rsp, 256", "mov rsp, rbp", "pop rbp", "ret"} {
		if !strings.Contains(code, want) {
			t.Errorf("expected %q in function body, got:\n%s", want, code)
		}
	}
}

func TestGenerateDivModUsesCqoIdiv(t *testing.T) {
	module := compileToModule(t, `int f(int a, int b) { return a / b; }`)
	code := Generate(module)
	if !strings.Contains(code, "cqo") || !strings.Contains(code, "idiv rbx") {
		t.Fatalf("expected cqo/idiv sequence for DIV, got:\n%s", code)
	}
}

func TestGenerateVariadicCallClearsRax(t *testing.T) {
	module := compileToModule(t, `int main() { printf("%d\n", 1); return 0; }`)
	code := Generate(module)
	if !strings.Contains(code, "xor rax, rax") {
		t.Fatalf("expected rax cleared before a variadic call to printf, got:\n%s", code)
	}
}

func TestGenerateSnapshotFibonacci(t *testing.T) {
	module := compileToModule(t, `
		int fib(int n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		int main() {
			printf("%d\n", fib(10));
			return 0;
		}
	`)
	snaps.MatchSnapshot(t, "fibonacci_asm", Generate(module))
}
