package ir

import (
	"testing"

	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/internal/parser"
)

func lower(t *testing.T, source string) *Module {
	t.Helper()
	lexResult := lexer.Lex(source)
	if len(lexResult.Diags) != 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexResult.Diags)
	}
	program, diags := parser.Parse(lexResult.Tokens)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	module, irDiags := Generate(program)
	if len(irDiags) != 0 {
		t.Fatalf("IR generation must never itself produce diagnostics, got: %v", irDiags)
	}
	return module
}

func opSequence(module *Module) []Opcode {
	ops := make([]Opcode, len(module.Instructions))
	for i, instr := range module.Instructions {
		ops[i] = instr.Op
	}
	return ops
}

func TestGenerateFunctionBeginEnd(t *testing.T) {
	module := lower(t, `int f() { return 1; }`)
	ops := opSequence(module)
	if ops[0] != FUNC_BEGIN || ops[len(ops)-1] != FUNC_END {
		t.Fatalf("expected FUNC_BEGIN...FUNC_END bracketing, got %v", ops)
	}
}

func TestGenerateMissingReturnIsSynthesized(t *testing.T) {
	module := lower(t, `int f() { int x = 1; }`)
	ops := opSequence(module)
	var sawReturn bool
	for _, op := range ops {
		if op == RETURN {
			sawReturn = true
		}
	}
	if !sawReturn {
		t.Fatal("expected a synthesized RETURN when the body falls off the end")
	}
}

func TestGenerateTempNumberingResetsPerFunction(t *testing.T) {
	module := lower(t, `
		int f() { return 1 + 2; }
		int g() { return 3 + 4; }
	`)
	var temps []string
	for _, instr := range module.Instructions {
		if instr.Op == ADD {
			temps = append(temps, instr.Result)
		}
	}
	if len(temps) != 2 {
		t.Fatalf("expected 2 ADD instructions, got %d", len(temps))
	}
	if temps[0] != temps[1] {
		t.Errorf("temp numbering should reset per function: got %q and %q, want identical names", temps[0], temps[1])
	}
}

func TestGenerateIfElseLabels(t *testing.T) {
	module := lower(t, `int f() { if (1) return 1; else return 0; return 2; }`)
	var sawIfFalse, sawGoto bool
	for _, instr := range module.Instructions {
		if instr.Op == IF_FALSE {
			sawIfFalse = true
		}
		if instr.Op == GOTO {
			sawGoto = true
		}
	}
	if !sawIfFalse || !sawGoto {
		t.Fatalf("expected both IF_FALSE and GOTO in an if/else, got %v", opSequence(module))
	}
}

func TestGenerateWhileLoopLabelsBracketBody(t *testing.T) {
	module := lower(t, `int f() { while (1) { break; continue; } return 0; }`)
	var labels []string
	for _, instr := range module.Instructions {
		if instr.Op == LABEL {
			labels = append(labels, instr.Label)
		}
	}
	if len(labels) < 2 {
		t.Fatalf("expected at least a WHILE_START and WHILE_END label, got %v", labels)
	}
}

func TestGenerateForLoopContinueTargetsUpdate(t *testing.T) {
	module := lower(t, `int f() { for (int i = 0; i < 10; i += 1) { continue; } return 0; }`)

	var updateLabel string
	for _, instr := range module.Instructions {
		if instr.Op == LABEL && len(instr.Label) >= 10 && instr.Label[:10] == "FOR_UPDATE" {
			updateLabel = instr.Label
		}
	}
	if updateLabel == "" {
		t.Fatal("expected a FOR_UPDATE label")
	}

	var continueTarget string
	for i, instr := range module.Instructions {
		if instr.Op == GOTO && i > 0 {
			// The continue's GOTO is the one immediately preceded by
			// nothing but loop-body statements; just check at least one
			// GOTO targets the update label.
			if instr.Label == updateLabel {
				continueTarget = instr.Label
			}
		}
	}
	if continueTarget == "" {
		t.Fatal("expected continue's GOTO to target the FOR_UPDATE label, not the loop start")
	}
}

func TestGenerateFunctionCallBuffersParamsBeforeCall(t *testing.T) {
	module := lower(t, `
		int add(int a, int b) { return a + b; }
		int main() { return add(1, 2); }
	`)
	var seenParams, sawCall int
	for _, instr := range module.Instructions {
		if instr.Op == PARAM {
			seenParams++
		}
		if instr.Op == CALL {
			sawCall++
			if seenParams != 2 {
				t.Fatalf("expected 2 PARAMs before CALL, saw %d", seenParams)
			}
		}
	}
	if sawCall != 1 {
		t.Fatalf("expected exactly one CALL, got %d", sawCall)
	}
}

func TestGenerateStringLiteralIsInterned(t *testing.T) {
	module := lower(t, `int main() { printf("hi"); printf("hi"); return 0; }`)
	entries := module.Strings.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected a single interned entry for the repeated literal, got %d: %v", len(entries), entries)
	}
}

func TestGenerateFuncReturnTypesRecorded(t *testing.T) {
	module := lower(t, `float pi() { return 3.0; }`)
	if module.FuncReturnTypes["pi"] != "float" {
		t.Errorf("FuncReturnTypes[pi] = %q, want \"float\"", module.FuncReturnTypes["pi"])
	}
}
