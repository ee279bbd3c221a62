package pipeline

import (
	"strings"
	"testing"
)

func TestCompileSuccessProducesCode(t *testing.T) {
	result := Compile(`int main() { return 0; }`, Options{OptLevel: 2, Target: TargetC})
	if result.HaltedAtName != "" {
		t.Fatalf("unexpected halt at %q, diagnostics: %v", result.HaltedAtName, result.Diagnostics)
	}
	if !strings.Contains(result.Code, "int main(") {
		t.Fatalf("expected generated C to contain main's signature, got:\n%s", result.Code)
	}
}

func TestCompileHaltsOnLexError(t *testing.T) {
	result := Compile(`int x = 1 @ 2;`, Options{Target: TargetC})
	if result.HaltedAtName != "lex" {
		t.Fatalf("HaltedAtName = %q, want \"lex\"", result.HaltedAtName)
	}
	if result.Code != "" {
		t.Fatal("no code should be generated after a lex-phase halt")
	}
}

func TestCompileHaltsOnSyntaxError(t *testing.T) {
	result := Compile(`int f() { return 1 }`, Options{Target: TargetC})
	if result.HaltedAtName != "parse" {
		t.Fatalf("HaltedAtName = %q, want \"parse\"", result.HaltedAtName)
	}
}

func TestCompileHaltsOnSemanticError(t *testing.T) {
	result := Compile(`int f() { return undeclared; }`, Options{Target: TargetC})
	if result.HaltedAtName != "semantic" {
		t.Fatalf("HaltedAtName = %q, want \"semantic\"", result.HaltedAtName)
	}
}

func TestCompileDefaultTargetIsX86(t *testing.T) {
	result := Compile(`int main() { return 0; }`, Options{OptLevel: 2})
	if !strings.Contains(result.Code, "global main") {
		t.Fatalf("default target should be x86 NASM, got:\n%s", result.Code)
	}
}

func TestCompileProducesSideFileDumps(t *testing.T) {
	result := Compile(`int main() { return 0; }`, Options{OptLevel: 1, Target: TargetC})
	if result.TokensDump == "" {
		t.Error("expected a non-empty tokens dump")
	}
	if result.UnoptIRDump == "" {
		t.Error("expected a non-empty unoptimized IR dump")
	}
	if result.OptIRDump == "" {
		t.Error("expected a non-empty optimized IR dump")
	}
}

func TestCompileOptimizationCollapsesConstantFold(t *testing.T) {
	unoptimized := Compile(`int main() { return 1 + 2; }`, Options{OptLevel: 0, Target: TargetC})
	optimized := Compile(`int main() { return 1 + 2; }`, Options{OptLevel: 1, Target: TargetC})
	if strings.Count(optimized.OptIRDump, "ADD") >= strings.Count(unoptimized.OptIRDump, "ADD") {
		t.Fatalf("level-1 optimization should fold the constant ADD away\nlevel0:\n%s\nlevel1:\n%s",
			unoptimized.OptIRDump, optimized.OptIRDump)
	}
}
