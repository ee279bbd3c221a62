package optimize

import (
	"testing"

	"github.com/minic-lang/minic/internal/ir"
)

func TestRunLevel0IsIdentity(t *testing.T) {
	module := &ir.Module{Instructions: []ir.Instruction{
		{Op: ir.ADD, Arg1: "1", Arg2: "2", Result: "t1"},
	}}
	out, counts := Run(module, 0)
	if len(out.Instructions) != 1 || out.Instructions[0].Op != ir.ADD {
		t.Fatalf("level 0 should not transform instructions, got %v", out.Instructions)
	}
	if counts.Folded != 0 || counts.DeadEliminated != 0 || counts.StrengthReduced != 0 {
		t.Fatalf("level 0 should report zero counts, got %+v", counts)
	}
}

func TestFoldConstantsIntegerArithmetic(t *testing.T) {
	module := &ir.Module{Instructions: []ir.Instruction{
		{Op: ir.ADD, Arg1: "2", Arg2: "3", Result: "t1"},
		{Op: ir.ASSIGN, Arg1: "t1", Result: "x"},
	}}
	out, counts := Run(module, 1)
	if counts.Folded != 1 {
		t.Fatalf("expected 1 folded instruction, got %d", counts.Folded)
	}
	if out.Instructions[0].Op != ir.ASSIGN || out.Instructions[0].Arg1 != "5" {
		t.Fatalf("expected ADD 2,3 folded to ASSIGN 5, got %v", out.Instructions[0])
	}
}

func TestFoldConstantsNeverFoldsComparisons(t *testing.T) {
	module := &ir.Module{Instructions: []ir.Instruction{
		{Op: ir.EQ, Arg1: "1", Arg2: "1", Result: "t1"},
	}}
	out, _ := Run(module, 2)
	if out.Instructions[0].Op != ir.EQ {
		t.Fatalf("comparisons must never be folded even when operands are literal, got %v", out.Instructions[0])
	}
}

func TestFoldConstantsSkipsDivisionByZeroLiteral(t *testing.T) {
	module := &ir.Module{Instructions: []ir.Instruction{
		{Op: ir.DIV, Arg1: "4", Arg2: "0", Result: "t1"},
	}}
	out, counts := Run(module, 1)
	if counts.Folded != 0 {
		t.Fatalf("division by a literal zero must not be folded, got %d folds", counts.Folded)
	}
	if out.Instructions[0].Op != ir.DIV {
		t.Fatalf("instruction should be left untouched, got %v", out.Instructions[0])
	}
}

func TestFoldConstantsFloorDivisionForNegativeOperands(t *testing.T) {
	module := &ir.Module{Instructions: []ir.Instruction{
		{Op: ir.DIV, Arg1: "-7", Arg2: "2", Result: "t1"},
		{Op: ir.ASSIGN, Arg1: "t1", Result: "x"},
	}}
	out, _ := Run(module, 1)
	if out.Instructions[0].Arg1 != "-4" {
		t.Fatalf("-7 DIV 2 should floor-divide to -4, got %q", out.Instructions[0].Arg1)
	}
}

func TestEliminateDeadTempsDropsUnreferencedAssign(t *testing.T) {
	module := &ir.Module{Instructions: []ir.Instruction{
		{Op: ir.ASSIGN, Arg1: "1", Result: "t1"},
		{Op: ir.ASSIGN, Arg1: "2", Result: "t2"},
		{Op: ir.RETURN, Arg1: "t2"},
	}}
	out, counts := Run(module, 1)
	if counts.DeadEliminated != 1 {
		t.Fatalf("expected 1 dead temp eliminated, got %d", counts.DeadEliminated)
	}
	for _, instr := range out.Instructions {
		if instr.Result == "t1" {
			t.Fatalf("dead temp t1 should have been eliminated, instructions: %v", out.Instructions)
		}
	}
}

func TestEliminateDeadTempsNeverDropsNonTempAssign(t *testing.T) {
	module := &ir.Module{Instructions: []ir.Instruction{
		{Op: ir.ASSIGN, Arg1: "1", Result: "x"},
	}}
	out, counts := Run(module, 1)
	if counts.DeadEliminated != 0 || len(out.Instructions) != 1 {
		t.Fatalf("ASSIGN to a named variable must never be eliminated, got %v (counts=%+v)", out.Instructions, counts)
	}
}

func TestReduceStrengthMulByZeroOneTwo(t *testing.T) {
	module := &ir.Module{Instructions: []ir.Instruction{
		{Op: ir.MUL, Arg1: "x", Arg2: "0", Result: "t1"},
		{Op: ir.MUL, Arg1: "y", Arg2: "1", Result: "t2"},
		{Op: ir.MUL, Arg1: "z", Arg2: "2", Result: "t3"},
		{Op: ir.PARAM, Arg1: "t1"},
		{Op: ir.PARAM, Arg1: "t2"},
		{Op: ir.PARAM, Arg1: "t3"},
		{Op: ir.CALL, Arg1: "use", Arg2: "3"},
	}}
	out, counts := Run(module, 2)
	if counts.StrengthReduced != 3 {
		t.Fatalf("expected 3 strength reductions, got %d", counts.StrengthReduced)
	}
	if out.Instructions[0].Op != ir.ASSIGN || out.Instructions[0].Arg1 != "0" {
		t.Errorf("x*0 should reduce to ASSIGN 0, got %v", out.Instructions[0])
	}
	if out.Instructions[1].Op != ir.ASSIGN || out.Instructions[1].Arg1 != "y" {
		t.Errorf("y*1 should reduce to ASSIGN y, got %v", out.Instructions[1])
	}
	if out.Instructions[2].Op != ir.ADD || out.Instructions[2].Arg1 != "z" || out.Instructions[2].Arg2 != "z" {
		t.Errorf("z*2 should reduce to ADD z,z, got %v", out.Instructions[2])
	}
}

func TestReduceStrengthAddZero(t *testing.T) {
	module := &ir.Module{Instructions: []ir.Instruction{
		{Op: ir.ADD, Arg1: "x", Arg2: "0", Result: "t1"},
		{Op: ir.ADD, Arg1: "0", Arg2: "y", Result: "t2"},
		{Op: ir.PARAM, Arg1: "t1"},
		{Op: ir.PARAM, Arg1: "t2"},
		{Op: ir.CALL, Arg1: "use", Arg2: "2"},
	}}
	out, counts := Run(module, 2)
	if counts.StrengthReduced != 2 {
		t.Fatalf("expected 2 strength reductions, got %d", counts.StrengthReduced)
	}
	if out.Instructions[0].Arg1 != "x" || out.Instructions[1].Arg1 != "y" {
		t.Fatalf("ADD x,0 and ADD 0,y should both reduce to ASSIGN of the non-zero operand, got %v", out.Instructions)
	}
}

func TestRunPreservesFuncReturnTypes(t *testing.T) {
	module := &ir.Module{
		Instructions:    []ir.Instruction{{Op: ir.RETURN}},
		FuncReturnTypes: map[string]string{"f": "float"},
	}
	out, _ := Run(module, 2)
	if out.FuncReturnTypes["f"] != "float" {
		t.Fatalf("Run must preserve FuncReturnTypes, got %v", out.FuncReturnTypes)
	}
}
