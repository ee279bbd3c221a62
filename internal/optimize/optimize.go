// Package optimize implements the three conservative, level-gated IR
// passes of spec.md §4.5: constant folding, dead temporary elimination,
// and strength reduction.
package optimize

import (
	"math"
	"strconv"
	"strings"

	"github.com/minic-lang/minic/internal/ir"
)

// Counts reports how many instructions each pass rewrote or dropped.
type Counts struct {
	Folded          int
	DeadEliminated  int
	StrengthReduced int
}

// Run applies the passes gated at level to module's instruction stream
// and returns a new Module (the optimizer never mutates its input —
// spec.md §9 "Ownership") plus the per-pass counts.
//
// Level 0 is the identity transform. Level 1 enables constant folding
// and dead-temporary elimination. Level 2 additionally enables strength
// reduction.
func Run(module *ir.Module, level int) (*ir.Module, Counts) {
	instrs := append([]ir.Instruction(nil), module.Instructions...)
	var counts Counts

	if level >= 1 {
		instrs, counts.Folded = foldConstants(instrs)
		instrs, counts.DeadEliminated = eliminateDeadTemps(instrs)
	}
	if level >= 2 {
		instrs, counts.StrengthReduced = reduceStrength(instrs)
		// Strength reduction can turn an ADD/MUL into an ASSIGN of an
		// operand that is itself now a dead temp; sweep once more.
		var again int
		instrs, again = eliminateDeadTemps(instrs)
		counts.DeadEliminated += again
	}

	return &ir.Module{
		Instructions:    instrs,
		Strings:         module.Strings,
		VarTypes:        module.VarTypes,
		FuncReturnTypes: module.FuncReturnTypes,
	}, counts
}

// isLiteral reports whether operand is a numeric literal rather than a
// variable/temp/label reference. spec.md §4.5: "any operand whose first
// character is an ASCII letter is, by definition, a variable."
func isLiteral(operand string) bool {
	if operand == "" {
		return false
	}
	first := operand[0]
	if (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z') || first == '_' {
		return false
	}
	return true
}

func isIntLiteral(operand string) bool {
	_, err := strconv.ParseInt(operand, 10, 64)
	return err == nil
}

// foldConstants replaces an arithmetic instruction whose both operands
// are numeric literals with an ASSIGN of the computed value. Comparisons
// are never folded (spec.md §4.5: preserves runtime semantics of tests
// like `if (1 == 1)`). Division/modulo by a literal zero divisor is left
// untouched rather than folded.
func foldConstants(instrs []ir.Instruction) ([]ir.Instruction, int) {
	out := make([]ir.Instruction, len(instrs))
	count := 0

	for i, instr := range instrs {
		if !ir.ArithmeticOpcodes[instr.Op] || !isLiteral(instr.Arg1) || !isLiteral(instr.Arg2) {
			out[i] = instr
			continue
		}

		value, ok := foldArithmetic(instr.Op, instr.Arg1, instr.Arg2)
		if !ok {
			out[i] = instr
			continue
		}

		out[i] = ir.Instruction{Op: ir.ASSIGN, Arg1: value, Result: instr.Result}
		count++
	}

	return out, count
}

// foldArithmetic computes op(a, b) using integer arithmetic when both
// operands are integer literals (floor division for DIV), float
// arithmetic otherwise. A float result with an integral value is
// coerced back to its integer textual form for display (spec.md §4.5).
func foldArithmetic(op ir.Opcode, a, b string) (string, bool) {
	if isIntLiteral(a) && isIntLiteral(b) {
		x, _ := strconv.ParseInt(a, 10, 64)
		y, _ := strconv.ParseInt(b, 10, 64)
		switch op {
		case ir.ADD:
			return strconv.FormatInt(x+y, 10), true
		case ir.SUB:
			return strconv.FormatInt(x-y, 10), true
		case ir.MUL:
			return strconv.FormatInt(x*y, 10), true
		case ir.DIV:
			if y == 0 {
				return "", false
			}
			return strconv.FormatInt(floorDiv(x, y), 10), true
		case ir.MOD:
			if y == 0 {
				return "", false
			}
			return strconv.FormatInt(floorMod(x, y), 10), true
		}
		return "", false
	}

	x, errX := strconv.ParseFloat(a, 64)
	y, errY := strconv.ParseFloat(b, 64)
	if errX != nil || errY != nil {
		return "", false
	}

	var result float64
	switch op {
	case ir.ADD:
		result = x + y
	case ir.SUB:
		result = x - y
	case ir.MUL:
		result = x * y
	case ir.DIV:
		if y == 0 {
			return "", false
		}
		result = x / y
	case ir.MOD:
		if y == 0 {
			return "", false
		}
		result = math.Mod(x, y)
		if result != 0 && ((result < 0) != (y < 0)) {
			result += y
		}
	default:
		return "", false
	}

	if result == float64(int64(result)) {
		return strconv.FormatInt(int64(result), 10), true
	}
	return strconv.FormatFloat(result, 'g', -1, 64), true
}

func floorDiv(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

func floorMod(x, y int64) int64 {
	m := x % y
	if m != 0 && ((m < 0) != (y < 0)) {
		m += y
	}
	return m
}

// eliminateDeadTemps drops any ASSIGN whose result is a temp (`t<n>`)
// never referenced as an operand elsewhere in the stream (spec.md
// §4.5). No other opcode is eliminated.
func eliminateDeadTemps(instrs []ir.Instruction) ([]ir.Instruction, int) {
	referenced := make(map[string]bool)
	for _, instr := range instrs {
		for _, operand := range []string{instr.Arg1, instr.Arg2} {
			if operand != "" && !isLiteral(operand) {
				referenced[operand] = true
			}
		}
	}

	var out []ir.Instruction
	count := 0
	for _, instr := range instrs {
		if instr.Op == ir.ASSIGN && isTemp(instr.Result) && !referenced[instr.Result] {
			count++
			continue
		}
		out = append(out, instr)
	}
	return out, count
}

func isTemp(name string) bool {
	if !strings.HasPrefix(name, "t") || len(name) < 2 {
		return false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// reduceStrength rewrites a handful of arithmetic identities into
// cheaper equivalents (spec.md §4.5):
//
//	MUL x, 0 -> ASSIGN 0
//	MUL x, 1 -> ASSIGN x
//	MUL x, 2 -> ADD x, x
//	ADD x, 0 or ADD 0, x -> ASSIGN of the non-zero operand
func reduceStrength(instrs []ir.Instruction) ([]ir.Instruction, int) {
	out := make([]ir.Instruction, len(instrs))
	count := 0

	for i, instr := range instrs {
		switch {
		case instr.Op == ir.MUL && instr.Arg2 == "0":
			out[i] = ir.Instruction{Op: ir.ASSIGN, Arg1: "0", Result: instr.Result}
			count++
		case instr.Op == ir.MUL && instr.Arg1 == "0":
			out[i] = ir.Instruction{Op: ir.ASSIGN, Arg1: "0", Result: instr.Result}
			count++
		case instr.Op == ir.MUL && instr.Arg2 == "1":
			out[i] = ir.Instruction{Op: ir.ASSIGN, Arg1: instr.Arg1, Result: instr.Result}
			count++
		case instr.Op == ir.MUL && instr.Arg1 == "1":
			out[i] = ir.Instruction{Op: ir.ASSIGN, Arg1: instr.Arg2, Result: instr.Result}
			count++
		case instr.Op == ir.MUL && instr.Arg2 == "2":
			out[i] = ir.Instruction{Op: ir.ADD, Arg1: instr.Arg1, Arg2: instr.Arg1, Result: instr.Result}
			count++
		case instr.Op == ir.MUL && instr.Arg1 == "2":
			out[i] = ir.Instruction{Op: ir.ADD, Arg1: instr.Arg2, Arg2: instr.Arg2, Result: instr.Result}
			count++
		case instr.Op == ir.ADD && instr.Arg2 == "0":
			out[i] = ir.Instruction{Op: ir.ASSIGN, Arg1: instr.Arg1, Result: instr.Result}
			count++
		case instr.Op == ir.ADD && instr.Arg1 == "0":
			out[i] = ir.Instruction{Op: ir.ASSIGN, Arg1: instr.Arg2, Result: instr.Result}
			count++
		default:
			out[i] = instr
		}
	}

	return out, count
}
