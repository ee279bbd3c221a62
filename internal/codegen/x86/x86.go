// Package x86 translates an optimized IR module into x86-64 NASM
// assembly targeting ELF64, assembled with `nasm -f elf64` and linked
// with `gcc -no-pie` (spec.md §4.6, §6).
package x86

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/minic-lang/minic/internal/ir"
)

// argRegisters are the System V AMD64 integer argument registers.
// A call with more than six arguments is a hard, documented limit
// (spec.md §9): arguments beyond the sixth are silently dropped.
var argRegisters = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// variadicCallees are known to accept a variable argument count, so a
// call to one must clear rax before the call per the AMD64 ABI.
var variadicCallees = map[string]bool{"printf": true, "scanf": true}

// Generate renders module as a complete NASM source file.
func Generate(module *ir.Module) string {
	var b strings.Builder

	b.WriteString("bits 64\n")
	b.WriteString("default rel\n\n")
	b.WriteString("extern printf\n")
	b.WriteString("extern scanf\n")
	b.WriteString("extern exit\n\n")

	writeData(&b, module)
	writeBSS(&b, module)

	b.WriteString("section .text\n")
	b.WriteString("global main\n\n")

	for _, fn := range splitFunctions(module.Instructions) {
		writeFunction(&b, fn)
		b.WriteString("\n")
	}

	return b.String()
}

func writeData(b *strings.Builder, module *ir.Module) {
	b.WriteString("section .data\n")
	b.WriteString("    fmt_int db \"%d\", 10, 0\n")
	b.WriteString("    fmt_str db \"%s\", 10, 0\n")
	for _, entry := range module.Strings.Entries() {
		fmt.Fprintf(b, "    %s db %s, 0\n", entry.Handle, nasmStringLiteral(entry.Raw))
	}
	b.WriteString("\n")
}

// nasmStringLiteral renders a raw quoted C-style string lexeme as a
// NASM byte-sequence literal, splicing `\n` into the `10` byte value
// (spec.md §4.6).
func nasmStringLiteral(raw string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "\""), "\"")
	inner = strings.ReplaceAll(inner, "\\n", "\", 10, \"")
	return fmt.Sprintf("\"%s\"", inner)
}

func writeBSS(b *strings.Builder, module *ir.Module) {
	b.WriteString("section .bss\n")
	names := make([]string, 0, len(module.VarTypes))
	for name := range module.VarTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "    %s resq 1\n", name)
	}
	b.WriteString("\n")
}

type function struct {
	name string
	body []ir.Instruction
}

func splitFunctions(instrs []ir.Instruction) []function {
	var fns []function
	var cur *function

	for _, instr := range instrs {
		switch instr.Op {
		case ir.FUNC_BEGIN:
			cur = &function{name: instr.Arg1}
		case ir.FUNC_END:
			if cur != nil {
				fns = append(fns, *cur)
				cur = nil
			}
		default:
			if cur != nil {
				cur.body = append(cur.body, instr)
			}
		}
	}

	return fns
}

// funcWriter tracks the lazily-grown, per-function frame-offset table
// mapping each temporary to a `qword [rbp-offset]` slot (spec.md
// §4.6: "offset allocated lazily in multiples of 8, grow-only").
type funcWriter struct {
	b             *strings.Builder
	offsets       map[string]int
	next          int
	pendingParams []string
}

func writeFunction(b *strings.Builder, fn function) {
	fmt.Fprintf(b, "%s:\n", fn.name)
	b.WriteString("    push rbp\n")
	b.WriteString("    mov rbp, rsp\n")
	b.WriteString("    sub rsp, 256\n")

	fw := &funcWriter{b: b, offsets: make(map[string]int)}
	for i, instr := range fn.body {
		if instr.Op == ir.PARAM_DECLARE {
			fw.writeParamDeclare(instr, i)
			continue
		}
		fw.write(instr)
	}

	b.WriteString("    mov rsp, rbp\n")
	b.WriteString("    pop rbp\n")
	b.WriteString("    ret\n")
}

// writeParamDeclare copies an incoming argument register into the
// parameter's frame slot, by its position among PARAM_DECLARE
// instructions seen so far in this function.
func (fw *funcWriter) writeParamDeclare(instr ir.Instruction, paramIndex int) {
	slot := fw.slotFor(instr.Arg2)
	if paramIndex < len(argRegisters) {
		fmt.Fprintf(fw.b, "    mov %s, %s\n", slot, argRegisters[paramIndex])
	}
}

// slotFor returns the operand's x86 addressing form: a numeric
// literal passes through, an interned string handle becomes a
// RIP-relative symbol reference, a temporary is a lazily allocated
// stack slot, and anything else is BSS-resident (spec.md §4.6).
func (fw *funcWriter) slotFor(name string) string {
	if name == "" {
		return ""
	}
	if isLiteral(name) {
		return name
	}
	if isIntern(name) {
		return name
	}
	if isTempName(name) {
		offset, ok := fw.offsets[name]
		if !ok {
			fw.next += 8
			offset = fw.next
			fw.offsets[name] = offset
		}
		return fmt.Sprintf("qword [rbp-%d]", offset)
	}
	return fmt.Sprintf("qword [%s]", name)
}

func isLiteral(name string) bool {
	_, err := strconv.ParseFloat(name, 64)
	return err == nil
}

func isIntern(name string) bool {
	if !strings.HasPrefix(name, "STR") || len(name) < 4 {
		return false
	}
	_, err := strconv.Atoi(name[3:])
	return err == nil
}

func isTempName(name string) bool {
	if !strings.HasPrefix(name, "t") || len(name) < 2 {
		return false
	}
	_, err := strconv.Atoi(name[1:])
	return err == nil
}

func (fw *funcWriter) write(instr ir.Instruction) {
	b := fw.b

	switch instr.Op {
	case ir.LABEL:
		fmt.Fprintf(b, "%s:\n", instr.Label)
	case ir.GOTO:
		fmt.Fprintf(b, "    jmp %s\n", instr.Label)
	case ir.IF_FALSE:
		fmt.Fprintf(b, "    mov rax, %s\n", fw.slotFor(instr.Arg1))
		b.WriteString("    cmp rax, 0\n")
		fmt.Fprintf(b, "    je %s\n", instr.Label)
	case ir.IF_TRUE:
		fmt.Fprintf(b, "    mov rax, %s\n", fw.slotFor(instr.Arg1))
		b.WriteString("    cmp rax, 0\n")
		fmt.Fprintf(b, "    jne %s\n", instr.Label)
	case ir.DECLARE, ir.PARAM_DECLARE:
		// No code: BSS reservation already covers every named variable.
	case ir.ASSIGN:
		if isIntern(instr.Arg1) {
			fmt.Fprintf(b, "    lea rax, [%s]\n", instr.Arg1)
		} else {
			fmt.Fprintf(b, "    mov rax, %s\n", fw.slotFor(instr.Arg1))
		}
		fmt.Fprintf(b, "    mov %s, rax\n", fw.slotFor(instr.Result))
	case ir.ADD, ir.SUB, ir.MUL, ir.AND, ir.OR:
		fw.writeSimpleBinary(instr)
	case ir.DIV, ir.MOD:
		fw.writeDivMod(instr)
	case ir.EQ, ir.NE, ir.LT, ir.GT, ir.LE, ir.GE:
		fw.writeComparison(instr)
	case ir.NOT:
		fmt.Fprintf(b, "    mov rax, %s\n", fw.slotFor(instr.Arg1))
		b.WriteString("    cmp rax, 0\n")
		b.WriteString("    sete al\n")
		b.WriteString("    movzx rax, al\n")
		fmt.Fprintf(b, "    mov %s, rax\n", fw.slotFor(instr.Result))
	case ir.PARAM:
		fw.pendingParams = append(fw.pendingParams, instr.Arg1)
	case ir.CALL:
		fw.writeCall(instr)
	case ir.RETURN:
		if instr.Arg1 != "" {
			fmt.Fprintf(b, "    mov rax, %s\n", fw.slotFor(instr.Arg1))
		}
		b.WriteString("    mov rsp, rbp\n")
		b.WriteString("    pop rbp\n")
		b.WriteString("    ret\n")
	}
}

func (fw *funcWriter) writeSimpleBinary(instr ir.Instruction) {
	b := fw.b
	op := map[ir.Opcode]string{ir.ADD: "add", ir.SUB: "sub", ir.MUL: "imul", ir.AND: "and", ir.OR: "or"}[instr.Op]
	fmt.Fprintf(b, "    mov rax, %s\n", fw.slotFor(instr.Arg1))
	fmt.Fprintf(b, "    %s rax, %s\n", op, fw.slotFor(instr.Arg2))
	fmt.Fprintf(b, "    mov %s, rax\n", fw.slotFor(instr.Result))
}

func (fw *funcWriter) writeDivMod(instr ir.Instruction) {
	b := fw.b
	fmt.Fprintf(b, "    mov rax, %s\n", fw.slotFor(instr.Arg1))
	b.WriteString("    cqo\n")
	fmt.Fprintf(b, "    mov rbx, %s\n", fw.slotFor(instr.Arg2))
	b.WriteString("    idiv rbx\n")
	if instr.Op == ir.DIV {
		fmt.Fprintf(b, "    mov %s, rax\n", fw.slotFor(instr.Result))
	} else {
		fmt.Fprintf(b, "    mov %s, rdx\n", fw.slotFor(instr.Result))
	}
}

func (fw *funcWriter) writeComparison(instr ir.Instruction) {
	b := fw.b
	setcc := map[ir.Opcode]string{
		ir.EQ: "sete", ir.NE: "setne", ir.LT: "setl", ir.GT: "setg", ir.LE: "setle", ir.GE: "setge",
	}[instr.Op]
	fmt.Fprintf(b, "    mov rax, %s\n", fw.slotFor(instr.Arg1))
	fmt.Fprintf(b, "    cmp rax, %s\n", fw.slotFor(instr.Arg2))
	fmt.Fprintf(b, "    %s al\n", setcc)
	b.WriteString("    movzx rax, al\n")
	fmt.Fprintf(b, "    mov %s, rax\n", fw.slotFor(instr.Result))
}

func (fw *funcWriter) writeCall(instr ir.Instruction) {
	b := fw.b
	params := fw.pendingParams
	fw.pendingParams = nil

	for i, p := range params {
		if i >= len(argRegisters) {
			break // beyond six arguments is undefined (spec.md §9)
		}
		if isIntern(p) {
			fmt.Fprintf(b, "    lea %s, [%s]\n", argRegisters[i], p)
		} else {
			fmt.Fprintf(b, "    mov %s, %s\n", argRegisters[i], fw.slotFor(p))
		}
	}

	if variadicCallees[instr.Arg1] {
		b.WriteString("    xor rax, rax\n")
	}
	fmt.Fprintf(b, "    call %s\n", instr.Arg1)

	if instr.Result != "" {
		fmt.Fprintf(b, "    mov %s, rax\n", fw.slotFor(instr.Result))
	}
}
