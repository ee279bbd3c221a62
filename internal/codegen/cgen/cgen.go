// Package cgen translates an optimized IR module into a C translation
// unit (spec.md §4.6). Unlike the source, the emitted function
// signature preserves the declared return type rather than forcing
// `int` (spec.md §9 open question).
package cgen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/minic-lang/minic/internal/ir"
)

// Generate renders module as a complete, self-contained C source file.
func Generate(module *ir.Module) string {
	var b strings.Builder

	b.WriteString("#include <stdio.h>\n")
	b.WriteString("#include <stdlib.h>\n\n")

	for _, fn := range splitFunctions(module.Instructions) {
		writeFunction(&b, fn, module)
		b.WriteString("\n")
	}

	return b.String()
}

type function struct {
	name   string
	body   []ir.Instruction
	params []ir.Instruction // PARAM_DECLARE instructions, in order
}

// splitFunctions groups the flat instruction stream into per-function
// runs bounded by FUNC_BEGIN/FUNC_END (spec.md §4.6).
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
		case ir.PARAM_DECLARE:
			if cur != nil {
				cur.params = append(cur.params, instr)
				cur.body = append(cur.body, instr)
			}
		default:
			if cur != nil {
				cur.body = append(cur.body, instr)
			}
		}
	}

	return fns
}

func writeFunction(b *strings.Builder, fn function, module *ir.Module) {
	returnType, ok := module.FuncReturnTypes[fn.name]
	if !ok {
		returnType = "int"
	}

	locals, temps := collectDeclarations(fn)

	paramList := make([]string, len(fn.params))
	paramNames := make(map[string]bool, len(fn.params))
	for i, p := range fn.params {
		paramList[i] = fmt.Sprintf("%s %s", cType(p.Arg1), p.Arg2)
		paramNames[p.Arg2] = true
	}

	fmt.Fprintf(b, "%s %s(%s) {\n", cType(returnType), fn.name, strings.Join(paramList, ", "))

	for _, name := range sortedKeys(locals) {
		if paramNames[name] {
			continue
		}
		fmt.Fprintf(b, "    %s %s;\n", cType(locals[name]), name)
	}
	for _, name := range sortedTemps(temps) {
		fmt.Fprintf(b, "    int %s;\n", name)
	}

	fw := &functionWriter{b: b, module: module}
	for _, instr := range fn.body {
		if instr.Op == ir.PARAM_DECLARE {
			continue
		}
		fw.write(instr)
	}

	b.WriteString("}\n")
}

// collectDeclarations gathers local variable types (from DECLARE,
// deduplicated) and the set of temporaries referenced in fn's body
// (any operand matching t<digits> that is not a parameter or local).
func collectDeclarations(fn function) (locals map[string]string, temps map[string]bool) {
	locals = make(map[string]string)
	temps = make(map[string]bool)

	for _, instr := range fn.body {
		if instr.Op == ir.DECLARE {
			locals[instr.Arg2] = instr.Arg1
		}
	}

	isKnown := func(name string) bool {
		if name == "" || !isTempName(name) {
			return false
		}
		if _, isLocal := locals[name]; isLocal {
			return false
		}
		for _, p := range fn.params {
			if p.Arg2 == name {
				return false
			}
		}
		return true
	}

	for _, instr := range fn.body {
		for _, operand := range []string{instr.Arg1, instr.Arg2, instr.Result} {
			if isKnown(operand) {
				temps[operand] = true
			}
		}
	}

	return locals, temps
}

func isTempName(name string) bool {
	if !strings.HasPrefix(name, "t") || len(name) < 2 {
		return false
	}
	_, err := strconv.Atoi(name[1:])
	return err == nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTemps(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, _ := strconv.Atoi(keys[i][1:])
		nj, _ := strconv.Atoi(keys[j][1:])
		return ni < nj
	})
	return keys
}

func cType(t string) string {
	switch t {
	case "void":
		return "void"
	case "void*":
		return "void*"
	case "float":
		return "float"
	case "char":
		return "char"
	case "string":
		return "char*"
	default:
		return "int"
	}
}

// operand renders an IR operand as a C expression, substituting an
// interned string handle with its raw quoted lexeme (spec.md §4.6).
func operand(raw string, module *ir.Module) string {
	if raw == "" {
		return ""
	}
	for _, entry := range module.Strings.Entries() {
		if entry.Handle == raw {
			return entry.Raw
		}
	}
	return raw
}

// functionWriter holds the PARAM buffer for one function body: PARAM
// instructions accumulate their operand here until the following CALL
// flushes them into the argument list (spec.md §4.6).
type functionWriter struct {
	b             *strings.Builder
	module        *ir.Module
	pendingParams []string
}

func (fw *functionWriter) write(instr ir.Instruction) {
	a1 := operand(instr.Arg1, fw.module)
	a2 := operand(instr.Arg2, fw.module)
	b := fw.b

	switch instr.Op {
	case ir.LABEL:
		fmt.Fprintf(b, "%s:;\n", instr.Label)
	case ir.GOTO:
		fmt.Fprintf(b, "    goto %s;\n", instr.Label)
	case ir.IF_FALSE:
		fmt.Fprintf(b, "    if (!(%s)) goto %s;\n", a1, instr.Label)
	case ir.IF_TRUE:
		fmt.Fprintf(b, "    if (%s) goto %s;\n", a1, instr.Label)
	case ir.DECLARE:
		// Declarations are hoisted to the top of the function.
	case ir.ASSIGN:
		fmt.Fprintf(b, "    %s = %s;\n", instr.Result, a1)
	case ir.PARAM:
		fw.pendingParams = append(fw.pendingParams, a1)
	case ir.CALL:
		args := strings.Join(fw.pendingParams, ", ")
		fw.pendingParams = nil
		if instr.Result != "" {
			fmt.Fprintf(b, "    %s = %s(%s);\n", instr.Result, instr.Arg1, args)
		} else {
			fmt.Fprintf(b, "    %s(%s);\n", instr.Arg1, args)
		}
	case ir.RETURN:
		if instr.Arg1 == "" {
			b.WriteString("    return;\n")
		} else {
			fmt.Fprintf(b, "    return %s;\n", a1)
		}
	case ir.NOT:
		fmt.Fprintf(b, "    %s = !(%s);\n", instr.Result, a1)
	case ir.ADD, ir.SUB, ir.MUL, ir.DIV, ir.MOD, ir.EQ, ir.NE, ir.LT, ir.GT, ir.LE, ir.GE, ir.AND, ir.OR:
		fmt.Fprintf(b, "    %s = %s %s %s;\n", instr.Result, a1, cOperator(instr.Op), a2)
	}
}

func cOperator(op ir.Opcode) string {
	switch op {
	case ir.ADD:
		return "+"
	case ir.SUB:
		return "-"
	case ir.MUL:
		return "*"
	case ir.DIV:
		return "/"
	case ir.MOD:
		return "%"
	case ir.EQ:
		return "=="
	case ir.NE:
		return "!="
	case ir.LT:
		return "<"
	case ir.GT:
		return ">"
	case ir.LE:
		return "<="
	case ir.GE:
		return ">="
	case ir.AND:
		return "&&"
	case ir.OR:
		return "||"
	default:
		return "?"
	}
}
