package ir

import (
	"fmt"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/diag"
)

var binaryOpcodes = map[string]Opcode{"+": ADD, "-": SUB, "*": MUL, "/": DIV, "%": MOD}
var comparisonOpcodes = map[string]Opcode{"==": EQ, "!=": NE, "<": LT, ">": GT, "<=": LE, ">=": GE}
var compoundArith = map[ast.CompoundAssignOp]Opcode{
	ast.AddAssign: ADD, ast.SubAssign: SUB, ast.MulAssign: MUL, ast.DivAssign: DIV,
}

// Module is everything the IR generator hands to the optimizer and
// code generator: the flat instruction stream, the interned string
// table, and the var→declared-type side table the C backend needs
// (spec.md §4.4, §9 "Ownership": these are owned by the generator and
// borrowed read-only downstream).
type Module struct {
	Instructions    []Instruction
	Strings         *StringTable
	VarTypes        map[string]string
	FuncReturnTypes map[string]string
}

// Generator lowers an AST to a Module. temp numbering restarts at every
// FUNC_BEGIN; label and string numbering are process-wide monotonic
// (spec.md §4.4).
type Generator struct {
	instrs          []Instruction
	strings         *StringTable
	varTypes        map[string]string
	funcReturnTypes map[string]string
	tempCounter     int
	labelCounter    int
	continueTo      []string
	breakTo         []string
}

// Generate lowers program into a Module. The IR generator trusts its
// AST input (the semantic stage already rejected malformed programs)
// and never itself produces diagnostics (spec.md §7); the return slice
// exists only to keep every phase's signature uniform.
func Generate(program *ast.Program) (*Module, []*diag.Diagnostic) {
	g := &Generator{strings: NewStringTable(), varTypes: make(map[string]string), funcReturnTypes: make(map[string]string)}
	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok {
			g.lowerFunction(fn)
			continue
		}
		g.lowerStatement(stmt)
	}
	return &Module{
		Instructions:    g.instrs,
		Strings:         g.strings,
		VarTypes:        g.varTypes,
		FuncReturnTypes: g.funcReturnTypes,
	}, nil
}

func (g *Generator) emit(instr Instruction) {
	g.instrs = append(g.instrs, instr)
}

func (g *Generator) newTemp() string {
	g.tempCounter++
	return fmt.Sprintf("t%d", g.tempCounter)
}

func (g *Generator) newLabelSet() int {
	g.labelCounter++
	return g.labelCounter
}

func (g *Generator) lowerFunction(fn *ast.FunctionDeclaration) {
	g.tempCounter = 0
	g.funcReturnTypes[fn.Name] = fn.ReturnType
	g.emit(Instruction{Op: FUNC_BEGIN, Arg1: fn.Name})

	for _, param := range fn.Parameters {
		g.emit(Instruction{Op: PARAM_DECLARE, Arg1: param.Type, Arg2: param.Name})
		g.varTypes[param.Name] = param.Type
	}

	for _, stmt := range fn.Body.Statements {
		g.lowerStatement(stmt)
	}

	if len(g.instrs) == 0 || g.instrs[len(g.instrs)-1].Op != RETURN {
		if fn.ReturnType == "void" {
			g.emit(Instruction{Op: RETURN})
		} else {
			g.emit(Instruction{Op: RETURN, Arg1: "0"})
		}
	}

	g.emit(Instruction{Op: FUNC_END, Arg1: fn.Name})
}

// lowerStatement dispatches on the closed statement-node set. Unknown
// node types here mean a malformed AST slipped past the semantic
// stage; spec.md §7 treats that as outside the compiler's error model,
// so it is simply a silent no-op rather than a panic.
func (g *Generator) lowerStatement(n ast.Node) {
	switch node := n.(type) {
	case *ast.VarDeclaration:
		g.lowerVarDeclaration(node)
	case *ast.Assignment:
		rhs := g.lowerExpr(node.Value)
		g.emit(Instruction{Op: ASSIGN, Arg1: rhs, Result: node.Identifier})
	case *ast.CompoundAssignment:
		g.lowerCompoundAssignment(node)
	case *ast.Block:
		for _, stmt := range node.Statements {
			g.lowerStatement(stmt)
		}
	case *ast.IfStatement:
		g.lowerIf(node)
	case *ast.WhileStatement:
		g.lowerWhile(node)
	case *ast.ForStatement:
		g.lowerFor(node)
	case *ast.BreakStatement:
		g.lowerBreak()
	case *ast.ContinueStatement:
		g.lowerContinue()
	case *ast.ReturnStatement:
		g.lowerReturn(node)
	default:
		// An expression used as a statement; lower for side effects
		// (e.g. a bare function call) and discard the result operand.
		g.lowerExpr(n)
	}
}

func (g *Generator) lowerVarDeclaration(vd *ast.VarDeclaration) {
	g.varTypes[vd.Identifier] = vd.Type
	g.emit(Instruction{Op: DECLARE, Arg1: vd.Type, Arg2: vd.Identifier})

	var value string
	if vd.Initializer != nil {
		value = g.lowerExpr(vd.Initializer)
	} else if vd.Type == "float" {
		value = "0.0"
	} else {
		value = "0"
	}
	g.emit(Instruction{Op: ASSIGN, Arg1: value, Result: vd.Identifier})
}

func (g *Generator) lowerCompoundAssignment(ca *ast.CompoundAssignment) {
	rhs := g.lowerExpr(ca.Value)
	temp := g.newTemp()
	g.emit(Instruction{Op: compoundArith[ca.Operator], Arg1: ca.Identifier, Arg2: rhs, Result: temp})
	g.emit(Instruction{Op: ASSIGN, Arg1: temp, Result: ca.Identifier})
}

func (g *Generator) lowerIf(is *ast.IfStatement) {
	n := g.newLabelSet()
	endLabel := fmt.Sprintf("ENDIF%d", n)
	cond := g.lowerExpr(is.Condition)

	if is.Else == nil {
		g.emit(Instruction{Op: IF_FALSE, Arg1: cond, Label: endLabel})
		g.lowerStatement(is.Then)
		g.emit(Instruction{Op: LABEL, Label: endLabel})
		return
	}

	elseLabel := fmt.Sprintf("ELSE%d", n)
	g.emit(Instruction{Op: IF_FALSE, Arg1: cond, Label: elseLabel})
	g.lowerStatement(is.Then)
	g.emit(Instruction{Op: GOTO, Label: endLabel})
	g.emit(Instruction{Op: LABEL, Label: elseLabel})
	g.lowerStatement(is.Else)
	g.emit(Instruction{Op: LABEL, Label: endLabel})
}

func (g *Generator) lowerWhile(ws *ast.WhileStatement) {
	n := g.newLabelSet()
	startLabel := fmt.Sprintf("WHILE_START%d", n)
	endLabel := fmt.Sprintf("WHILE_END%d", n)

	g.emit(Instruction{Op: LABEL, Label: startLabel})
	cond := g.lowerExpr(ws.Condition)
	g.emit(Instruction{Op: IF_FALSE, Arg1: cond, Label: endLabel})

	g.continueTo = append(g.continueTo, startLabel)
	g.breakTo = append(g.breakTo, endLabel)
	g.lowerStatement(ws.Body)
	g.continueTo = g.continueTo[:len(g.continueTo)-1]
	g.breakTo = g.breakTo[:len(g.breakTo)-1]

	g.emit(Instruction{Op: GOTO, Label: startLabel})
	g.emit(Instruction{Op: LABEL, Label: endLabel})
}

// lowerFor lowers the for loop with `continue` targeting the update
// clause rather than the loop test, per spec.md §4.4.
func (g *Generator) lowerFor(fs *ast.ForStatement) {
	n := g.newLabelSet()
	startLabel := fmt.Sprintf("FOR_START%d", n)
	updateLabel := fmt.Sprintf("FOR_UPDATE%d", n)
	endLabel := fmt.Sprintf("FOR_END%d", n)

	if fs.Init != nil {
		g.lowerStatement(fs.Init)
	}

	g.emit(Instruction{Op: LABEL, Label: startLabel})
	if fs.Condition != nil {
		cond := g.lowerExpr(fs.Condition)
		g.emit(Instruction{Op: IF_FALSE, Arg1: cond, Label: endLabel})
	}

	g.continueTo = append(g.continueTo, updateLabel)
	g.breakTo = append(g.breakTo, endLabel)
	g.lowerStatement(fs.Body)
	g.continueTo = g.continueTo[:len(g.continueTo)-1]
	g.breakTo = g.breakTo[:len(g.breakTo)-1]

	g.emit(Instruction{Op: LABEL, Label: updateLabel})
	if fs.Update != nil {
		g.lowerStatement(fs.Update)
	}
	g.emit(Instruction{Op: GOTO, Label: startLabel})
	g.emit(Instruction{Op: LABEL, Label: endLabel})
}

// lowerBreak/lowerContinue silently no-op outside a loop — the parser
// already reported that as a syntax error (spec.md §4.4).
func (g *Generator) lowerBreak() {
	if len(g.breakTo) == 0 {
		return
	}
	g.emit(Instruction{Op: GOTO, Label: g.breakTo[len(g.breakTo)-1]})
}

func (g *Generator) lowerContinue() {
	if len(g.continueTo) == 0 {
		return
	}
	g.emit(Instruction{Op: GOTO, Label: g.continueTo[len(g.continueTo)-1]})
}

func (g *Generator) lowerReturn(rs *ast.ReturnStatement) {
	if rs.Value == nil {
		g.emit(Instruction{Op: RETURN})
		return
	}
	value := g.lowerExpr(rs.Value)
	g.emit(Instruction{Op: RETURN, Arg1: value})
}

// lowerExpr lowers an expression node to the operand string that
// represents its value: a literal, a variable/temp name, or a freshly
// minted temp holding the result of a computed instruction.
func (g *Generator) lowerExpr(n ast.Node) string {
	switch node := n.(type) {
	case *ast.Number:
		return node.Lexeme
	case *ast.StringLiteral:
		return g.strings.Intern(node.Raw)
	case *ast.Identifier:
		return node.Name
	case *ast.BinaryOp:
		left := g.lowerExpr(node.Left)
		right := g.lowerExpr(node.Right)
		temp := g.newTemp()
		g.emit(Instruction{Op: binaryOpcodes[node.Op], Arg1: left, Arg2: right, Result: temp})
		return temp
	case *ast.ComparisonOp:
		left := g.lowerExpr(node.Left)
		right := g.lowerExpr(node.Right)
		temp := g.newTemp()
		g.emit(Instruction{Op: comparisonOpcodes[node.Op], Arg1: left, Arg2: right, Result: temp})
		return temp
	case *ast.LogicalOp:
		return g.lowerLogicalOp(node)
	case *ast.FunctionCall:
		return g.lowerCall(node)
	default:
		return ""
	}
}

func (g *Generator) lowerLogicalOp(lo *ast.LogicalOp) string {
	if lo.Op == "!" {
		operand := g.lowerExpr(lo.Left)
		temp := g.newTemp()
		g.emit(Instruction{Op: NOT, Arg1: operand, Result: temp})
		return temp
	}
	left := g.lowerExpr(lo.Left)
	right := g.lowerExpr(lo.Right)
	op := AND
	if lo.Op == "||" {
		op = OR
	}
	temp := g.newTemp()
	g.emit(Instruction{Op: op, Arg1: left, Arg2: right, Result: temp})
	return temp
}

func (g *Generator) lowerCall(fc *ast.FunctionCall) string {
	operands := make([]string, len(fc.Args))
	for i, arg := range fc.Args {
		operands[i] = g.lowerExpr(arg)
	}
	for _, operand := range operands {
		g.emit(Instruction{Op: PARAM, Arg1: operand})
	}
	temp := g.newTemp()
	g.emit(Instruction{Op: CALL, Arg1: fc.Name, Arg2: fmt.Sprintf("%d", len(operands)), Result: temp})
	return temp
}
