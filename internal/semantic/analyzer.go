// Package semantic implements the scoped type/declaration checker of
// spec.md §4.3: a visitor over the AST that walks a LIFO scope stack,
// checking declarations, lookups, and the int→float widening rule.
package semantic

import (
	"strings"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/diag"
	"github.com/minic-lang/minic/internal/token"
)

const functionTypePrefix = "function:"

// functionReturnType reports the return type of a "function:<T>" symbol
// type, per spec.md §3's semantic Symbol Table representation.
func functionReturnType(typ string) (string, bool) {
	if !strings.HasPrefix(typ, functionTypePrefix) {
		return "", false
	}
	return strings.TrimPrefix(typ, functionTypePrefix), true
}

const (
	typeInt    = "int"
	typeFloat  = "float"
	typeChar   = "char"
	typeVoid   = "void"
	typeVoidP  = "void*"
	typeString = "string"
)

func isNumeric(t string) bool { return t == typeInt || t == typeFloat }

// Analyzer walks a Program, accumulating diagnostics.
type Analyzer struct {
	scopes            *scopeStack
	diags             []*diag.Diagnostic
	currentReturnType string
	inFunction        bool
	arity             map[string]int
	variadic          map[string]bool
}

// New creates an Analyzer with the stdlib seeded in the outermost scope
// (spec.md §4.3: printf/scanf as function:int).
func New() *Analyzer {
	a := &Analyzer{scopes: newScopeStack(), arity: make(map[string]int), variadic: make(map[string]bool)}
	a.scopes.declare("printf", "function:int")
	a.scopes.declare("scanf", "function:int")
	a.variadic["printf"] = true
	a.variadic["scanf"] = true
	return a
}

// Analyze runs a full semantic pass over program, returning accumulated
// diagnostics. A non-empty error-severity result means the pipeline
// halts before IR generation (spec.md §7).
func Analyze(program *ast.Program) []*diag.Diagnostic {
	a := New()
	a.visitProgram(program)
	return a.diags
}

func (a *Analyzer) errorf(pos token.Position, format string, args ...any) {
	a.diags = append(a.diags, diag.New(diag.Semantic, pos, format, args...))
}

func (a *Analyzer) warnf(pos token.Position, format string, args ...any) {
	a.diags = append(a.diags, diag.Warning(diag.Semantic, pos, format, args...))
}

func (a *Analyzer) visitProgram(p *ast.Program) {
	for _, stmt := range p.Statements {
		a.visit(stmt)
	}
}

// visit is the exhaustive type switch that replaces the source's
// reflective generic_visit dispatch (spec.md §9).
func (a *Analyzer) visit(n ast.Node) string {
	switch node := n.(type) {
	case *ast.FunctionDeclaration:
		a.visitFunctionDeclaration(node)
		return ""
	case *ast.VarDeclaration:
		a.visitVarDeclaration(node)
		return ""
	case *ast.Assignment:
		a.visitAssignment(node)
		return ""
	case *ast.CompoundAssignment:
		a.visitCompoundAssignment(node)
		return ""
	case *ast.Block:
		a.scopes.withScope(func() {
			for _, stmt := range node.Statements {
				a.visit(stmt)
			}
		})
		return ""
	case *ast.IfStatement:
		a.visit(node.Condition)
		a.visit(node.Then)
		if node.Else != nil {
			a.visit(node.Else)
		}
		return ""
	case *ast.WhileStatement:
		a.visit(node.Condition)
		a.visit(node.Body)
		return ""
	case *ast.ForStatement:
		a.scopes.withScope(func() {
			if node.Init != nil {
				a.visit(node.Init)
			}
			if node.Condition != nil {
				a.visit(node.Condition)
			}
			if node.Update != nil {
				a.visit(node.Update)
			}
			a.visit(node.Body)
		})
		return ""
	case *ast.BreakStatement, *ast.ContinueStatement:
		return ""
	case *ast.ReturnStatement:
		a.visitReturnStatement(node)
		return ""
	case *ast.Number:
		if containsDot(node.Lexeme) {
			return typeFloat
		}
		return typeInt
	case *ast.StringLiteral:
		return typeString
	case *ast.Identifier:
		return a.visitIdentifier(node)
	case *ast.BinaryOp:
		return a.visitBinaryOp(node)
	case *ast.ComparisonOp:
		return a.visitComparisonOp(node)
	case *ast.LogicalOp:
		a.visitLogicalOp(node)
		return typeInt
	case *ast.FunctionCall:
		return a.visitFunctionCall(node)
	default:
		return ""
	}
}

func containsDot(lexeme string) bool {
	for _, r := range lexeme {
		if r == '.' {
			return true
		}
	}
	return false
}

func (a *Analyzer) visitFunctionDeclaration(fd *ast.FunctionDeclaration) {
	a.scopes.declare(fd.Name, "function:"+fd.ReturnType)
	a.arity[fd.Name] = len(fd.Parameters)

	a.scopes.withScope(func() {
		for _, param := range fd.Parameters {
			a.scopes.declare(param.Name, param.Type)
		}

		prevReturn, prevInFunc := a.currentReturnType, a.inFunction
		a.currentReturnType, a.inFunction = fd.ReturnType, true

		// The function body's block does NOT open a second scope —
		// parameters and locals share one scope (spec.md §4.3).
		for _, stmt := range fd.Body.Statements {
			a.visit(stmt)
		}

		a.currentReturnType, a.inFunction = prevReturn, prevInFunc
	})
}

func (a *Analyzer) visitVarDeclaration(vd *ast.VarDeclaration) {
	if !a.scopes.declare(vd.Identifier, vd.Type) {
		a.errorf(vd.Position, "variable '%s' already declared", vd.Identifier)
	}
	if vd.Initializer == nil {
		return
	}
	initType := a.visit(vd.Initializer)
	a.checkAssignable(vd.Position, vd.Type, initType, vd.Identifier)
}

// checkAssignable enforces spec.md §4.3's widening rule: declared float
// accepts an int initializer/RHS; any other mismatch is an error.
func (a *Analyzer) checkAssignable(pos token.Position, declared, actual, name string) {
	if actual == "" || declared == actual {
		return
	}
	if declared == typeFloat && actual == typeInt {
		return
	}
	a.errorf(pos, "type mismatch assigning %s to '%s' of type %s", actual, name, declared)
}

func (a *Analyzer) visitAssignment(asn *ast.Assignment) {
	declared, ok := a.scopes.lookup(asn.Identifier)
	if !ok {
		a.errorf(asn.Position, "variable '%s' not declared", asn.Identifier)
		a.visit(asn.Value)
		return
	}
	actual := a.visit(asn.Value)
	a.checkAssignable(asn.Position, declared, actual, asn.Identifier)
}

func (a *Analyzer) visitCompoundAssignment(ca *ast.CompoundAssignment) {
	declared, ok := a.scopes.lookup(ca.Identifier)
	if !ok {
		a.errorf(ca.Position, "variable '%s' not declared", ca.Identifier)
		a.visit(ca.Value)
		return
	}
	if !isNumeric(declared) {
		a.errorf(ca.Position, "compound assignment to non-numeric variable '%s'", ca.Identifier)
	}
	actual := a.visit(ca.Value)
	a.checkAssignable(ca.Position, declared, actual, ca.Identifier)
}

func (a *Analyzer) visitReturnStatement(rs *ast.ReturnStatement) {
	if rs.Value == nil {
		return
	}
	actual := a.visit(rs.Value)
	a.checkAssignable(rs.Position, a.currentReturnType, actual, "return value")
}

func (a *Analyzer) visitIdentifier(id *ast.Identifier) string {
	typ, ok := a.scopes.lookup(id.Name)
	if !ok {
		a.errorf(id.Position, "variable '%s' used before declaration", id.Name)
		return ""
	}
	if ret, ok := functionReturnType(typ); ok {
		return ret
	}
	return typ
}

func (a *Analyzer) visitBinaryOp(bo *ast.BinaryOp) string {
	left := a.visit(bo.Left)
	right := a.visit(bo.Right)

	if left != "" && !isNumeric(left) || right != "" && !isNumeric(right) {
		a.errorf(bo.Position, "operator '%s' requires numeric operands", bo.Op)
	}

	if left == right {
		return left
	}
	if (left == typeInt && right == typeFloat) || (left == typeFloat && right == typeInt) {
		return typeFloat
	}
	if left == "" {
		return right
	}
	return left
}

func (a *Analyzer) visitComparisonOp(co *ast.ComparisonOp) string {
	left := a.visit(co.Left)
	right := a.visit(co.Right)

	mixedNumeric := isNumeric(left) && isNumeric(right)
	if left != "" && right != "" && left != right && !mixedNumeric {
		a.errorf(co.Position, "type mismatch in comparison: %s vs %s", left, right)
	}
	return typeInt
}

func (a *Analyzer) visitLogicalOp(lo *ast.LogicalOp) {
	a.visit(lo.Left)
	if lo.Right != nil {
		a.visit(lo.Right)
	}
}

// visitFunctionCall does not reject a call on argument count or type
// mismatch (spec.md §4.3, §9: arity errors still surface only at
// C-compile time) but does report a non-fatal arity mismatch as a
// warning when the callee's declared parameter count is known and the
// callee isn't variadic — additive diagnostic text that never changes
// pass/fail behavior.
func (a *Analyzer) visitFunctionCall(fc *ast.FunctionCall) string {
	typ, ok := a.scopes.lookup(fc.Name)
	if !ok {
		a.errorf(fc.Position, "function '%s' not declared", fc.Name)
	} else if want, known := a.arity[fc.Name]; known && !a.variadic[fc.Name] && want != len(fc.Args) {
		a.warnf(fc.Position, "function '%s' called with %d argument(s), declared with %d", fc.Name, len(fc.Args), want)
	}
	for _, arg := range fc.Args {
		a.visit(arg)
	}
	if ok {
		if ret, isFunc := functionReturnType(typ); isFunc {
			return ret
		}
	}
	return typeInt
}
