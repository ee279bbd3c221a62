// Package pipeline sequences the compiler's six phases (C1-C6),
// halting at the first phase that records an error-severity
// diagnostic (spec.md §7), and owns the ancillary side-file writers
// spec.md §6 assigns to the external driver: tokens.txt,
// symbol_table.txt, and the unoptimized/optimized `<base>_ir.txt`
// dumps.
package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/codegen/cgen"
	"github.com/minic-lang/minic/internal/codegen/x86"
	"github.com/minic-lang/minic/internal/diag"
	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/internal/optimize"
	"github.com/minic-lang/minic/internal/parser"
	"github.com/minic-lang/minic/internal/semantic"
	"github.com/minic-lang/minic/internal/token"
)

// Target is the selected code-generation backend.
type Target string

const (
	TargetX86 Target = "x86"
	TargetC   Target = "c"
)

// Options configures one compilation run.
type Options struct {
	OptLevel int // 0, 1, or 2 (spec.md §6)
	Target   Target
	Logger   *slog.Logger // defaults to slog.Default() when nil
}

// Result is everything a caller (CLI or embedder) needs after a run:
// the generated code, the side-file contents, and the accumulated
// diagnostics.
type Result struct {
	Tokens       []token.Token
	Program      *ast.Program
	Module       *ir.Module
	Optimized    *ir.Module
	OptCounts    optimize.Counts
	Code         string
	Diagnostics  []*diag.Diagnostic
	TokensDump   string
	SymbolsDump  string
	UnoptIRDump  string
	OptIRDump    string
	HaltedAtName string
}

// Compile runs the full C1->C6 pipeline over source, stopping at the
// first phase whose diagnostics contain an error (spec.md §7).
func Compile(source string, opts Options) *Result {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	res := &Result{}

	log.Debug("lexing")
	lexResult := lexer.Lex(source)
	res.Tokens = lexResult.Tokens
	res.Diagnostics = append(res.Diagnostics, lexResult.Diags...)
	res.TokensDump = dumpTokens(lexResult.Tokens)
	if diag.HasErrors(lexResult.Diags) {
		res.HaltedAtName = "lex"
		return res
	}

	log.Debug("parsing")
	program, parseDiags := parser.Parse(lexResult.Tokens)
	res.Program = program
	res.Diagnostics = append(res.Diagnostics, parseDiags...)
	if diag.HasErrors(parseDiags) {
		res.HaltedAtName = "parse"
		return res
	}

	log.Debug("analyzing")
	semDiags := semantic.Analyze(program)
	res.Diagnostics = append(res.Diagnostics, semDiags...)
	res.SymbolsDump = dumpDeclarations(program)
	if diag.HasErrors(semDiags) {
		res.HaltedAtName = "semantic"
		return res
	}

	log.Debug("lowering to IR")
	module, irDiags := ir.Generate(program)
	res.Module = module
	res.Diagnostics = append(res.Diagnostics, irDiags...)
	res.UnoptIRDump = dumpIR(module.Instructions)
	if diag.HasErrors(irDiags) {
		res.HaltedAtName = "ir"
		return res
	}

	log.Debug("optimizing", "level", opts.OptLevel)
	optimized, counts := optimize.Run(module, opts.OptLevel)
	res.Optimized = optimized
	res.OptCounts = counts
	res.OptIRDump = dumpIR(optimized.Instructions)

	log.Debug("emitting code", "target", opts.Target)
	switch opts.Target {
	case TargetC:
		res.Code = cgen.Generate(optimized)
	default:
		res.Code = x86.Generate(optimized)
	}

	return res
}

func dumpTokens(tokens []token.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		fmt.Fprintf(&b, "%-12s %-20q line %d col %d\n", t.Kind, t.Lexeme, t.Pos.Line, t.Pos.Column)
	}
	return b.String()
}

func dumpIR(instrs []ir.Instruction) string {
	var b strings.Builder
	for _, instr := range instrs {
		b.WriteString(instr.String())
		b.WriteString("\n")
	}
	return b.String()
}

// dumpDeclarations renders the program's top-level function and
// variable declarations, the nearest ancillary equivalent to the
// source's runtime symbol table (spec.md §6 names this artifact but
// leaves its exact content to the driver).
func dumpDeclarations(program *ast.Program) string {
	var b strings.Builder
	for _, stmt := range program.Statements {
		switch n := stmt.(type) {
		case *ast.FunctionDeclaration:
			params := make([]string, len(n.Parameters))
			for i, p := range n.Parameters {
				params[i] = fmt.Sprintf("%s %s", p.Type, p.Name)
			}
			fmt.Fprintf(&b, "function %s(%s) %s\n", n.Name, strings.Join(params, ", "), n.ReturnType)
		case *ast.VarDeclaration:
			fmt.Fprintf(&b, "variable %s %s\n", n.Type, n.Identifier)
		}
	}
	return b.String()
}
