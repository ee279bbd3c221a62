// Package minic is the small, stable facade over the compiler's
// internal pipeline (internal/pipeline), for embedding Mini-C
// compilation in another Go program without depending on internal
// packages directly (mirrors the teacher's pkg/dwscript
// facade-over-internal layering).
package minic

import (
	"log/slog"

	"github.com/minic-lang/minic/internal/diag"
	"github.com/minic-lang/minic/internal/pipeline"
)

// Target selects the code-generation backend.
type Target string

const (
	TargetX86 Target = Target(pipeline.TargetX86)
	TargetC   Target = Target(pipeline.TargetC)
)

// Option configures a Compiler built by New.
type Option func(*Compiler)

// WithOptLevel sets the optimizer level (0, 1, or 2; default 2).
func WithOptLevel(level int) Option {
	return func(c *Compiler) { c.optLevel = level }
}

// WithTarget selects the backend (default TargetX86).
func WithTarget(target Target) Option {
	return func(c *Compiler) { c.target = target }
}

// WithLogger attaches a structured logger for phase tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) { c.logger = logger }
}

// Compiler runs the Mini-C pipeline over source text.
type Compiler struct {
	optLevel int
	target   Target
	logger   *slog.Logger
}

// New builds a Compiler with opt level 2 and the x86 target unless
// overridden by opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{optLevel: 2, target: TargetX86}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Output is the result of compiling one source file.
type Output struct {
	Code        string
	Diagnostics []*diag.Diagnostic
	TokensDump  string
	SymbolsDump string
	UnoptIRDump string
	OptIRDump   string
}

// HasErrors reports whether compilation halted on an error-severity
// diagnostic in some phase.
func (o *Output) HasErrors() bool { return diag.HasErrors(o.Diagnostics) }

// Compile runs the full lex->parse->analyze->IR->optimize->codegen
// pipeline over source and returns everything a caller needs,
// including the diagnostics of whichever phase halted it (spec.md §7).
func (c *Compiler) Compile(source string) *Output {
	result := pipeline.Compile(source, pipeline.Options{
		OptLevel: c.optLevel,
		Target:   pipeline.Target(c.target),
		Logger:   c.logger,
	})

	return &Output{
		Code:        result.Code,
		Diagnostics: result.Diagnostics,
		TokensDump:  result.TokensDump,
		SymbolsDump: result.SymbolsDump,
		UnoptIRDump: result.UnoptIRDump,
		OptIRDump:   result.OptIRDump,
	}
}
