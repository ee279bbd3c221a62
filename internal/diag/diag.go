// Package diag provides the shared diagnostic type every compiler phase
// accumulates into, formatted with source context and a caret pointing
// at the offending column.
package diag

import (
	"fmt"
	"strings"

	"github.com/minic-lang/minic/internal/token"
)

// Phase identifies which pipeline stage raised a Diagnostic.
type Phase string

// The phases spec.md §7 names as distinct error kinds.
const (
	Lexical  Phase = "Lexical"
	Syntax   Phase = "Syntax"
	Semantic Phase = "Semantic"
	Target   Phase = "Target"
)

// Severity distinguishes a hard error (halts the pipeline) from a
// warning (reported, but never blocks a later phase from running).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one accumulated message from a phase.
type Diagnostic struct {
	Phase    Phase
	Severity Severity
	Pos      token.Position
	Message  string
}

// Error implements the error interface so a Diagnostic can be wrapped
// or compared with errors.Is/As when a single instance escapes.
func (d *Diagnostic) Error() string {
	return d.Format("")
}

// Format renders the diagnostic the way the CLI prints it to stderr:
// a "<Phase> Error (line L, col C): message" header ("Warning" in place
// of "Error" for a warning), followed by the
// offending source line and a caret under the column, when source is
// available.
func (d *Diagnostic) Format(source string) string {
	var sb strings.Builder

	label := "Error"
	if d.Severity == SeverityWarning {
		label = "Warning"
	}
	fmt.Fprintf(&sb, "%s %s (line %d, col %d): %s", d.Phase, label, d.Pos.Line, d.Pos.Column, d.Message)

	if line := sourceLine(source, d.Pos.Line); line != "" {
		sb.WriteString("\n    ")
		sb.WriteString(line)
		sb.WriteString("\n    ")
		col := d.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", col-1))
		sb.WriteString("^")
	}

	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// New builds an error-severity Diagnostic for phase at pos.
func New(phase Phase, pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Phase: phase, Severity: SeverityError, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Warning builds a warning-severity Diagnostic for phase at pos.
func Warning(phase Phase, pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Phase: phase, Severity: SeverityWarning, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// HasErrors reports whether any diagnostic in the list is error-severity.
// Warnings alone never halt the pipeline (spec.md §7).
func HasErrors(diags []*Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Join renders a list of diagnostics against source, one per line,
// matching the aggregated-message format the semantic stage historically
// produced (spec.md §4.3: "messages joined by newlines").
func Join(diags []*Diagnostic, source string) string {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.Format(source)
	}
	return strings.Join(lines, "\n")
}
