// Command minic is the Mini-C compiler driver: it sequences the
// lexer, parser, semantic analyzer, IR generator, optimizer, and
// target code generator over a source file, per spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/minic-lang/minic/cmd/minic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
