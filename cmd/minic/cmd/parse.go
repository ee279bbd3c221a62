package cmd

import (
	"fmt"
	"os"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/lexer"
	"github.com/minic-lang/minic/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <source>",
	Short: "Parse a Mini-C source file and print its AST",
	Long:  `Run the lexer and parser (C1+C2) over a source file and dump the resulting AST.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	lexResult := lexer.Lex(string(source))
	program, diags := parser.Parse(lexResult.Tokens)
	diags = append(lexResult.Diags, diags...)

	for _, stmt := range program.Statements {
		printNode(os.Stdout, stmt, 0)
	}

	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Format(string(source)))
	}
	if len(diags) > 0 {
		return fmt.Errorf("parsing %s produced %d diagnostic(s)", args[0], len(diags))
	}
	return nil
}

func printNode(w *os.File, n ast.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Fprintf(w, "%s%T @ %s\n", indent, n, n.Pos())

	switch node := n.(type) {
	case *ast.FunctionDeclaration:
		printNode(w, node.Body, depth+1)
	case *ast.Block:
		for _, s := range node.Statements {
			printNode(w, s, depth+1)
		}
	case *ast.IfStatement:
		printNode(w, node.Condition, depth+1)
		printNode(w, node.Then, depth+1)
		if node.Else != nil {
			printNode(w, node.Else, depth+1)
		}
	case *ast.WhileStatement:
		printNode(w, node.Condition, depth+1)
		printNode(w, node.Body, depth+1)
	case *ast.ForStatement:
		printNode(w, node.Body, depth+1)
	}
}
