package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minic-lang/minic/internal/lexer"
	"github.com/spf13/cobra"
)

var lexCmd = &cobra.Command{
	Use:   "lex <source>",
	Short: "Tokenize a Mini-C source file",
	Long: `Run the lexer (C1) alone over a source file and write its token
stream to tokens.txt alongside the source.`,
	Args: cobra.ExactArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	result := lexer.Lex(string(source))

	var b strings.Builder
	for _, t := range result.Tokens {
		fmt.Fprintf(&b, "%-12s %-20q line %d col %d\n", t.Kind, t.Lexeme, t.Pos.Line, t.Pos.Column)
	}

	dumpPath := sidePath(args[0], "tokens.txt")
	if err := os.WriteFile(dumpPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dumpPath, err)
	}

	for _, d := range result.Diags {
		fmt.Fprintln(os.Stderr, d.Format(string(source)))
	}
	fmt.Printf("%d token(s) written to %s\n", len(result.Tokens), dumpPath)

	if len(result.Diags) > 0 {
		return fmt.Errorf("lexing %s produced %d diagnostic(s)", args[0], len(result.Diags))
	}
	return nil
}

// sidePath places an ancillary dump file (tokens.txt, symbol_table.txt)
// next to source, in source's own directory, regardless of source's base name.
func sidePath(source, name string) string {
	return filepath.Join(filepath.Dir(source), name)
}
