package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/minic-lang/minic/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	optO0      bool
	optO1      bool
	optO2      bool
	target     string
	dumpAST    bool
	dumpIR     bool
	dumpAll    bool
	runFlag    bool
	noRunFlag  bool
	outputPath string
)

var compileCmd = &cobra.Command{
	Use:   "compile <source>",
	Short: "Compile a Mini-C source file",
	Long: `Run the full pipeline (lex, parse, analyze, lower to IR, optimize,
emit target code) over a source file, writing the generated code plus
the ancillary tokens.txt and symbol_table.txt dumps; with --ir or --all
it also writes <base>_ir.txt (unoptimized) and <base>_ir_optimized.txt.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().BoolVar(&optO0, "O0", false, "disable optimization")
	compileCmd.Flags().BoolVar(&optO1, "O1", false, "constant folding + dead temp elimination")
	compileCmd.Flags().BoolVar(&optO2, "O2", false, "O1 plus strength reduction (default)")
	compileCmd.Flags().StringVar(&target, "target", "", "x86 or c (default x86)")
	compileCmd.Flags().BoolVar(&dumpAST, "ast", false, "dump the parsed AST")
	compileCmd.Flags().BoolVar(&dumpIR, "ir", false, "dump the unoptimized IR")
	compileCmd.Flags().BoolVar(&dumpAll, "all", false, "dump every phase and the generated code")
	compileCmd.Flags().BoolVar(&runFlag, "run", false, "compile the emitted C and execute it (target=c only)")
	compileCmd.Flags().BoolVar(&noRunFlag, "no-run", false, "explicitly skip running the emitted C (default)")
	compileCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output artifact path (default: source with .asm/.c extension)")
}

func runCompile(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}

	sourcePath := args[0]
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourcePath, err)
	}

	opts := pipeline.Options{
		OptLevel: resolveOptLevel(fileCfg),
		Target:   resolveTarget(fileCfg),
		Logger:   loggerFor(cmd),
	}

	result := pipeline.Compile(string(source), opts)

	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, d.Format(string(source)))
	}

	if result.HaltedAtName != "" {
		return fmt.Errorf("compilation halted in phase %q", result.HaltedAtName)
	}

	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	if err := os.WriteFile(sidePath(sourcePath, "tokens.txt"), []byte(result.TokensDump), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(sidePath(sourcePath, "symbol_table.txt"), []byte(result.SymbolsDump), 0o644); err != nil {
		return err
	}
	if dumpIR || dumpAll {
		if err := os.WriteFile(base+"_ir.txt", []byte(result.UnoptIRDump), 0o644); err != nil {
			return err
		}
		if err := os.WriteFile(base+"_ir_optimized.txt", []byte(result.OptIRDump), 0o644); err != nil {
			return err
		}
	}
	if dumpAST || dumpAll {
		for _, stmt := range result.Program.Statements {
			printNode(os.Stdout, stmt, 0)
		}
	}

	artifactPath := outputPath
	if artifactPath == "" {
		if opts.Target == pipeline.TargetC {
			artifactPath = base + ".c"
		} else {
			artifactPath = base + ".asm"
		}
	}
	if err := os.WriteFile(artifactPath, []byte(result.Code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", artifactPath, err)
	}
	fmt.Printf("wrote %s\n", artifactPath)

	if opts.Target == pipeline.TargetC && (runFlag || fileCfg.Run) && !noRunFlag {
		return runEmittedC(artifactPath)
	}
	return nil
}

func resolveOptLevel(fileCfg fileConfig) int {
	switch {
	case optO0:
		return 0
	case optO1:
		return 1
	case optO2:
		return 2
	case fileCfg.OptLevel != 0:
		return fileCfg.OptLevel
	default:
		return 2
	}
}

func resolveTarget(fileCfg fileConfig) pipeline.Target {
	switch {
	case target == "c":
		return pipeline.TargetC
	case target == "x86":
		return pipeline.TargetX86
	case fileCfg.Target == "c":
		return pipeline.TargetC
	default:
		return pipeline.TargetX86
	}
}

// runEmittedC pipes the emitted C through the host toolchain with the
// 10s compile / 5s run timeouts spec.md §5 assigns to this external
// collaborator.
func runEmittedC(cPath string) error {
	binPath := strings.TrimSuffix(cPath, filepath.Ext(cPath)) + ".out"

	compileCtx, cancelCompile := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelCompile()

	build := exec.CommandContext(compileCtx, "gcc", cPath, "-o", binPath)
	var buildErr bytes.Buffer
	build.Stderr = &buildErr
	if err := build.Run(); err != nil {
		return fmt.Errorf("gcc failed: %w\n%s", err, buildErr.String())
	}

	runCtx, cancelRun := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelRun()

	run := exec.CommandContext(runCtx, binPath)
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	run.Stdin = os.Stdin
	return run.Run()
}
