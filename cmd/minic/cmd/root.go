package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// fileConfig mirrors the subset of compile flags a --config YAML file
// may set as defaults; CLI flags always take precedence (SPEC_FULL.md §6).
// An opt_level of 0 in the file reads as unset, so the file can select
// level 1 or 2 but not level 0.
type fileConfig struct {
	OptLevel int    `yaml:"opt_level"`
	Target   string `yaml:"target"`
	Run      bool   `yaml:"run"`
}

var configPath string

var rootCmd = &cobra.Command{
	Use:     "minic",
	Short:   "Mini-C compiler",
	Long:    `minic lowers Mini-C source into portable C or x86-64 (NASM) assembly.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "trace each compiler phase to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file supplying default flag values")
}

func loggerFor(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadFileConfig reads configPath, if set, returning zero-value
// defaults (which resolveOptLevel and resolveTarget treat as unset) when
// no file was given.
func loadFileConfig() (fileConfig, error) {
	var cfg fileConfig
	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}
	return cfg, nil
}
