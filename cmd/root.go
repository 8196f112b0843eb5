package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/surveykit/surveyprep/internal/config"
	"github.com/surveykit/surveyprep/internal/dataset"
	"github.com/surveykit/surveyprep/internal/derive"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "surveyprep",
	Short: "surveyprep: prepare raw survey CSVs for analysis",
	Long: `surveyprep loads a raw survey export (CSV/TSV), derives categorical
columns from explicit mapping tables, bin boundaries, and threshold flags,
and computes ordered group-by summaries for downstream dashboards.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.surveyprep/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// loadOptions merges config defaults with per-command flag overrides into
// dataset load options.
func loadOptions(delimiter string, encodings []string, maxRows int) dataset.Options {
	opt := dataset.DefaultOptions()
	if cfg != nil {
		if len(cfg.Encodings) > 0 {
			opt.Encodings = cfg.Encodings
		}
		if cfg.Delimiter != "" {
			opt.Delimiter = rune(cfg.Delimiter[0])
		}
		opt.MaxRows = cfg.MaxRows
	}
	if delimiter != "" {
		opt.Delimiter = rune(delimiter[0])
	}
	if len(encodings) > 0 {
		opt.Encodings = encodings
	}
	if maxRows > 0 {
		opt.MaxRows = maxRows
	}
	return opt
}

// loadSpec resolves a derivation spec from the flag value or the configured
// default. A missing path returns a nil spec (load-only preparation).
func loadSpec(specPath string) (*derive.Spec, error) {
	if specPath == "" && cfg != nil {
		specPath = cfg.DefaultSpec
	}
	if specPath == "" {
		return nil, nil
	}
	return derive.LoadSpec(specPath)
}

func derivedNames(spec *derive.Spec) []string {
	if spec == nil {
		return nil
	}
	var names []string
	for _, d := range spec.Derivations() {
		names = append(names, d.Name())
	}
	return names
}
