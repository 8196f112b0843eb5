package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/surveykit/surveyprep/internal/pipeline"
	"github.com/surveykit/surveyprep/internal/report"
	"github.com/surveykit/surveyprep/internal/utils"
)

var (
	prepInput     string
	prepSpec      string
	prepOut       string
	prepDelimiter string
	prepEncodings []string
	prepMaxRows   int
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Load a survey CSV, apply derivations, and print a dataset summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		if prepInput == "" {
			return fmt.Errorf("--input is required")
		}
		spec, err := loadSpec(prepSpec)
		if err != nil {
			return err
		}
		prep, err := pipeline.Prepare(prepInput, spec, loadOptions(prepDelimiter, prepEncodings, prepMaxRows))
		if err != nil {
			return err
		}
		for _, s := range prep.Skipped {
			fmt.Fprintf(os.Stderr, "⚠ Warning: skipped derivation %s\n", s)
		}
		rep := report.Build(prep, derivedNames(spec))
		md := rep.Markdown()
		if prepOut != "" {
			if err := utils.SafeWriteFile(prepOut, []byte(md)); err != nil {
				return err
			}
			fmt.Printf("✓ Report written to %s\n", prepOut)
			return nil
		}
		fmt.Print(md)
		return nil
	},
}

func init() {
	prepareCmd.Flags().StringVarP(&prepInput, "input", "i", "", "survey CSV/TSV file to prepare")
	prepareCmd.Flags().StringVarP(&prepSpec, "spec", "s", "", "derivation spec YAML (defaults to config default_spec)")
	prepareCmd.Flags().StringVarP(&prepOut, "out", "o", "", "write the markdown report to a file instead of stdout")
	prepareCmd.Flags().StringVar(&prepDelimiter, "delimiter", "", "CSV delimiter (default: auto by extension)")
	prepareCmd.Flags().StringSliceVar(&prepEncodings, "encoding", nil, "candidate text encodings, tried in order")
	prepareCmd.Flags().IntVar(&prepMaxRows, "max-rows", 0, "limit rows loaded (0 = unlimited)")
	rootCmd.AddCommand(prepareCmd)
}
