package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/surveykit/surveyprep/internal/pipeline"
	"github.com/surveykit/surveyprep/internal/report"
	"github.com/surveykit/surveyprep/internal/session"
)

var (
	sessInput     string
	sessSpec      string
	sessEncodings []string
	sessDelimiter string
	sessMaxRows   int
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted preparation sessions",
}

var sessionInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a session binding a source file to a derivation spec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if sessInput == "" {
			return fmt.Errorf("--input is required")
		}
		name := args[0]
		dir, err := sessionDir(name)
		if err != nil {
			return err
		}
		if _, err := session.Load(dir); err == nil {
			return fmt.Errorf("session %q already exists", name)
		}
		abs, err := filepath.Abs(sessInput)
		if err != nil {
			return fmt.Errorf("resolve input path: %w", err)
		}
		s := session.New(name, abs, dir)
		if sessSpec != "" {
			if s.SpecPath, err = filepath.Abs(sessSpec); err != nil {
				return fmt.Errorf("resolve spec path: %w", err)
			}
		}
		s.Encodings = sessEncodings
		s.Delimiter = sessDelimiter
		s.MaxRows = sessMaxRows
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Session %q created (%s)\n", name, s.ID)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := sessionsRoot()
		if err != nil {
			return err
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("(no sessions)")
				return nil
			}
			return err
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		if len(names) == 0 {
			fmt.Println("(no sessions)")
			return nil
		}
		for _, n := range names {
			s, err := session.Load(filepath.Join(root, n))
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
				continue
			}
			fmt.Printf("- %s: %s (rows %d)\n", s.Name, s.Source, s.Rows)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := sessionDir(args[0])
		if err != nil {
			return err
		}
		s, err := session.Load(dir)
		if err != nil {
			return err
		}
		fmt.Printf("name: %s\n", s.Name)
		fmt.Printf("id: %s\n", s.ID)
		fmt.Printf("source: %s\n", s.Source)
		if s.SpecPath != "" {
			fmt.Printf("spec: %s\n", s.SpecPath)
		}
		if len(s.Encodings) > 0 {
			fmt.Printf("encodings: %v\n", s.Encodings)
		}
		if !s.LastRunAt.IsZero() {
			fmt.Printf("last run: %s (rows %d)\n", s.LastRunAt.Format("2006-01-02 15:04:05"), s.Rows)
		}
		return nil
	},
}

var sessionRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Re-run a session's preparation and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := sessionDir(args[0])
		if err != nil {
			return err
		}
		s, err := session.Load(dir)
		if err != nil {
			return err
		}
		spec, err := loadSpec(s.SpecPath)
		if err != nil {
			return err
		}
		opt := loadOptions(s.Delimiter, s.Encodings, s.MaxRows)
		prep, err := pipeline.Prepare(s.Source, spec, opt)
		if err != nil {
			return err
		}
		s.RecordRun(prep)
		if err := s.Save(); err != nil {
			return err
		}
		rep := report.Build(prep, derivedNames(spec))
		fmt.Print(rep.Markdown())
		return nil
	},
}

func sessionsRoot() (string, error) {
	if cfg != nil && cfg.SessionsDir != "" {
		return cfg.SessionsDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".surveyprep", "sessions"), nil
}

func sessionDir(name string) (string, error) {
	root, err := sessionsRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

func init() {
	sessionInitCmd.Flags().StringVarP(&sessInput, "input", "i", "", "survey CSV/TSV file")
	sessionInitCmd.Flags().StringVarP(&sessSpec, "spec", "s", "", "derivation spec YAML")
	sessionInitCmd.Flags().StringSliceVar(&sessEncodings, "encoding", nil, "candidate text encodings, tried in order")
	sessionInitCmd.Flags().StringVar(&sessDelimiter, "delimiter", "", "CSV delimiter (default: auto by extension)")
	sessionInitCmd.Flags().IntVar(&sessMaxRows, "max-rows", 0, "limit rows loaded (0 = unlimited)")
	sessionCmd.AddCommand(sessionInitCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionRunCmd)
	rootCmd.AddCommand(sessionCmd)
}
