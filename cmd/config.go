package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/surveykit/surveyprep/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set surveyprep configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("encodings: %s\n", strings.Join(cfg.Encodings, ", "))
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %s\n", cfg.Delimiter)
		}
		fmt.Printf("max_rows: %d\n", cfg.MaxRows)
		if cfg.DefaultSpec != "" {
			fmt.Printf("default_spec: %s\n", cfg.DefaultSpec)
		}
		fmt.Printf("sessions_dir: %s\n", cfg.SessionsDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "encodings":
			cfg.Encodings = splitList(val)
		case "delimiter":
			cfg.Delimiter = val
		case "max_rows":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return fmt.Errorf("max_rows must be a non-negative integer")
			}
			cfg.MaxRows = n
		case "default_spec":
			cfg.DefaultSpec = val
		case "sessions_dir":
			cfg.SessionsDir = val
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
