package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Encodings is the ranked list of candidate text encodings tried when
	// loading a dataset.
	Encodings []string `mapstructure:"encodings" yaml:"encodings"`
	// Delimiter is the CSV field delimiter; empty means auto-detect.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	// MaxRows limits rows loaded per dataset; 0 means unlimited.
	MaxRows int `mapstructure:"max_rows" yaml:"max_rows"`
	// DefaultSpec is the derivation spec used when --spec is not given.
	DefaultSpec string `mapstructure:"default_spec" yaml:"default_spec"`
	// SessionsDir holds persisted sessions.
	SessionsDir string `mapstructure:"sessions_dir" yaml:"sessions_dir"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.surveyprep/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".surveyprep")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SURVEYPREP")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("encodings", []string{"utf-8", "latin-1"})
	v.SetDefault("delimiter", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("default_spec", "")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".surveyprep")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve sessions_dir default: ~/.surveyprep/sessions
	if c.SessionsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.SessionsDir = filepath.Join(home, ".surveyprep", "sessions")
	}
	return &c, nil
}
