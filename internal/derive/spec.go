package derive

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is a YAML-declared derivation batch. All mapping tables, bin
// boundaries, and flag thresholds are explicit caller configuration; nothing
// is inferred from the data except MaxUpper top edges.
//
//	mappings:
//	  - column: Gender
//	    as: Gender_Label
//	    table: {"0": Female, "1": Male}
//	bins:
//	  - column: Depression_Score
//	    as: Depression_Severity
//	    boundaries: [0, 4, 7, 10]
//	    labels: ["Low (0-4)", "Medium (5-7)", "High (8-10)"]
//	flags:
//	  - column: Suicide_Attempts
//	    as: Attempted
//	    threshold: 0
type Spec struct {
	Mappings []Mapping `yaml:"mappings"`
	Bins     []Binning `yaml:"bins"`
	Flags    []Flag    `yaml:"flags"`
}

// LoadSpec reads and validates a derivation spec file.
func LoadSpec(path string) (*Spec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read derivation spec: %w", err)
	}
	return ParseSpec(b)
}

// ParseSpec parses and validates a YAML derivation spec.
func ParseSpec(b []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse derivation spec: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every derivation and rejects duplicate output columns.
func (s *Spec) Validate() error {
	seen := map[string]bool{}
	for _, d := range s.Derivations() {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Name()] {
			return &ConfigurationError{Derivation: d.Name(), Reason: "duplicate output column"}
		}
		seen[d.Name()] = true
	}
	return nil
}

// Derivations returns the batch in declaration order: mappings, bins, flags.
// Order is presentational only; derivations are independent.
func (s *Spec) Derivations() []Derivation {
	out := make([]Derivation, 0, len(s.Mappings)+len(s.Bins)+len(s.Flags))
	for _, m := range s.Mappings {
		out = append(out, m)
	}
	for _, b := range s.Bins {
		out = append(out, b)
	}
	for _, f := range s.Flags {
		out = append(out, f)
	}
	return out
}
