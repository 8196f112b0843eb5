// Package derive computes categorical columns from a loaded survey Dataset:
// discrete code→label mappings, threshold binning, and predicate flags.
// Each derivation reads only base columns, so a batch can run in any order.
package derive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/surveykit/surveyprep/internal/dataset"
)

// Unclassified marks a value that fell outside every bin boundary or was
// missing where a numeric value was required. It is a normal derived value,
// distinguishable from every caller-supplied label.
const Unclassified = "Unclassified"

// DefaultLabel is the fallback for unmapped or missing codes in a Mapping.
const DefaultLabel = "Unknown"

// ConfigurationError reports caller-supplied derivation config that is
// internally inconsistent. It is a programming error in the caller and is
// surfaced whole instead of being swallowed.
type ConfigurationError struct {
	Derivation string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid derivation %s: %s", e.Derivation, e.Reason)
}

// Derivation is one derived-column computation. Apply returns the derived
// values aligned with the dataset's rows, or ok=false when the source column
// is absent from this particular export.
type Derivation interface {
	Name() string
	Source() string
	Validate() error
	Apply(ds *dataset.Dataset) (values []string, ok bool)
}

// Mapping derives a label column from a finite code→label table.
// It is total: unmapped codes and missing cells get the default label.
type Mapping struct {
	Column  string            `yaml:"column"`
	As      string            `yaml:"as"`
	Table   map[string]string `yaml:"table"`
	Default string            `yaml:"default"`
}

func (m Mapping) Name() string   { return m.As }
func (m Mapping) Source() string { return m.Column }

func (m Mapping) Validate() error {
	if m.Column == "" || m.As == "" {
		return &ConfigurationError{Derivation: m.As, Reason: "mapping needs column and as"}
	}
	if len(m.Table) == 0 {
		return &ConfigurationError{Derivation: m.As, Reason: "mapping table is empty"}
	}
	return nil
}

func (m Mapping) Apply(ds *dataset.Dataset) ([]string, bool) {
	raw, ok := ds.Column(m.Column)
	if !ok {
		return nil, false
	}
	def := m.Default
	if def == "" {
		def = DefaultLabel
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = m.lookup(v, def)
	}
	return out, true
}

func (m Mapping) lookup(v, def string) string {
	key := strings.TrimSpace(v)
	if key == "" {
		return def
	}
	if label, ok := m.Table[key]; ok {
		return label
	}
	// Tolerate numeric spelling differences between export variants
	// ("1" vs "1.0") by retrying with the canonical numeric form.
	if f, ok := dataset.ParseNumeric(key); ok {
		if label, ok := m.Table[strconv.FormatFloat(f, 'g', -1, 64)]; ok {
			return label
		}
	}
	return def
}

// Binning derives an ordered range label from a numeric column. Ranges are
// right-inclusive (a value exactly at a boundary belongs to the lower range)
// and the lowest boundary is inclusive, so the column minimum is always
// classified. Values outside [first, last] and missing cells come back as
// Unclassified, never coerced into the nearest bucket.
type Binning struct {
	Column     string    `yaml:"column"`
	As         string    `yaml:"as"`
	Boundaries []float64 `yaml:"boundaries"`
	Labels     []string  `yaml:"labels"`
	// MaxUpper appends the column's observed maximum as the top boundary at
	// derivation time (the "<5 / 5-8 / >8 up to max" sleep-hours shape).
	// With MaxUpper set, len(Boundaries) must equal len(Labels).
	MaxUpper bool `yaml:"max_upper"`
}

func (b Binning) Name() string   { return b.As }
func (b Binning) Source() string { return b.Column }

func (b Binning) Validate() error {
	if b.Column == "" || b.As == "" {
		return &ConfigurationError{Derivation: b.As, Reason: "binning needs column and as"}
	}
	want := len(b.Boundaries) - 1
	if b.MaxUpper {
		want = len(b.Boundaries)
	}
	if want < 1 || len(b.Labels) != want {
		return &ConfigurationError{
			Derivation: b.As,
			Reason:     fmt.Sprintf("%d labels for %d boundaries", len(b.Labels), len(b.Boundaries)),
		}
	}
	for i := 1; i < len(b.Boundaries); i++ {
		if b.Boundaries[i] <= b.Boundaries[i-1] {
			return &ConfigurationError{
				Derivation: b.As,
				Reason:     fmt.Sprintf("boundaries not strictly increasing at index %d", i),
			}
		}
	}
	return nil
}

func (b Binning) Apply(ds *dataset.Dataset) ([]string, bool) {
	cells, ok := ds.Numeric(b.Column)
	if !ok {
		return nil, false
	}
	bounds := b.Boundaries
	if b.MaxUpper {
		if max, ok := ds.Max(b.Column); ok {
			bounds = append(append([]float64{}, bounds...), max)
		} else {
			// No valid values at all: every cell is Unclassified anyway.
			bounds = append(append([]float64{}, bounds...), bounds[len(bounds)-1])
		}
	}
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = b.classify(c, bounds)
	}
	return out, true
}

func (b Binning) classify(c dataset.Cell, bounds []float64) string {
	if !c.Valid {
		return Unclassified
	}
	v := c.Value
	if v < bounds[0] || v > bounds[len(bounds)-1] {
		return Unclassified
	}
	for i := 1; i < len(bounds); i++ {
		if v <= bounds[i] {
			return b.Labels[i-1]
		}
	}
	// v == bounds[0] with a computed upper edge below it; nothing matches.
	return Unclassified
}

// Flag derives a two-valued label from a numeric threshold, e.g. attempt
// counts above zero becoming "Yes". Missing cells get the Missing label.
type Flag struct {
	Column    string  `yaml:"column"`
	As        string  `yaml:"as"`
	Threshold float64 `yaml:"threshold"`
	Above     string  `yaml:"above"`
	AtOrBelow string  `yaml:"at_or_below"`
	Missing   string  `yaml:"missing"`
}

func (f Flag) Name() string   { return f.As }
func (f Flag) Source() string { return f.Column }

func (f Flag) Validate() error {
	if f.Column == "" || f.As == "" {
		return &ConfigurationError{Derivation: f.As, Reason: "flag needs column and as"}
	}
	return nil
}

func (f Flag) Apply(ds *dataset.Dataset) ([]string, bool) {
	cells, ok := ds.Numeric(f.Column)
	if !ok {
		return nil, false
	}
	above, below, missing := f.Above, f.AtOrBelow, f.Missing
	if above == "" {
		above = "Yes"
	}
	if below == "" {
		below = "No"
	}
	if missing == "" {
		missing = DefaultLabel
	}
	out := make([]string, len(cells))
	for i, c := range cells {
		switch {
		case !c.Valid:
			out[i] = missing
		case c.Value > f.Threshold:
			out[i] = above
		default:
			out[i] = below
		}
	}
	return out, true
}

// Result is the outcome of applying a derivation batch.
type Result struct {
	Dataset *dataset.Dataset
	// Skipped lists derivations whose source column was absent, in the
	// form "DerivedName: column SourceName absent". Sibling derivations
	// are unaffected.
	Skipped []string
}

// Apply validates every derivation, then runs each against the dataset.
// Configuration errors abort the whole batch before any column is derived;
// an absent source column only skips its own derivation.
func Apply(ds *dataset.Dataset, derivations []Derivation) (*Result, error) {
	for _, d := range derivations {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	res := &Result{Dataset: ds}
	for _, d := range derivations {
		// Every derivation reads the base dataset, never a sibling's
		// output, so batch order cannot change any derived value.
		values, ok := d.Apply(ds)
		if !ok {
			res.Skipped = append(res.Skipped, fmt.Sprintf("%s: column %s absent", d.Name(), d.Source()))
			continue
		}
		next, err := res.Dataset.WithColumn(d.Name(), values)
		if err != nil {
			return nil, fmt.Errorf("add derived column: %w", err)
		}
		res.Dataset = next
	}
	return res, nil
}
