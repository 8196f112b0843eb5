package derive

import (
	"errors"
	"testing"
)

const specYAML = `
mappings:
  - column: Gender
    as: Gender_Label
    table:
      "0": Female
      "1": Male
bins:
  - column: Depression_Score
    as: Depression_Severity
    boundaries: [0, 4, 7, 10]
    labels: ["Low (0-4)", "Medium (5-7)", "High (8-10)"]
  - column: Sleep_Hours
    as: Sleep_Category
    boundaries: [0, 5, 8]
    labels: ["<5 hrs (Deficient)", "5-8 hrs (Adequate)", ">8 hrs (High)"]
    max_upper: true
flags:
  - column: Suicide_Attempts
    as: Attempted
    threshold: 0
`

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec([]byte(specYAML))
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}
	ds := spec.Derivations()
	if len(ds) != 4 {
		t.Fatalf("derivations = %d, want 4", len(ds))
	}
	if ds[0].Name() != "Gender_Label" || ds[1].Name() != "Depression_Severity" {
		t.Fatalf("unexpected derivation order: %s, %s", ds[0].Name(), ds[1].Name())
	}
	if spec.Mappings[0].Table["0"] != "Female" {
		t.Fatalf("mapping table not parsed: %v", spec.Mappings[0].Table)
	}
}

func TestParseSpecRejectsBadBinning(t *testing.T) {
	bad := `
bins:
  - column: Score
    as: Severity
    boundaries: [0, 5, 3]
    labels: ["a", "b"]
`
	_, err := ParseSpec([]byte(bad))
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}

func TestParseSpecRejectsDuplicateOutput(t *testing.T) {
	bad := `
mappings:
  - column: A
    as: Label
    table: {"0": x}
  - column: B
    as: Label
    table: {"0": y}
`
	_, err := ParseSpec([]byte(bad))
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}

func TestParseSpecRejectsMalformedYAML(t *testing.T) {
	if _, err := ParseSpec([]byte("mappings: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}
