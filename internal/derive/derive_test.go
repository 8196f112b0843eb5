package derive

import (
	"errors"
	"reflect"
	"testing"

	"github.com/surveykit/surveyprep/internal/dataset"
)

func surveyData() *dataset.Dataset {
	return dataset.New("survey.csv",
		[]string{"Gender", "Depression_Score", "Sleep_Hours", "Suicide_Attempts"},
		[][]string{
			{"0", "9", "4.5", "0"},
			{"1", "3", "7", "2"},
			{"0", "6", "9.5", ""},
			{"2", "", "12", "1"},
		})
}

func genderMapping() Mapping {
	return Mapping{
		Column: "Gender",
		As:     "Gender_Label",
		Table:  map[string]string{"0": "Female", "1": "Male"},
	}
}

func severityBins() Binning {
	return Binning{
		Column:     "Depression_Score",
		As:         "Depression_Severity",
		Boundaries: []float64{0, 4, 7, 10},
		Labels:     []string{"Low", "Medium", "High"},
	}
}

func TestMappingIsTotal(t *testing.T) {
	ds := surveyData()
	values, ok := genderMapping().Apply(ds)
	if !ok {
		t.Fatalf("expected Gender column to exist")
	}
	want := []string{"Female", "Male", "Female", "Unknown"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("mapped = %v, want %v", values, want)
	}
	for i, v := range values {
		if v == "" {
			t.Fatalf("row %d mapped to empty label", i)
		}
	}
}

func TestMappingMissingCellGetsDefault(t *testing.T) {
	ds := dataset.New("x", []string{"Coping"}, [][]string{{""}, {"5"}})
	m := Mapping{Column: "Coping", As: "Coping_Label", Table: map[string]string{"5": "Exercise"}, Default: "Not Stated"}
	values, _ := m.Apply(ds)
	if values[0] != "Not Stated" || values[1] != "Exercise" {
		t.Fatalf("values = %v", values)
	}
}

func TestMappingNumericSpelling(t *testing.T) {
	ds := dataset.New("x", []string{"Gender"}, [][]string{{"1.0"}})
	values, _ := genderMapping().Apply(ds)
	if values[0] != "Male" {
		t.Fatalf("canonical numeric lookup failed: %v", values)
	}
}

func TestMappingAbsentColumn(t *testing.T) {
	ds := dataset.New("x", []string{"Other"}, [][]string{{"1"}})
	if _, ok := genderMapping().Apply(ds); ok {
		t.Fatalf("expected ok=false for absent source column")
	}
}

func TestBinningRightInclusive(t *testing.T) {
	b := severityBins()
	ds := dataset.New("x", []string{"Depression_Score"},
		[][]string{{"0"}, {"4"}, {"5"}, {"7"}, {"8"}, {"10"}})
	values, ok := b.Apply(ds)
	if !ok {
		t.Fatalf("apply failed")
	}
	want := []string{"Low", "Low", "Medium", "Medium", "High", "High"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("binned = %v, want %v", values, want)
	}
}

func TestBinningMinimumAlwaysClassified(t *testing.T) {
	b := severityBins()
	ds := dataset.New("x", []string{"Depression_Score"}, [][]string{{"0"}})
	values, _ := b.Apply(ds)
	if values[0] != "Low" {
		t.Fatalf("value at lowest boundary = %q, want Low", values[0])
	}
}

func TestBinningOutOfRangeAndMissing(t *testing.T) {
	b := severityBins()
	ds := dataset.New("x", []string{"Depression_Score"},
		[][]string{{"-1"}, {"11"}, {""}, {"n/a"}})
	values, _ := b.Apply(ds)
	for i, v := range values {
		if v != Unclassified {
			t.Fatalf("row %d = %q, want %q", i, v, Unclassified)
		}
	}
}

func TestBinningConfigurationErrors(t *testing.T) {
	cases := []struct {
		name string
		b    Binning
	}{
		{
			name: "mismatched counts",
			b:    Binning{Column: "c", As: "d", Boundaries: []float64{0, 5, 10}, Labels: []string{"only"}},
		},
		{
			name: "non-monotonic boundaries",
			b:    Binning{Column: "c", As: "d", Boundaries: []float64{0, 5, 3}, Labels: []string{"a", "b"}},
		},
		{
			name: "single boundary",
			b:    Binning{Column: "c", As: "d", Boundaries: []float64{0}, Labels: nil},
		},
	}
	for _, c := range cases {
		err := c.b.Validate()
		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: expected *ConfigurationError, got %v", c.name, err)
		}
	}
}

func TestBinningMaxUpper(t *testing.T) {
	// Sleep category bins: <5 / 5-8 / >8 with the top edge taken from the
	// column maximum at derivation time.
	b := Binning{
		Column:     "Sleep_Hours",
		As:         "Sleep_Category",
		Boundaries: []float64{0, 5, 8},
		Labels:     []string{"Deficient", "Adequate", "High"},
		MaxUpper:   true,
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	values, ok := b.Apply(surveyData())
	if !ok {
		t.Fatalf("apply failed")
	}
	want := []string{"Deficient", "Adequate", "High", "High"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("binned = %v, want %v", values, want)
	}
}

func TestFlag(t *testing.T) {
	f := Flag{Column: "Suicide_Attempts", As: "Attempted", Threshold: 0}
	values, ok := f.Apply(surveyData())
	if !ok {
		t.Fatalf("apply failed")
	}
	want := []string{"No", "Yes", "Unknown", "Yes"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("flags = %v, want %v", values, want)
	}
}

func TestApplyBatch(t *testing.T) {
	ds := surveyData()
	res, err := Apply(ds, []Derivation{
		genderMapping(),
		severityBins(),
		Mapping{Column: "Faculty", As: "Faculty_Label", Table: map[string]string{"1": "Science"}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Dataset.HasColumn("Gender_Label") || !res.Dataset.HasColumn("Depression_Severity") {
		t.Fatalf("derived columns missing: %v", res.Dataset.Columns())
	}
	if res.Dataset.Len() != ds.Len() {
		t.Fatalf("row count changed: %d vs %d", res.Dataset.Len(), ds.Len())
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "Faculty_Label: column Faculty absent" {
		t.Fatalf("skipped = %v", res.Skipped)
	}
	if ds.HasColumn("Gender_Label") {
		t.Fatalf("base dataset was mutated")
	}
}

func TestApplyFailsFastOnBadConfig(t *testing.T) {
	ds := surveyData()
	_, err := Apply(ds, []Derivation{
		genderMapping(),
		Binning{Column: "Depression_Score", As: "Bad", Boundaries: []float64{0, 5, 3}, Labels: []string{"a", "b"}},
	})
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}
