package aggregate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/surveykit/surveyprep/internal/dataset"
)

func labeled() *dataset.Dataset {
	return dataset.New("survey.csv",
		[]string{"Gender_Label", "Support_Label", "Nervous_Level"},
		[][]string{
			{"A", "Yes", "4"},
			{"B", "No", "2"},
			{"A", "Yes", "6"},
			{"B", "Yes", ""},
			{"A", "No", "5"},
		})
}

func TestCountByOneColumn(t *testing.T) {
	sum, err := Run(labeled(), Query{GroupBy: []string{"Gender_Label"}, Fn: Count})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sum.Groups) != 2 {
		t.Fatalf("groups = %d, want 2 (no synthetic combinations)", len(sum.Groups))
	}
	if sum.Groups[0].Key[0] != "A" || sum.Groups[0].Count != 3 {
		t.Fatalf("group A = %+v", sum.Groups[0])
	}
	if sum.Groups[1].Key[0] != "B" || sum.Groups[1].Count != 2 {
		t.Fatalf("group B = %+v", sum.Groups[1])
	}
}

func TestCountOrderIsFirstAppearance(t *testing.T) {
	ds := dataset.New("x", []string{"C"}, [][]string{{"z"}, {"a"}, {"z"}, {"m"}})
	sum, err := Run(ds, Query{GroupBy: []string{"C"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var keys []string
	for _, g := range sum.Groups {
		keys = append(keys, g.Key[0])
	}
	if !reflect.DeepEqual(keys, []string{"z", "a", "m"}) {
		t.Fatalf("keys = %v, want first-appearance order", keys)
	}
}

func TestExplicitCategoryOrder(t *testing.T) {
	sum, err := Run(labeled(), Query{
		GroupBy: []string{"Gender_Label"},
		Order:   []string{"B", "Missing_Category", "A"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var keys []string
	for _, g := range sum.Groups {
		keys = append(keys, g.Key[0])
	}
	// Absent categories are omitted, never inserted with a zero count.
	if !reflect.DeepEqual(keys, []string{"B", "A"}) {
		t.Fatalf("keys = %v, want [B A]", keys)
	}
}

func TestMeanByGroup(t *testing.T) {
	sum, err := Run(labeled(), Query{GroupBy: []string{"Gender_Label"}, Measure: "Nervous_Level", Fn: Mean})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	a := sum.Groups[0]
	if !a.Mean.Valid || a.Mean.Value != 5 {
		t.Fatalf("mean A = %+v, want 5", a.Mean)
	}
	b := sum.Groups[1]
	if !b.Mean.Valid || b.Mean.Value != 2 {
		t.Fatalf("mean B = %+v, want 2 (missing cell excluded)", b.Mean)
	}
}

func TestMeanEmptyGroupIsNoData(t *testing.T) {
	ds := dataset.New("x", []string{"G", "V"}, [][]string{{"A", ""}, {"A", "n/a"}})
	sum, err := Run(ds, Query{GroupBy: []string{"G"}, Measure: "V", Fn: Mean})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	g := sum.Groups[0]
	if g.Mean.Valid {
		t.Fatalf("expected no-data marker, got value %v", g.Mean.Value)
	}
	if g.Count != 2 {
		t.Fatalf("count = %d, want 2", g.Count)
	}
}

func TestTwoColumnGrouping(t *testing.T) {
	sum, err := Run(labeled(), Query{GroupBy: []string{"Gender_Label", "Support_Label"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := map[string]int{"A|Yes": 2, "B|No": 1, "B|Yes": 1, "A|No": 1}
	if len(sum.Groups) != len(want) {
		t.Fatalf("groups = %d, want %d", len(sum.Groups), len(want))
	}
	for _, g := range sum.Groups {
		k := g.Key[0] + "|" + g.Key[1]
		if want[k] != g.Count {
			t.Fatalf("group %s = %d, want %d", k, g.Count, want[k])
		}
	}
}

func TestRowsWithMissingGroupCellExcluded(t *testing.T) {
	ds := dataset.New("x", []string{"G"}, [][]string{{"A"}, {""}, {"A"}})
	sum, err := Run(ds, Query{GroupBy: []string{"G"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sum.Groups) != 1 || sum.Groups[0].Count != 2 {
		t.Fatalf("groups = %+v", sum.Groups)
	}
}

func TestColumnAbsent(t *testing.T) {
	_, err := Run(labeled(), Query{GroupBy: []string{"Faculty"}})
	var ca *ColumnAbsentError
	if !errors.As(err, &ca) {
		t.Fatalf("expected *ColumnAbsentError, got %v", err)
	}
	if ca.Column != "Faculty" {
		t.Fatalf("column = %s", ca.Column)
	}
	_, err = Run(labeled(), Query{GroupBy: []string{"Gender_Label"}, Measure: "GPA", Fn: Mean})
	if !errors.As(err, &ca) {
		t.Fatalf("expected *ColumnAbsentError for measure, got %v", err)
	}
}

func TestQueryValidation(t *testing.T) {
	if _, err := Run(labeled(), Query{}); err == nil {
		t.Fatalf("expected error for empty group-by")
	}
	if _, err := Run(labeled(), Query{GroupBy: []string{"A", "B", "C"}}); err == nil {
		t.Fatalf("expected error for three group-by columns")
	}
	if _, err := Run(labeled(), Query{GroupBy: []string{"Gender_Label"}, Fn: Mean}); err == nil {
		t.Fatalf("expected error for mean without measure")
	}
	if _, err := Run(labeled(), Query{GroupBy: []string{"Gender_Label"}, Fn: "median"}); err == nil {
		t.Fatalf("expected error for unknown fn")
	}
}
