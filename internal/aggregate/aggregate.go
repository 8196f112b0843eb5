// Package aggregate computes ordered group-by summaries over a prepared
// Dataset: counts per category combination, or the mean of a numeric column
// per combination. It replaces the per-chart grouping logic that used to be
// restated for every visual.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/surveykit/surveyprep/internal/dataset"
)

// Fn selects the measure computed per group.
type Fn string

const (
	Count Fn = "count"
	Mean  Fn = "mean"
)

// ColumnAbsentError reports a group-by or measure column missing from this
// export. Callers skip the one summary and continue with the rest.
type ColumnAbsentError struct {
	Column string
}

func (e *ColumnAbsentError) Error() string {
	return fmt.Sprintf("column absent: %s", e.Column)
}

// Query describes one aggregation request.
type Query struct {
	// GroupBy names one or two categorical columns.
	GroupBy []string
	// Measure is the numeric column averaged when Fn is Mean; ignored for Count.
	Measure string
	Fn      Fn
	// Order, when set, reorders groups to match this category order on the
	// first group-by column. Listed categories absent from the data are
	// omitted, never emitted with a zero measure; categories present in the
	// data but unlisted keep their first-appearance order after the listed
	// ones.
	Order []string
}

// Measure is a numeric result with an explicit no-data state. A mean over a
// group whose cells are all missing is invalid, never NaN.
type Measure struct {
	Value float64
	Valid bool
}

// Group is one distinct combination of group-by values actually present in
// the data.
type Group struct {
	Key   []string
	Count int
	Mean  Measure
}

// Summary is an ordered group→measure mapping.
type Summary struct {
	GroupBy []string
	Measure string
	Fn      Fn
	Groups  []Group
}

// Run computes the summary for q. Only combinations present in the data
// appear; iteration order is first appearance unless q.Order applies.
// Rows with a missing group-by cell are excluded from grouping.
func Run(ds *dataset.Dataset, q Query) (*Summary, error) {
	if len(q.GroupBy) < 1 || len(q.GroupBy) > 2 {
		return nil, fmt.Errorf("group by wants 1 or 2 columns, got %d", len(q.GroupBy))
	}
	fn := q.Fn
	if fn == "" {
		fn = Count
	}
	if fn != Count && fn != Mean {
		return nil, fmt.Errorf("unknown measure fn %q", fn)
	}
	if fn == Mean && q.Measure == "" {
		return nil, fmt.Errorf("mean requires a measure column")
	}

	keys := make([][]string, len(q.GroupBy))
	for i, name := range q.GroupBy {
		col, ok := ds.Column(name)
		if !ok {
			return nil, &ColumnAbsentError{Column: name}
		}
		keys[i] = col
	}
	var cells []dataset.Cell
	if fn == Mean {
		var ok bool
		cells, ok = ds.Numeric(q.Measure)
		if !ok {
			return nil, &ColumnAbsentError{Column: q.Measure}
		}
	}

	type acc struct {
		key   []string
		count int
		sum   float64
		n     int
	}
	index := map[string]int{}
	var accs []*acc
	for row := 0; row < ds.Len(); row++ {
		key := make([]string, len(keys))
		missing := false
		for i, col := range keys {
			if col[row] == "" {
				missing = true
				break
			}
			key[i] = col[row]
		}
		if missing {
			continue
		}
		ck := strings.Join(key, "\x1f")
		i, ok := index[ck]
		if !ok {
			i = len(accs)
			index[ck] = i
			accs = append(accs, &acc{key: key})
		}
		a := accs[i]
		a.count++
		if fn == Mean && cells[row].Valid {
			a.sum += cells[row].Value
			a.n++
		}
	}

	sum := &Summary{GroupBy: q.GroupBy, Measure: q.Measure, Fn: fn}
	for _, a := range accs {
		g := Group{Key: a.key, Count: a.count}
		if fn == Mean && a.n > 0 {
			g.Mean = Measure{Value: a.sum / float64(a.n), Valid: true}
		}
		sum.Groups = append(sum.Groups, g)
	}
	if len(q.Order) > 0 {
		sum.Groups = reorder(sum.Groups, q.Order)
	}
	return sum, nil
}

// reorder stably moves groups whose first key matches the category order to
// the front, in that order; everything else follows in appearance order.
func reorder(groups []Group, order []string) []Group {
	rank := make(map[string]int, len(order))
	for i, c := range order {
		rank[c] = i
	}
	out := make([]Group, 0, len(groups))
	for _, c := range order {
		for _, g := range groups {
			if g.Key[0] == c {
				out = append(out, g)
			}
		}
	}
	for _, g := range groups {
		if _, listed := rank[g.Key[0]]; !listed {
			out = append(out, g)
		}
	}
	return out
}
