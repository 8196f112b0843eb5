// Package report renders a prepared dataset and its aggregate summaries as
// compact markdown. It is the pipeline's only output surface; charts and
// narrative text belong to whatever presentation layer consumes this.
package report

import (
	"fmt"
	"strings"

	"github.com/surveykit/surveyprep/internal/aggregate"
	"github.com/surveykit/surveyprep/internal/pipeline"
)

// Report is a markdown-friendly view of one preparation run.
type Report struct {
	Name      string
	Rows      int
	Columns   []string
	Derived   []Breakdown
	Skipped   []string
	Summaries []*aggregate.Summary
}

// Breakdown is the value distribution of one derived column.
type Breakdown struct {
	Column string
	Counts []aggregate.Group
}

// Build assembles a Report from a preparation run. derivedCols names the
// columns to break down; columns skipped during derivation are ignored.
func Build(p *pipeline.Prepared, derivedCols []string) *Report {
	r := &Report{
		Name:    p.Dataset.Name(),
		Rows:    p.Dataset.Len(),
		Columns: p.Dataset.Columns(),
		Skipped: p.Skipped,
	}
	for _, col := range derivedCols {
		sum, err := aggregate.Run(p.Dataset, aggregate.Query{GroupBy: []string{col}, Fn: aggregate.Count})
		if err != nil {
			continue
		}
		r.Derived = append(r.Derived, Breakdown{Column: col, Counts: sum.Groups})
	}
	return r
}

// AddSummary appends an aggregate summary to the report.
func (r *Report) AddSummary(s *aggregate.Summary) {
	r.Summaries = append(r.Summaries, s)
}

// Markdown renders a compact report suitable for terminals or docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Columns)))

	if len(r.Derived) > 0 {
		b.WriteString("\n[DERIVED COLUMNS]\n")
		for _, d := range r.Derived {
			b.WriteString(fmt.Sprintf("- %s: ", d.Column))
			for i, g := range d.Counts {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(g.Key[0]), g.Count))
			}
			b.WriteString("\n")
		}
	}

	for _, s := range r.Summaries {
		b.WriteString(fmt.Sprintf("\n[%s BY %s]\n", strings.ToUpper(string(s.Fn)), strings.ToUpper(strings.Join(s.GroupBy, ", "))))
		if s.Fn == aggregate.Mean && s.Measure != "" {
			b.WriteString(fmt.Sprintf("Measure: %s\n", s.Measure))
		}
		for _, g := range s.Groups {
			parts := make([]string, len(g.Key))
			for i, k := range g.Key {
				parts[i] = safeVal(k)
			}
			key := strings.Join(parts, " | ")
			switch s.Fn {
			case aggregate.Mean:
				if g.Mean.Valid {
					b.WriteString(fmt.Sprintf("- %s: mean %.4g (n=%d)\n", key, g.Mean.Value, g.Count))
				} else {
					b.WriteString(fmt.Sprintf("- %s: no data (n=%d)\n", key, g.Count))
				}
			default:
				b.WriteString(fmt.Sprintf("- %s: %d\n", key, g.Count))
			}
		}
	}

	if len(r.Skipped) > 0 {
		b.WriteString("\n[SKIPPED DERIVATIONS]\n")
		for _, s := range r.Skipped {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
