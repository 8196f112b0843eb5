// Package pipeline ties loading and derivation together: one call turns a
// raw survey CSV into an enriched, immutable Dataset ready for repeated
// aggregation queries.
package pipeline

import (
	"time"

	"github.com/surveykit/surveyprep/internal/dataset"
	"github.com/surveykit/surveyprep/internal/derive"
)

// Prepared is the output of one preparation run. The Dataset carries every
// original column plus the derived ones, same row count and order as the
// source.
type Prepared struct {
	Dataset  *dataset.Dataset
	Skipped  []string
	LoadedAt time.Time
}

// Prepare loads the source and applies the derivation spec. Load failures
// come back typed (*dataset.SourceError, *dataset.DecodeError); an invalid
// spec fails with *derive.ConfigurationError before anything is derived.
// A nil spec just loads.
func Prepare(source string, spec *derive.Spec, opt dataset.Options) (*Prepared, error) {
	ds, err := dataset.Load(source, opt)
	if err != nil {
		return nil, err
	}
	p := &Prepared{Dataset: ds, LoadedAt: time.Now()}
	if spec == nil {
		return p, nil
	}
	res, err := derive.Apply(ds, spec.Derivations())
	if err != nil {
		return nil, err
	}
	p.Dataset = res.Dataset
	p.Skipped = res.Skipped
	return p, nil
}

// Handle is a caller-held reference to a prepared dataset. It replaces the
// old process-wide memoized load: the caller decides when to load and when
// to invalidate, and nothing is shared module-level state.
type Handle struct {
	source string
	spec   *derive.Spec
	opt    dataset.Options
	cur    *Prepared
}

// NewHandle creates a handle without loading anything yet.
func NewHandle(source string, spec *derive.Spec, opt dataset.Options) *Handle {
	return &Handle{source: source, spec: spec, opt: opt}
}

// Source returns the handle's dataset source reference.
func (h *Handle) Source() string { return h.source }

// Current returns the prepared dataset, loading on first use.
func (h *Handle) Current() (*Prepared, error) {
	if h.cur != nil {
		return h.cur, nil
	}
	return h.Reload()
}

// Reload discards any prepared dataset and prepares again from the source.
func (h *Handle) Reload() (*Prepared, error) {
	p, err := Prepare(h.source, h.spec, h.opt)
	if err != nil {
		return nil, err
	}
	h.cur = p
	return p, nil
}
