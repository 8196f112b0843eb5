package dataset

import (
	"fmt"
	"strings"
)

// SourceError indicates the dataset source could not be read at all.
// It is distinguishable from a valid empty dataset.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source unavailable: %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// DecodeError indicates every candidate text encoding was exhausted.
type DecodeError struct {
	Source string
	Tried  []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: tried encodings %s", e.Source, strings.Join(e.Tried, ", "))
}
