// Package rle implements run-length encoding of flat sequences.
//
// Equality is exact. The codec is meant for discrete or already
// quantised data; raw floating point signals rarely form runs.
package rle

import (
	"encoding/json"
	"fmt"

	"vclab/internal/numeric"
)

// MaxDecodedLen bounds the length of a decoded sequence. Runs are cheap to
// send and expensive to expand, so Decode refuses totals beyond it.
const MaxDecodedLen = 1 << 24

// Run is a value repeated Count times. Count is at least 1 in any run
// produced by Encode.
type Run[T comparable] struct {
	Value T
	Count int
}

// MarshalJSON encodes a run as the two-element array [value, count].
func (r Run[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{r.Value, r.Count})
}

// UnmarshalJSON decodes a run from the two-element array [value, count].
func (r *Run[T]) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("run must be a [value, count] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.Value); err != nil {
		return fmt.Errorf("run value: %w", err)
	}
	if err := json.Unmarshal(pair[1], &r.Count); err != nil {
		return fmt.Errorf("run count: %w", err)
	}
	return nil
}

// Encode collapses seq into maximal runs of identical values.
func Encode[T comparable](seq []T) []Run[T] {
	runs := make([]Run[T], 0)
	if len(seq) == 0 {
		return runs
	}

	current := seq[0]
	count := 1
	for i := 1; i < len(seq); i += 1 {
		if seq[i] == current {
			count += 1
			continue
		}
		runs = append(runs, Run[T]{Value: current, Count: count})
		current = seq[i]
		count = 1
	}
	return append(runs, Run[T]{Value: current, Count: count})
}

// Decode expands runs back into the original sequence. A run with a
// count below 1, or runs totalling more than MaxDecodedLen values, are
// rejected with numeric.ErrInvalidInput.
func Decode[T comparable](runs []Run[T]) ([]T, error) {
	total := 0
	for i, r := range runs {
		if r.Count < 1 {
			return nil, numeric.InvalidInputf("run %d has count %d", i, r.Count)
		}
		if r.Count > MaxDecodedLen-total {
			return nil, numeric.InvalidInputf("runs expand to more than %d values (run %d has count %d)", MaxDecodedLen, i, r.Count)
		}
		total += r.Count
	}

	out := make([]T, 0, total)
	for _, r := range runs {
		for k := 0; k < r.Count; k += 1 {
			out = append(out, r.Value)
		}
	}
	return out, nil
}
