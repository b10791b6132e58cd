// Package fold provides sequential, single-pass accumulation over lazy
// sequences: seeded and unseeded scans, final-value extraction, and
// result selection.
//
// All operations consume their input at most once and preserve input
// order. A scan over N elements always yields exactly N accumulator
// values; the seed itself is never emitted.
package fold

import (
	"errors"
	"iter"
)

// ErrExhausted is returned when a final or single value is requested
// from an empty sequence that has no seed to fall back on.
var ErrExhausted = errors.New("iteration exhausted: empty sequence")

// ErrMultiple is returned by One when the sequence holds more than one
// element.
var ErrMultiple = errors.New("sequence contains more than one element")

// Step combines the carried accumulator with the next element and
// returns the new accumulator.
type Step[A, T any] func(acc A, elem T) A

// Scan returns the running accumulation of seq: for each input element
// it yields the accumulator after folding that element in, starting
// from seed. The seed is not yielded, so the output length equals the
// input length.
func Scan[A, T any](seq iter.Seq[T], step Step[A, T], seed A) iter.Seq[A] {
	return func(yield func(A) bool) {
		acc := seed
		for v := range seq {
			acc = step(acc, v)
			if !yield(acc) {
				return
			}
		}
	}
}

// Scan1 is the unseeded scan: the first element becomes the initial
// accumulator and is yielded as the first output value. An empty input
// yields nothing.
func Scan1[T any](seq iter.Seq[T], step Step[T, T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		first := true
		var acc T
		for v := range seq {
			if first {
				acc = v
				first = false
			} else {
				acc = step(acc, v)
			}
			if !yield(acc) {
				return
			}
		}
	}
}

// Fold reduces seq to a single value. On empty input the seed is
// returned unchanged.
func Fold[A, T any](seq iter.Seq[T], step Step[A, T], seed A) A {
	acc := seed
	for v := range seq {
		acc = step(acc, v)
	}
	return acc
}

// Last returns the final element of seq, or ErrExhausted if the
// sequence is empty. This mirrors One's exhaustion behavior: with no
// seed there is nothing to fall back on.
func Last[T any](seq iter.Seq[T]) (T, error) {
	var last T
	found := false
	for v := range seq {
		last = v
		found = true
	}
	if !found {
		var zero T
		return zero, ErrExhausted
	}
	return last, nil
}

// LastOr returns the final element of seq, or fallback if the sequence
// is empty. This is the seeded form of Last: the seed of a scan is the
// natural fallback when no elements were processed.
func LastOr[T any](seq iter.Seq[T], fallback T) T {
	last := fallback
	for v := range seq {
		last = v
	}
	return last
}

// One returns the sole element of seq. It reports ErrExhausted on an
// empty sequence and ErrMultiple when a second element exists. The
// second element, if any, is not consumed past.
func One[T any](seq iter.Seq[T]) (T, error) {
	var (
		out   T
		count int
	)
	for v := range seq {
		count++
		if count > 1 {
			var zero T
			return zero, ErrMultiple
		}
		out = v
	}
	if count == 0 {
		var zero T
		return zero, ErrExhausted
	}
	return out, nil
}

// Select applies project to each element, retaining only the projected
// value in the output sequence.
func Select[T, U any](seq iter.Seq[T], project func(T) U) iter.Seq[U] {
	return func(yield func(U) bool) {
		for v := range seq {
			if !yield(project(v)) {
				return
			}
		}
	}
}

// Enumerate pairs each element with its zero-based position.
func Enumerate[T any](seq iter.Seq[T]) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for v := range seq {
			if !yield(i, v) {
				return
			}
			i++
		}
	}
}

// Take yields at most n elements of seq.
func Take[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		taken := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			taken++
			if taken >= n {
				return
			}
		}
	}
}

// Collect drains seq into a slice. An empty sequence returns a nil
// slice.
func Collect[T any](seq iter.Seq[T]) []T {
	var out []T
	for v := range seq {
		out = append(out, v)
	}
	return out
}

// Values turns a slice into a lazy sequence.
func Values[T any](vals []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range vals {
			if !yield(v) {
				return
			}
		}
	}
}
